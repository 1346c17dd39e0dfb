package core

import (
	"math"
	"math/rand"
)

// SphereOrbiter moves a point on a circle of the given radius around center,
// rotating about travel axis at a constant angular speed.
type SphereOrbiter struct {
	Center       Vec3
	radius       float64
	travelAxis   Vec3
	orbitVector  Vec3
	angle        float64
	angularSpeed float64
}

// NewSphereOrbiter creates an orbit starting at angle zero.
func NewSphereOrbiter(center Vec3, radius float64, travelAxis Vec3, angularSpeed float64) *SphereOrbiter {
	o := &SphereOrbiter{
		Center:       center,
		radius:       radius,
		angularSpeed: angularSpeed,
	}
	o.SetTravelAxis(travelAxis)
	return o
}

// Process advances the orbit by dt seconds and returns the new position.
func (o *SphereOrbiter) Process(dt float64) Vec3 {
	o.angle += o.angularSpeed * dt
	return o.Position()
}

// Position returns the current position without advancing.
func (o *SphereOrbiter) Position() Vec3 {
	return o.Center.Add(o.orbitVector.RotateAround(o.travelAxis, o.angle))
}

// SetTravelAxis changes the rotation axis and rebuilds the orbit vector
// orthogonal to it.
func (o *SphereOrbiter) SetTravelAxis(axis Vec3) {
	o.travelAxis = axis.Normalize()
	if o.travelAxis.Length() == 0 {
		o.travelAxis = Vec3{Y: 1}
	}

	fallback := Vec3{Y: 1}
	if math.Abs(fallback.Dot(o.travelAxis)) > 0.99 {
		fallback = Vec3{X: 1}
	}
	o.orbitVector = o.travelAxis.Cross(fallback).Normalize().Scale(o.radius)
}

func (o *SphereOrbiter) SetRadius(radius float64) {
	o.radius = radius
	o.orbitVector = o.orbitVector.Normalize().Scale(radius)
}

func (o *SphereOrbiter) SetAngularSpeed(speed float64) {
	o.angularSpeed = speed
}

func (o *SphereOrbiter) Radius() float64       { return o.radius }
func (o *SphereOrbiter) TravelAxis() Vec3      { return o.travelAxis }
func (o *SphereOrbiter) AngularSpeed() float64 { return o.angularSpeed }

// Randomize picks a new travel axis, radius and angular speed.
func (o *SphereOrbiter) Randomize(rng *rand.Rand) {
	o.SetRadius(RandomFloat(rng, MinOrbitRadius, MaxOrbitRadius))
	o.SetTravelAxis(RandomUnitVector(rng))
	o.SetAngularSpeed(RandomFloat(rng, MinOrbitAngularSpeed, MaxOrbitAngularSpeed))
}
