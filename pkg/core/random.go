package core

import (
	"math"
	"math/rand"
)

// RandomFloat returns a float in [min, max).
func RandomFloat(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}

// RandomUnitVector returns a direction uniformly distributed on the unit sphere.
func RandomUnitVector(rng *rand.Rand) Vec3 {
	z := RandomFloat(rng, -1, 1)
	azimuth := RandomFloat(rng, 0, 2*math.Pi)
	r := math.Sqrt(1 - z*z)
	return Vec3{
		X: r * math.Cos(azimuth),
		Y: r * math.Sin(azimuth),
		Z: z,
	}
}
