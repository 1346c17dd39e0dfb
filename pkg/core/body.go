package core

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// StateHandle is an opaque serialized copy of a body's full physics state.
type StateHandle []byte

var ErrBadStateHandle = errors.New("invalid physics state handle")

// PhysicsBody is the capability the rewind logic needs from a simulation
// backend: exact save/restore plus position access and a ray query.
type PhysicsBody interface {
	Snapshot() StateHandle
	Restore(StateHandle) error
	SetPosition(Vec3)
	Position() Vec3
	CastRay(origin, direction Vec3) bool
}

// Body is a kinematic vertical capsule. Position is the capsule centre.
type Body struct {
	position Vec3
	velocity Vec3
	height   float64
	radius   float64
}

// NewBody creates a capsule of the given total height and radius.
func NewBody(position Vec3, height, radius float64) *Body {
	return &Body{position: position, height: height, radius: radius}
}

// NewTargetBody creates the standard standing target.
func NewTargetBody(position Vec3) *Body {
	return NewBody(position, TargetHeightStanding, TargetRadius)
}

func (b *Body) Position() Vec3 { return b.position }
func (b *Body) Velocity() Vec3 { return b.velocity }

// SetPosition teleports the body, leaving velocity untouched.
func (b *Body) SetPosition(p Vec3) {
	b.position = p
}

// MoveTo drives the body to p over dt seconds, updating its velocity.
func (b *Body) MoveTo(p Vec3, dt float64) {
	if dt > 0 {
		b.velocity = p.Sub(b.position).Scale(1 / dt)
	}
	b.position = p
}

const (
	fieldPosX protowire.Number = iota + 1
	fieldPosY
	fieldPosZ
	fieldVelX
	fieldVelY
	fieldVelZ
	fieldHeight
	fieldRadius
)

// Snapshot serializes the complete body state.
func (b *Body) Snapshot() StateHandle {
	values := [...]float64{
		b.position.X, b.position.Y, b.position.Z,
		b.velocity.X, b.velocity.Y, b.velocity.Z,
		b.height, b.radius,
	}
	buf := make([]byte, 0, len(values)*9)
	for i, v := range values {
		buf = protowire.AppendTag(buf, protowire.Number(i+1), protowire.Fixed64Type)
		buf = protowire.AppendFixed64(buf, math.Float64bits(v))
	}
	return buf
}

// Restore replaces the body state with a previous Snapshot.
func (b *Body) Restore(h StateHandle) error {
	var next Body
	data := []byte(h)
	seen := 0
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrBadStateHandle, protowire.ParseError(n))
		}
		data = data[n:]
		if typ != protowire.Fixed64Type {
			return fmt.Errorf("%w: field %d has wire type %d", ErrBadStateHandle, num, typ)
		}
		raw, n := protowire.ConsumeFixed64(data)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrBadStateHandle, protowire.ParseError(n))
		}
		data = data[n:]

		v := math.Float64frombits(raw)
		switch num {
		case fieldPosX:
			next.position.X = v
		case fieldPosY:
			next.position.Y = v
		case fieldPosZ:
			next.position.Z = v
		case fieldVelX:
			next.velocity.X = v
		case fieldVelY:
			next.velocity.Y = v
		case fieldVelZ:
			next.velocity.Z = v
		case fieldHeight:
			next.height = v
		case fieldRadius:
			next.radius = v
		default:
			continue
		}
		seen++
	}
	if seen != int(fieldRadius) {
		return fmt.Errorf("%w: %d of %d fields present", ErrBadStateHandle, seen, fieldRadius)
	}
	*b = next
	return nil
}

// CastRay tests the segment origin -> origin+direction against the capsule.
func (b *Body) CastRay(origin, direction Vec3) bool {
	half := (b.height - 2*b.radius) / 2
	if half < 0 {
		half = 0
	}
	axisA := b.position.Sub(Vec3{Y: half})
	axisB := b.position.Add(Vec3{Y: half})
	d := segmentDistance(origin, origin.Add(direction), axisA, axisB)
	return d <= b.radius
}

// segmentDistance returns the closest distance between segments p1q1 and p2q2.
func segmentDistance(p1, q1, p2, q2 Vec3) float64 {
	const eps = 1e-12
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float64
	switch {
	case a <= eps && e <= eps:
		return r.Length()
	case a <= eps:
		t = clamp01(f / e)
	default:
		c := d1.Dot(r)
		if e <= eps {
			s = clamp01(-c / a)
		} else {
			bb := d1.Dot(d2)
			denom := a*e - bb*bb
			if denom > eps {
				s = clamp01((bb*f - c*e) / denom)
			}
			t = (bb*s + f) / e
			if t < 0 {
				t = 0
				s = clamp01(-c / a)
			} else if t > 1 {
				t = 1
				s = clamp01((bb - c) / a)
			}
		}
	}

	c1 := p1.Add(d1.Scale(s))
	c2 := p2.Add(d2.Scale(t))
	return c1.Sub(c2).Length()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
