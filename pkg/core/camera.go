package core

import "math"

// Camera tuning
const (
	DefaultYaw         = -math.Pi / 2
	MaxPitch           = 89 * math.Pi / 180
	DefaultSensitivity = 0.002 // radians per pointer unit
)

// CameraState is a first-person camera orientation plus the pointer baseline
// that the next sample's delta is measured from.
type CameraState struct {
	Yaw          float64
	Pitch        float64
	LastPointerX float64
	LastPointerY float64

	// Primed is false until the first pointer position has seeded the baseline.
	Primed bool
}

// NewCameraState returns a camera looking down -Z with no pointer baseline.
func NewCameraState() CameraState {
	return CameraState{Yaw: DefaultYaw}
}

// Apply folds one input sample into the camera. It is the single update
// function shared by client prediction, reconciliation replay and the server.
func Apply(state CameraState, sample InputSample) CameraState {
	return ApplyPointer(state, sample.PointerX, sample.PointerY, sample.Sensitivity)
}

// ApplyPointer moves the camera to an absolute pointer position.
func ApplyPointer(state CameraState, x, y, sensitivity float64) CameraState {
	if !state.Primed {
		state.LastPointerX = x
		state.LastPointerY = y
		state.Primed = true
		return state
	}

	xOffset := x - state.LastPointerX
	yOffset := state.LastPointerY - y // screen y grows downwards
	state.LastPointerX = x
	state.LastPointerY = y

	state.Yaw += xOffset * sensitivity
	state.Pitch = clampPitch(state.Pitch + yOffset*sensitivity)
	return state
}

// Reseed replaces the pointer baseline without rotating the camera.
func (c CameraState) Reseed(x, y float64) CameraState {
	c.LastPointerX = x
	c.LastPointerY = y
	c.Primed = true
	return c
}

// WithOrientation overwrites yaw and pitch, keeping the pointer baseline.
func (c CameraState) WithOrientation(yaw, pitch float64) CameraState {
	c.Yaw = yaw
	c.Pitch = clampPitch(pitch)
	return c
}

// Forward returns the unit view direction.
func (c CameraState) Forward() Vec3 {
	cosPitch := math.Cos(c.Pitch)
	return Vec3{
		X: math.Cos(c.Yaw) * cosPitch,
		Y: math.Sin(c.Pitch),
		Z: math.Sin(c.Yaw) * cosPitch,
	}.Normalize()
}

func clampPitch(p float64) float64 {
	if p > MaxPitch {
		return MaxPitch
	}
	if p < -MaxPitch {
		return -MaxPitch
	}
	return p
}
