package core

// Simulation rate
const (
	TPS            = 60
	FixedDeltaTime = 1.0 / TPS
)

// Target body
const (
	TargetHeightStanding = 1.8
	TargetRadius         = 0.3
	RoomSize             = 16.0
)

// Orbit randomisation ranges applied after every hit.
const (
	MinOrbitRadius       = 1.0
	MaxOrbitRadius       = 6.0
	MinOrbitAngularSpeed = 0.5 // rad/s
	MaxOrbitAngularSpeed = 3.0
)

// Initial orbit, in front of the camera.
var DefaultOrbitCenter = Vec3{Z: -10}

const (
	DefaultOrbitRadius       = 3.0
	DefaultOrbitAngularSpeed = 1.0
)

// Hitscan
const (
	HitscanRange = 100.0
)
