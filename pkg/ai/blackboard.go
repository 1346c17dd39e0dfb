package ai

import (
	"math/rand"

	"lagcomp/pkg/ai/bt"
	"lagcomp/pkg/core"
)

type Blackboard struct {
	RNG    *rand.Rand
	Config *AimConfig

	Frame int

	// What the bot sees this frame.
	Camera    core.CameraState
	Target    core.Vec3
	HasTarget bool

	// Pointer position the bot is steering; persists across frames.
	PointerX float64
	PointerY float64

	// Aim solution
	WantYaw    float64
	WantPitch  float64
	NoiseYaw   float64
	NoisePitch float64
	Acquired   bool

	// Output
	NextPointerX float64
	NextPointerY float64
	Moved        bool
	Fire         bool
}

func (bb *Blackboard) ResetFrame(camera core.CameraState, target core.Vec3, hasTarget bool) {
	bb.Frame++
	bb.Camera = camera
	bb.Target = target
	bb.HasTarget = hasTarget
	bb.NextPointerX = bb.PointerX
	bb.NextPointerY = bb.PointerY
	bb.Moved = false
	bb.Fire = false
}

func (bb *Blackboard) AsBT() bt.Blackboard {
	return bb
}
