package ai

import (
	"math"

	"lagcomp/pkg/ai/bt"
	"lagcomp/pkg/core"
)

// pointer travel below this is not worth a sample
const minPointerStep = 0.5

// === Conditions ===

func condHasTarget(bb bt.Blackboard) bool {
	return bb.(*Blackboard).HasTarget
}

// condOnTarget casts the current view ray at a standing body placed where
// the bot sees the target.
func condOnTarget(bb bt.Blackboard) bool {
	board := bb.(*Blackboard)
	return core.Hitscan(board.Camera, core.NewTargetBody(board.Target))
}

// === Actions ===

// actSolveAim computes the yaw and pitch that look at the target, plus a
// per-acquisition aim error.
func actSolveAim(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)
	d := board.Target.Sub(core.EyeOrigin)
	l := d.Length()
	if l == 0 {
		return bt.StatusFailure
	}

	if !board.Acquired {
		board.NoiseYaw, board.NoisePitch = 0, 0
		if board.Config.AimNoise > 0 {
			board.NoiseYaw = board.RNG.NormFloat64() * board.Config.AimNoise
			board.NoisePitch = board.RNG.NormFloat64() * board.Config.AimNoise
		}
		board.Acquired = true
	}

	board.WantYaw = math.Atan2(d.Z, d.X) + board.NoiseYaw
	board.WantPitch = math.Asin(d.Y/l) + board.NoisePitch
	return bt.StatusSuccess
}

// actTurn moves the pointer toward the aim solution, at most
// MaxTurnPerFrame units per frame.
func actTurn(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)
	sens := board.Config.Sensitivity
	if sens <= 0 {
		sens = core.DefaultSensitivity
	}

	dx := wrapAngle(board.WantYaw-board.Camera.Yaw) / sens
	dy := -(board.WantPitch - board.Camera.Pitch) / sens // screen y grows downwards

	if dist := math.Hypot(dx, dy); dist > board.Config.MaxTurnPerFrame && board.Config.MaxTurnPerFrame > 0 {
		scale := board.Config.MaxTurnPerFrame / dist
		dx *= scale
		dy *= scale
	}
	if math.Abs(dx) < minPointerStep && math.Abs(dy) < minPointerStep {
		return bt.StatusSuccess
	}

	board.PointerX += dx
	board.PointerY += dy
	board.NextPointerX = board.PointerX
	board.NextPointerY = board.PointerY
	board.Moved = true
	return bt.StatusSuccess
}

func actFire(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)
	board.Fire = true
	board.Acquired = false
	return bt.StatusSuccess
}

func actIdle(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)
	board.Acquired = false
	return bt.StatusSuccess
}

// wrapAngle maps a to [-pi, pi).
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
