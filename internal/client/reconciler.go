package client

import (
	"lagcomp/pkg/core"
	"lagcomp/pkg/protocol"
)

// ReconcileResult describes what one GameUpdate did to the prediction.
type ReconcileResult struct {
	Applied       bool
	Tick          uint32
	LastProcessed uint32

	PredictedYaw   float64
	PredictedPitch float64
	Yaw            float64
	Pitch          float64

	Trimmed  int
	Replayed int
	Reseeded bool
}

// DeltaYaw is predicted minus reconciled yaw.
func (r ReconcileResult) DeltaYaw() float64 { return r.PredictedYaw - r.Yaw }

// DeltaPitch is predicted minus reconciled pitch.
func (r ReconcileResult) DeltaPitch() float64 { return r.PredictedPitch - r.Pitch }

// Reconciler corrects the predicted camera against authoritative updates.
// It tracks the camera cursor: the tick of the last GameUpdate applied.
type Reconciler struct {
	cameraTick uint32
	applied    bool
}

func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// CameraTick is the tick of the last applied update, 0 before the first.
func (r *Reconciler) CameraTick() uint32 { return r.cameraTick }

// Reconcile applies u if it is newer than the last applied update. Stale
// updates return a result with Applied false and touch nothing.
func (r *Reconciler) Reconcile(u *protocol.GameUpdate, log *InputLog, predictor *Predictor) ReconcileResult {
	res := ReconcileResult{Tick: u.Tick, LastProcessed: u.LastProcessedInputSequence}
	if r.applied && u.Tick <= r.cameraTick {
		return res
	}
	r.applied = true
	r.cameraTick = u.Tick
	res.Applied = true

	predicted := predictor.Camera()
	res.PredictedYaw = predicted.Yaw
	res.PredictedPitch = predicted.Pitch

	cam := predicted.WithOrientation(u.Yaw, u.Pitch)
	lpis := u.LastProcessedInputSequence
	if lpis == 0 {
		// the server has not seen a sample yet, so its baseline is unset
		cam.Primed = false
	}

	res.Trimmed = log.TrimBefore(lpis)
	for _, s := range log.samples {
		switch {
		case s.Sequence == lpis:
			cam = cam.Reseed(s.PointerX, s.PointerY)
			res.Reseeded = true
		case s.Sequence > lpis:
			cam = core.Apply(cam, s)
			res.Replayed++
		}
	}

	predictor.SetCamera(cam)
	res.Yaw = cam.Yaw
	res.Pitch = cam.Pitch
	return res
}
