package server

import (
	"fmt"

	"lagcomp/pkg/core"
)

// ShotResult describes one resolved fire edge.
type ShotResult struct {
	Tick          uint32 // server tick the shot was resolved on
	Sequence      uint32
	ReferenceTick uint32
	CameraTick    uint32
	Fraction      float64
	Subtick       bool

	// Reconstructed state the hit test ran against.
	TargetPosition core.Vec3
	Yaw            float64
	Pitch          float64

	Hit bool
}

// Rewinder reconstructs historical target and camera state for a shot, runs
// the hit test, and puts the live state back.
type Rewinder struct {
	history *SnapshotHistory
	subtick bool
}

func NewRewinder(history *SnapshotHistory, subtick bool) *Rewinder {
	return &Rewinder{history: history, subtick: subtick}
}

// Resolve evaluates sample's shot. body and camera are left exactly as they
// were on entry, whether the shot hits, misses or fails.
func (r *Rewinder) Resolve(body core.PhysicsBody, camera *core.CameraState, sample core.InputSample) (res ShotResult, err error) {
	res = ShotResult{
		Sequence:      sample.Sequence,
		ReferenceTick: sample.EntityTickBeforeFire,
		CameraTick:    sample.CameraTickBeforeFire,
		Subtick:       r.subtick,
	}

	saved := body.Snapshot()
	savedCamera := *camera
	defer func() {
		*camera = savedCamera
		if rerr := body.Restore(saved); rerr != nil && err == nil {
			err = fmt.Errorf("restore live state: %w", rerr)
		}
	}()

	before, err := r.history.Lookup(sample.EntityTickBeforeFire)
	if err != nil {
		return res, err
	}
	if err := body.Restore(before.State); err != nil {
		return res, fmt.Errorf("restore tick %d: %w", before.Tick, err)
	}

	aim := *camera
	if r.subtick {
		after, err := r.history.Lookup(sample.EntityTickBeforeFire + 1)
		if err != nil {
			return res, err
		}
		res.Fraction = sample.SubtickFraction
		body.SetPosition(core.Lerp(before.Position, after.Position, sample.SubtickFraction))

		cam, err := r.history.Camera(sample.CameraTickBeforeFire)
		if err != nil {
			return res, err
		}
		aim = core.ApplyPointer(cam, sample.SubtickPointerX, sample.SubtickPointerY, sample.Sensitivity)
		*camera = aim
	}

	res.TargetPosition = body.Position()
	res.Yaw, res.Pitch = aim.Yaw, aim.Pitch
	res.Hit = core.Hitscan(aim, body)
	return res, nil
}
