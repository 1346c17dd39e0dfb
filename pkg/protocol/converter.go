package protocol

import (
	"math"

	"lagcomp/pkg/core"
)

// ========== InputSample <-> MouseUpdate ==========

// CoreSampleToMouseUpdate encodes an outbound sample.
func CoreSampleToMouseUpdate(s core.InputSample) *MouseUpdate {
	return &MouseUpdate{
		Sequence:             s.Sequence,
		EntityTickBeforeFire: s.EntityTickBeforeFire,
		CameraTickBeforeFire: s.CameraTickBeforeFire,
		SubtickFraction:      s.SubtickFraction,
		SubtickX:             s.SubtickPointerX,
		SubtickY:             s.SubtickPointerY,
		X:                    s.PointerX,
		Y:                    s.PointerY,
		FirePressed:          s.FireHeld,
		Sensitivity:          s.Sensitivity,
	}
}

// MouseUpdateToCoreSample decodes an inbound sample. The subtick fraction is
// clamped to [0, 1] so a misbehaving client cannot extrapolate the rewind.
func MouseUpdateToCoreSample(m *MouseUpdate) core.InputSample {
	frac := m.SubtickFraction
	if frac < 0 || math.IsNaN(frac) {
		frac = 0
	} else if frac > 1 {
		frac = 1
	}
	return core.InputSample{
		Sequence:             m.Sequence,
		PointerX:             m.X,
		PointerY:             m.Y,
		FireHeld:             m.FirePressed,
		Sensitivity:          m.Sensitivity,
		SubtickFraction:      frac,
		EntityTickBeforeFire: m.EntityTickBeforeFire,
		CameraTickBeforeFire: m.CameraTickBeforeFire,
		SubtickPointerX:      m.SubtickX,
		SubtickPointerY:      m.SubtickY,
	}
}

// ========== GameUpdate ==========

// NewGameUpdate builds the per-tick authoritative state message.
func NewGameUpdate(lastProcessed, tick uint32, camera core.CameraState, target core.Vec3) *GameUpdate {
	return &GameUpdate{
		LastProcessedInputSequence: lastProcessed,
		Tick:                       tick,
		Yaw:                        camera.Yaw,
		Pitch:                      camera.Pitch,
		TargetX:                    target.X,
		TargetY:                    target.Y,
		TargetZ:                    target.Z,
	}
}

func (m *GameUpdate) TargetPosition() core.Vec3 {
	return core.Vec3{X: m.TargetX, Y: m.TargetY, Z: m.TargetZ}
}

// ========== Sound ==========

func CoreSoundToProto(e core.SoundEvent) *SoundUpdate {
	return &SoundUpdate{
		Sound: uint32(e.Sound),
		X:     e.Origin.X,
		Y:     e.Origin.Y,
		Z:     e.Origin.Z,
	}
}

func ProtoSoundToCore(m *SoundUpdate) core.SoundEvent {
	return core.SoundEvent{
		Sound:  core.SoundType(m.Sound),
		Origin: core.Vec3{X: m.X, Y: m.Y, Z: m.Z},
	}
}
