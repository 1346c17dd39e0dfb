package client

import (
	"time"

	"lagcomp/pkg/core"
	"lagcomp/pkg/protocol"

	"github.com/rs/zerolog"
)

// Transport is the slice of NetworkClient the session needs.
type Transport interface {
	SendInput(sample core.InputSample) error
	ReceiveUpdate() *protocol.GameUpdate
	ReceiveSound() (core.SoundEvent, bool)
}

// SessionConfig tunes a Session.
type SessionConfig struct {
	SendHz              float64
	Sensitivity         float64
	EntityInterpolation bool
	// Subtick runs client shot feedback on every frame's fire edge instead
	// of only on transmit.
	Subtick bool
	// UpdatePeriod is the server's tick period in seconds.
	UpdatePeriod float64
	Log          zerolog.Logger
}

// ClientShot is the local, non-authoritative verdict on a shot.
type ClientShot struct {
	Hit            bool
	CameraTick     uint32
	TargetPosition core.Vec3
	Yaw            float64
	Pitch          float64
}

// FrameResult summarises one Update.
type FrameResult struct {
	Sent       bool
	Sequence   uint32
	Reconciled []ReconcileResult
	Stale      int
	Shot       *ClientShot
	Sounds     []core.SoundEvent
}

// Session drives the client side of the game one frame at a time. Pointer
// callbacks and Update must run on the same goroutine.
type Session struct {
	cfg       SessionConfig
	log       zerolog.Logger
	transport Transport

	inputs      *InputLog
	predictor   *Predictor
	sampler     *Sampler
	transmitter *Transmitter
	reconciler  *Reconciler
	interp      *EntityInterpolator

	target     *core.Body
	haveTarget bool

	sounds    []core.SoundEvent
	lastShot  *ClientShot
	staleDrop int
}

func NewSession(transport Transport, cfg SessionConfig) *Session {
	if cfg.SendHz <= 0 {
		cfg.SendHz = DefaultSendHz
	}
	if cfg.UpdatePeriod <= 0 {
		cfg.UpdatePeriod = core.FixedDeltaTime
	}
	inputs := NewInputLog()
	predictor := NewPredictor()
	return &Session{
		cfg:         cfg,
		log:         cfg.Log.With().Str("component", "session").Logger(),
		transport:   transport,
		inputs:      inputs,
		predictor:   predictor,
		sampler:     NewSampler(inputs, predictor, cfg.Sensitivity),
		transmitter: NewTransmitter(cfg.SendHz),
		reconciler:  NewReconciler(),
		interp:      NewEntityInterpolator(cfg.UpdatePeriod),
		target:      core.NewTargetBody(core.DefaultOrbitCenter),
	}
}

// OnPointer is the cursor callback: sample and predict immediately.
func (s *Session) OnPointer(x, y float64) core.InputSample {
	return s.sampler.Sample(x, y)
}

// Update runs one client frame: transmit if due, apply server messages,
// advance interpolation, then record this frame's fire state.
func (s *Session) Update(now time.Time, fireHeld bool, dt float64) FrameResult {
	var res FrameResult

	latest, ok := s.inputs.Latest()
	tx := s.transmitter.Poll(now, latest, ok)
	if !s.cfg.Subtick && tx.FireEdge {
		res.Shot = s.fire()
	}
	if tx.Send {
		if err := s.transport.SendInput(tx.Sample); err != nil {
			s.log.Debug().Err(err).Uint32("seq", tx.Sample.Sequence).Msg("send input")
		} else {
			res.Sent = true
			res.Sequence = tx.Sample.Sequence
		}
	}

	for u := s.transport.ReceiveUpdate(); u != nil; u = s.transport.ReceiveUpdate() {
		r := s.applyUpdate(u)
		if !r.Applied {
			res.Stale++
			continue
		}
		res.Reconciled = append(res.Reconciled, r)
	}
	for ev, ok := s.transport.ReceiveSound(); ok; ev, ok = s.transport.ReceiveSound() {
		s.log.Info().Stringer("sound", ev.Sound).
			Float64("x", ev.Origin.X).Float64("y", ev.Origin.Y).Float64("z", ev.Origin.Z).
			Msg("server shot")
		s.sounds = append(s.sounds, ev)
	}

	if s.cfg.EntityInterpolation {
		s.interp.Advance(dt)
		if pos, ok := s.interp.Position(); ok {
			s.target.SetPosition(pos)
		}
	}

	edge := s.transmitter.ObserveFire(fireHeld, s.fireStamp())
	if s.cfg.Subtick && edge {
		res.Shot = s.fire()
	}

	res.Sounds = s.sounds
	s.sounds = nil
	return res
}

func (s *Session) applyUpdate(u *protocol.GameUpdate) ReconcileResult {
	r := s.reconciler.Reconcile(u, s.inputs, s.predictor)
	if !r.Applied {
		s.staleDrop++
		s.log.Debug().Uint32("tick", u.Tick).Uint32("last_tick", s.reconciler.CameraTick()).Msg("stale update dropped")
		return r
	}

	if s.cfg.EntityInterpolation {
		s.interp.Push(u.Tick, u.TargetPosition())
	} else {
		s.target.SetPosition(u.TargetPosition())
	}
	s.haveTarget = true

	if r.Replayed > 0 || r.DeltaYaw() != 0 || r.DeltaPitch() != 0 {
		s.log.Debug().
			Uint32("tick", r.Tick).
			Uint32("lpis", r.LastProcessed).
			Int("trimmed", r.Trimmed).
			Int("replayed", r.Replayed).
			Float64("d_yaw", r.DeltaYaw()).
			Float64("d_pitch", r.DeltaPitch()).
			Msg("reconciled")
	}
	return r
}

// fireStamp captures where the view is right now.
func (s *Session) fireStamp() FireStamp {
	x, y := s.predictor.LastPointer()
	stamp := FireStamp{
		CameraTick: s.reconciler.CameraTick(),
		EntityTick: s.reconciler.CameraTick(),
		PointerX:   x,
		PointerY:   y,
	}
	if s.cfg.EntityInterpolation && s.interp.Len() > 0 {
		stamp.EntityTick, stamp.SubtickFraction = s.interp.Stamp()
	}
	return stamp
}

// fire runs the local hitscan and queues the client-side sound.
func (s *Session) fire() *ClientShot {
	cam := s.predictor.Camera()
	shot := &ClientShot{
		Hit:            s.haveTarget && core.Hitscan(cam, s.target),
		CameraTick:     s.reconciler.CameraTick(),
		TargetPosition: s.target.Position(),
		Yaw:            cam.Yaw,
		Pitch:          cam.Pitch,
	}
	sound := core.SoundClientMiss
	if shot.Hit {
		sound = core.SoundClientHit
	}
	s.sounds = append(s.sounds, core.SoundEvent{Sound: sound, Origin: shot.TargetPosition})
	s.lastShot = shot

	s.log.Info().
		Bool("hit", shot.Hit).
		Uint32("tick", shot.CameraTick).
		Float64("yaw", shot.Yaw).
		Float64("pitch", shot.Pitch).
		Float64("x", shot.TargetPosition.X).
		Float64("y", shot.TargetPosition.Y).
		Float64("z", shot.TargetPosition.Z).
		Msg("client shot")
	return shot
}

func (s *Session) Camera() core.CameraState { return s.predictor.Camera() }

func (s *Session) Target() core.Vec3 { return s.target.Position() }

func (s *Session) HasTarget() bool { return s.haveTarget }

func (s *Session) CameraTick() uint32 { return s.reconciler.CameraTick() }

func (s *Session) EntityTick() uint32 {
	if s.cfg.EntityInterpolation {
		return s.interp.EntityTick()
	}
	return s.reconciler.CameraTick()
}

func (s *Session) PendingInputs() int { return s.inputs.Len() }

func (s *Session) LastSequence() uint32 { return s.inputs.LastSequence() }

func (s *Session) LastShot() *ClientShot { return s.lastShot }

func (s *Session) StaleDropped() int { return s.staleDrop }

// DroppedInputs counts samples evicted from a full input log before the
// server acknowledged them.
func (s *Session) DroppedInputs() int { return s.inputs.Dropped() }

func (s *Session) Config() SessionConfig { return s.cfg }

// SetSensitivity applies to samples taken from now on.
func (s *Session) SetSensitivity(v float64) {
	s.sampler.SetSensitivity(v)
	s.cfg.Sensitivity = s.sampler.Sensitivity()
}

// SetEntityInterpolation toggles interpolated target rendering.
func (s *Session) SetEntityInterpolation(on bool) {
	if on == s.cfg.EntityInterpolation {
		return
	}
	s.cfg.EntityInterpolation = on
	s.interp.Reset()
}

func (s *Session) SetSubtick(on bool) { s.cfg.Subtick = on }

// SetSendRate changes the transmit cadence.
func (s *Session) SetSendRate(now time.Time, hz float64) {
	if hz <= 0 {
		return
	}
	s.cfg.SendHz = hz
	s.transmitter.SetRate(now, hz)
}
