package server

import (
	"math/rand"

	"lagcomp/pkg/core"
)

// SimulationConfig tunes the authoritative simulation.
type SimulationConfig struct {
	HistoryTicks int
	Subtick      bool
	Seed         int64
}

// ShotFailure is a fire edge that could not be resolved.
type ShotFailure struct {
	Sequence uint32
	Err      error
}

// StepResult is everything one tick produced.
type StepResult struct {
	Tick          uint32
	LastProcessed uint32
	Camera        core.CameraState
	Target        core.Vec3
	Shots         []ShotResult
	Failures      []ShotFailure
	Sounds        []core.SoundEvent
}

// Simulation owns the moving target, the shooter's camera and the snapshot
// history. It is driven by a single goroutine.
type Simulation struct {
	tick      uint32
	body      *core.Body
	orbiter   *core.SphereOrbiter
	camera    core.CameraState
	history   *SnapshotHistory
	processor InputProcessor
	rewinder  *Rewinder
	sounds    []core.SoundEvent
	rng       *rand.Rand
}

func NewSimulation(cfg SimulationConfig) *Simulation {
	orbiter := core.NewSphereOrbiter(core.DefaultOrbitCenter, core.DefaultOrbitRadius, core.Vec3{Y: 1}, core.DefaultOrbitAngularSpeed)
	history := NewSnapshotHistory(cfg.HistoryTicks)
	return &Simulation{
		body:     core.NewTargetBody(orbiter.Position()),
		orbiter:  orbiter,
		camera:   core.NewCameraState(),
		history:  history,
		rewinder: NewRewinder(history, cfg.Subtick),
		rng:      rand.New(rand.NewSource(cfg.Seed)),
	}
}

func (s *Simulation) Tick() uint32                 { return s.tick }
func (s *Simulation) Camera() core.CameraState     { return s.camera }
func (s *Simulation) Target() core.Vec3            { return s.body.Position() }
func (s *Simulation) History() *SnapshotHistory    { return s.history }
func (s *Simulation) Orbiter() *core.SphereOrbiter { return s.orbiter }

// Step advances one tick: move the target, snapshot, then fold inputs in
// receipt order, resolving a shot on every fire edge.
func (s *Simulation) Step(inputs []core.InputSample) StepResult {
	s.tick++
	s.body.MoveTo(s.orbiter.Process(core.FixedDeltaTime), core.FixedDeltaTime)
	s.history.Capture(s.tick, s.body, s.camera)

	res := StepResult{Tick: s.tick}
	for _, sample := range inputs {
		if !s.processor.Apply(&s.camera, sample) {
			continue
		}
		shot, err := s.rewinder.Resolve(s.body, &s.camera, sample)
		if err != nil {
			res.Failures = append(res.Failures, ShotFailure{Sequence: sample.Sequence, Err: err})
			continue
		}
		shot.Tick = s.tick
		s.onShot(shot)
		res.Shots = append(res.Shots, shot)
	}

	res.LastProcessed = s.processor.LastProcessed()
	res.Camera = s.camera
	res.Target = s.body.Position()
	res.Sounds = s.sounds
	s.sounds = nil
	return res
}

func (s *Simulation) onShot(shot ShotResult) {
	sound := core.SoundServerMiss
	if shot.Hit {
		sound = core.SoundServerHit
		s.orbiter.Randomize(s.rng)
	}
	s.sounds = append(s.sounds, core.SoundEvent{Sound: sound, Origin: shot.TargetPosition})
}

// ResetInput forgets the previous client's sequence numbers, fire state and
// pointer baseline. Yaw and pitch are kept.
func (s *Simulation) ResetInput() {
	s.processor = InputProcessor{}
	s.camera.Primed = false
}
