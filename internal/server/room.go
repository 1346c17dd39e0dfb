package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"lagcomp/internal/storage"
	"lagcomp/pkg/core"
	"lagcomp/pkg/protocol"
)

const (
	// MaxPlayers per room. A room simulates one shooting camera.
	MaxPlayers = 1

	// MaxPendingInputs bounds the samples buffered between two ticks.
	MaxPendingInputs = 256
)

var (
	ErrRoomFull   = errors.New("room full")
	ErrRoomClosed = errors.New("room closed")
)

// RoomConfig is shared by every room a manager creates.
type RoomConfig struct {
	TPS        int
	Simulation SimulationConfig
	Log        zerolog.Logger
	Metrics    *Metrics
	Recorder   storage.Recorder
}

func (c RoomConfig) tickPeriod() time.Duration {
	if c.TPS <= 0 {
		return time.Second / core.TPS
	}
	return time.Second / time.Duration(c.TPS)
}

// Room runs one simulation on a single goroutine. Joins, inputs and leaves
// arrive over channels and are applied between ticks.
type Room struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	cfg    RoomConfig
	log    zerolog.Logger

	sim         *Simulation
	broadcaster *Broadcaster
	sessions    map[int32]Session
	pending     []core.InputSample

	joinCh  chan joinRequest
	inputCh chan inputEvent
	leaveCh chan int32

	tick       atomic.Uint32
	players    atomic.Int32
	emptySince atomic.Int64 // unix nanos, 0 while occupied
}

type joinRequest struct {
	session  Session
	playerID int32
	token    string
	respCh   chan error
}

type inputEvent struct {
	playerID int32
	sample   core.InputSample
}

func NewRoom(parent context.Context, id string, cfg RoomConfig) *Room {
	ctx, cancel := context.WithCancel(parent)
	if cfg.Recorder == nil {
		cfg.Recorder = storage.NopRecorder{}
	}
	log := cfg.Log.With().Str("room", id).Logger()
	r := &Room{
		id:          id,
		ctx:         ctx,
		cancel:      cancel,
		cfg:         cfg,
		log:         log,
		sim:         NewSimulation(cfg.Simulation),
		broadcaster: NewBroadcaster(log, cfg.Metrics),
		sessions:    make(map[int32]Session),
		pending:     make([]core.InputSample, 0, MaxPendingInputs),
		joinCh:      make(chan joinRequest),
		inputCh:     make(chan inputEvent, MaxPendingInputs),
		leaveCh:     make(chan int32, 16),
	}
	r.emptySince.Store(time.Now().UnixNano())
	return r
}

func (r *Room) ID() string { return r.id }

// CurrentTick is safe to call from any goroutine.
func (r *Room) CurrentTick() uint32 { return r.tick.Load() }

func (r *Room) PlayerCount() int { return int(r.players.Load()) }

// EmptyFor reports how long the room has had no players.
func (r *Room) EmptyFor(now time.Time) time.Duration {
	since := r.emptySince.Load()
	if since == 0 {
		return 0
	}
	return now.Sub(time.Unix(0, since))
}

func (r *Room) Run(wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(r.cfg.tickPeriod())
	defer ticker.Stop()

	r.log.Info().Int("tps", r.cfg.TPS).Int("history_ticks", r.sim.History().Capacity()).Msg("room loop started")

	for {
		select {
		case <-r.ctx.Done():
			r.closeAllSessions()
			r.log.Info().Msg("room loop stopped")
			return

		case req := <-r.joinCh:
			req.respCh <- r.handleJoin(req)

		case ev := <-r.inputCh:
			r.handleInput(ev)

		case playerID := <-r.leaveCh:
			r.handleLeave(playerID)

		case <-ticker.C:
			r.step()
		}
	}
}

func (r *Room) Shutdown() {
	r.cancel()
}

// Join adds session as playerID and sends it the JoinResponse.
func (r *Room) Join(session Session, playerID int32, token string) error {
	respCh := make(chan error, 1)
	select {
	case <-r.ctx.Done():
		return ErrRoomClosed
	case r.joinCh <- joinRequest{session: session, playerID: playerID, token: token, respCh: respCh}:
	}
	select {
	case <-r.ctx.Done():
		return ErrRoomClosed
	case err := <-respCh:
		return err
	}
}

// EnqueueInput hands a sample to the room loop; it is applied on the next tick.
func (r *Room) EnqueueInput(playerID int32, sample core.InputSample) {
	select {
	case <-r.ctx.Done():
	case r.inputCh <- inputEvent{playerID: playerID, sample: sample}:
	}
}

func (r *Room) Leave(playerID int32) {
	select {
	case <-r.ctx.Done():
	case r.leaveCh <- playerID:
	}
}

func (r *Room) handleJoin(req joinRequest) error {
	if len(r.sessions) >= MaxPlayers {
		return fmt.Errorf("%w: %s (%d/%d)", ErrRoomFull, r.id, len(r.sessions), MaxPlayers)
	}

	resp := &protocol.JoinResponse{
		Success:      true,
		PlayerID:     uint32(req.playerID),
		SessionToken: req.token,
		TPS:          uint32(r.cfg.TPS),
		CurrentTick:  r.sim.Tick(),
		HistoryTicks: uint32(r.sim.History().Capacity()),
	}
	data, err := protocol.Marshal(protocol.NewJoinResponsePacket(resp))
	if err != nil {
		return fmt.Errorf("encode join response: %w", err)
	}
	if err := req.session.Send(data); err != nil {
		return fmt.Errorf("send join response: %w", err)
	}

	// A fresh client numbers its samples from 1 again.
	r.sim.ResetInput()
	r.pending = r.pending[:0]

	req.session.SetPlayerID(req.playerID)
	r.sessions[req.playerID] = req.session
	r.players.Store(int32(len(r.sessions)))
	r.emptySince.Store(0)

	r.log.Info().Int32("player_id", req.playerID).Uint32("tick", r.sim.Tick()).Msg("player joined")
	return nil
}

func (r *Room) handleInput(ev inputEvent) {
	if _, ok := r.sessions[ev.playerID]; !ok {
		return
	}
	if len(r.pending) >= MaxPendingInputs {
		r.log.Warn().Int32("player_id", ev.playerID).Uint32("seq", ev.sample.Sequence).Msg("input buffer full, sample dropped")
		return
	}
	r.pending = append(r.pending, ev.sample)
}

func (r *Room) handleLeave(playerID int32) {
	if _, ok := r.sessions[playerID]; !ok {
		return
	}
	delete(r.sessions, playerID)
	r.pending = r.pending[:0]
	r.players.Store(int32(len(r.sessions)))
	if len(r.sessions) == 0 {
		r.emptySince.Store(time.Now().UnixNano())
	}
	r.log.Info().Int32("player_id", playerID).Msg("player left")
}

// step runs one tick: simulate, report, broadcast.
func (r *Room) step() StepResult {
	res := r.sim.Step(r.pending)
	r.pending = r.pending[:0]
	r.tick.Store(res.Tick)

	r.report(res)
	r.cfg.Metrics.recordStep(res)
	r.broadcaster.Broadcast(res, r.sessions)
	return res
}

func (r *Room) report(res StepResult) {
	var playerID int32 = -1
	for id := range r.sessions {
		playerID = id
	}

	for _, f := range res.Failures {
		r.log.Error().Err(f.Err).Uint32("tick", res.Tick).Uint32("seq", f.Sequence).
			Int("history_ticks", r.sim.History().Capacity()).Msg("shot not resolved")
	}

	for _, shot := range res.Shots {
		r.log.Info().
			Uint32("tick", shot.Tick).
			Uint32("seq", shot.Sequence).
			Uint32("ref_tick", shot.ReferenceTick).
			Uint32("camera_tick", shot.CameraTick).
			Float64("fraction", shot.Fraction).
			Float64("yaw", shot.Yaw).
			Float64("pitch", shot.Pitch).
			Bool("hit", shot.Hit).
			Msg("shot resolved")

		rec := storage.ShotRecord{
			RoomID:        r.id,
			PlayerID:      playerID,
			Tick:          shot.Tick,
			Sequence:      shot.Sequence,
			ReferenceTick: shot.ReferenceTick,
			CameraTick:    shot.CameraTick,
			Fraction:      shot.Fraction,
			Subtick:       shot.Subtick,
			TargetX:       shot.TargetPosition.X,
			TargetY:       shot.TargetPosition.Y,
			TargetZ:       shot.TargetPosition.Z,
			Yaw:           shot.Yaw,
			Pitch:         shot.Pitch,
			Hit:           shot.Hit,
		}
		if err := r.cfg.Recorder.Record(r.ctx, rec); err != nil {
			r.log.Warn().Err(err).Uint32("seq", shot.Sequence).Msg("record shot")
		}
	}
}

func (r *Room) closeAllSessions() {
	for _, s := range r.sessions {
		s.CloseWithoutNotify()
	}
}
