package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"lagcomp/internal/storage"
	"lagcomp/internal/transport"
	"lagcomp/pkg/core"
	"lagcomp/pkg/protocol"
)

// Options configure a GameServer.
type Options struct {
	Addr         string
	Proto        string // tcp|kcp
	TPS          int
	HistoryTicks int
	Subtick      bool
	Seed         int64
	JWTSecret    string
	Recorder     storage.Recorder
	Log          zerolog.Logger
}

type GameServer struct {
	opts    Options
	log     zerolog.Logger
	issuer  *TokenIssuer
	metrics *Metrics
	rooms   *RoomManager

	listener net.Listener

	nextPlayerID atomic.Int32

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	shutdown chan struct{}
	stopOnce sync.Once
}

func NewGameServer(opts Options) (*GameServer, error) {
	metrics, err := NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("create metrics: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &GameServer{
		opts:     opts,
		log:      opts.Log,
		issuer:   NewTokenIssuer(opts.JWTSecret),
		metrics:  metrics,
		ctx:      ctx,
		cancel:   cancel,
		shutdown: make(chan struct{}),
	}
	s.rooms = NewRoomManager(ctx, RoomConfig{
		TPS: opts.TPS,
		Simulation: SimulationConfig{
			HistoryTicks: opts.HistoryTicks,
			Subtick:      opts.Subtick,
			Seed:         opts.Seed,
		},
		Log:      opts.Log,
		Metrics:  metrics,
		Recorder: opts.Recorder,
	})
	return s, nil
}

// Listen binds the socket and starts serving in the background.
func (s *GameServer) Listen() error {
	listener, err := transport.Listen(s.opts.Proto, s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s/%s: %w", s.opts.Proto, s.opts.Addr, err)
	}
	s.listener = listener
	s.log.Info().Str("addr", listener.Addr().String()).Str("proto", s.opts.Proto).
		Bool("subtick", s.opts.Subtick).Msg("server listening")

	s.rooms.Run()

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Start listens and blocks until Shutdown.
func (s *GameServer) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	<-s.shutdown
	return nil
}

// Addr is the bound address; nil before Listen.
func (s *GameServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *GameServer) Rooms() *RoomManager { return s.rooms }

func (s *GameServer) Shutdown() {
	s.stopOnce.Do(func() {
		s.log.Info().Msg("shutting down")
		s.cancel()
		if s.listener != nil {
			s.listener.Close()
		}
		s.rooms.Shutdown()
		close(s.shutdown)
		s.wg.Wait()
		if s.opts.Recorder != nil {
			if err := s.opts.Recorder.Close(); err != nil {
				s.log.Warn().Err(err).Msg("close recorder")
			}
		}
		s.log.Info().Msg("server stopped")
	})
}

func (s *GameServer) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
				s.log.Warn().Err(err).Msg("accept failed")
				continue
			}
		}

		s.log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("new connection")
		c := NewConnection(conn, s)
		s.wg.Add(1)
		go c.Handle(s.ctx, &s.wg)
	}
}

// handleJoin assigns a player and a room, resuming both when the request
// carries a valid session token for a room that still exists.
func (s *GameServer) handleJoin(c *Connection, ev *JoinEvent) error {
	playerID, roomID := int32(0), ""
	if ev.SessionToken != "" {
		claims, err := s.issuer.Verify(ev.SessionToken)
		if err != nil {
			s.log.Warn().Err(err).Msg("ignoring session token")
		} else if _, ok := s.rooms.RoomFor(claims.RoomID); ok {
			playerID, roomID = claims.PlayerID, claims.RoomID
		}
	}
	if roomID == "" {
		playerID = s.nextPlayerID.Add(1)
		roomID = rangeRoomID(playerID)
	}

	token, err := s.issuer.Generate(playerID, roomID)
	if err != nil {
		return s.rejectJoin(c, fmt.Errorf("issue session token: %w", err))
	}
	if err := s.rooms.Join(c, playerID, roomID, token); err != nil {
		return s.rejectJoin(c, err)
	}
	s.log.Info().Int32("player_id", playerID).Str("room", roomID).Str("name", ev.PlayerName).Msg("join accepted")
	return nil
}

func (s *GameServer) rejectJoin(c *Connection, err error) error {
	_ = c.sendPacket(protocol.NewJoinResponsePacket(&protocol.JoinResponse{ErrorMessage: err.Error()}))
	return fmt.Errorf("join rejected: %w", err)
}

func (s *GameServer) handleInput(playerID int32, sample core.InputSample) {
	s.rooms.EnqueueInput(playerID, sample)
}

func (s *GameServer) removePlayer(playerID int32) {
	s.rooms.Leave(playerID)
}

func (s *GameServer) currentTick(playerID int32) uint32 {
	return s.rooms.CurrentTick(playerID)
}

// observeRTT warns when a client's latency approaches the rewind window.
func (s *GameServer) observeRTT(playerID int32, rtt time.Duration) {
	tps := s.opts.TPS
	if tps <= 0 {
		tps = core.TPS
	}
	tickPeriod := time.Second / time.Duration(tps)
	rttTicks := int(rtt / tickPeriod)
	if s.opts.HistoryTicks > 0 && rttTicks*4 >= s.opts.HistoryTicks*3 {
		s.log.Warn().Int32("player_id", playerID).Dur("rtt", rtt).Int("rtt_ticks", rttTicks).
			Int("history_ticks", s.opts.HistoryTicks).Msg("round trip near the rewind window")
	}
}
