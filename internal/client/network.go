package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"lagcomp/internal/transport"
	"lagcomp/pkg/core"
	"lagcomp/pkg/protocol"
)

var (
	ErrNotConnected  = errors.New("not connected")
	ErrSendQueueFull = errors.New("send queue full")
	ErrJoinRejected  = errors.New("join rejected")
)

// JoinInfo is what the server told us when it accepted the join.
type JoinInfo struct {
	PlayerID     int32
	SessionToken string
	TPS          uint32
	CurrentTick  uint32
	HistoryTicks uint32
}

// NetworkClient owns the connection to the game server. A receive goroutine
// demultiplexes packets into bounded queues that the game loop drains
// without blocking; a send goroutine writes pre-framed packets.
type NetworkClient struct {
	conn       net.Conn
	serverAddr string
	proto      string
	playerName string
	log        zerolog.Logger

	join      JoinInfo
	connected atomic.Bool
	rtt       atomic.Int64 // nanoseconds
	closeOnce sync.Once

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	updateChan chan *protocol.GameUpdate
	soundChan  chan core.SoundEvent
	joinChan   chan *protocol.JoinResponse
	sendChan   chan []byte
	errChan    chan error

	droppedUpdates atomic.Int64
}

// NewNetworkClient creates a client for serverAddr over proto (tcp or kcp).
func NewNetworkClient(serverAddr, proto, playerName string, log zerolog.Logger) *NetworkClient {
	ctx, cancel := context.WithCancel(context.Background())
	return &NetworkClient{
		serverAddr: serverAddr,
		proto:      proto,
		playerName: playerName,
		log:        log.With().Str("component", "network").Logger(),
		ctx:        ctx,
		cancel:     cancel,
		updateChan: make(chan *protocol.GameUpdate, UpdateQueueSize),
		soundChan:  make(chan core.SoundEvent, SoundQueueSize),
		joinChan:   make(chan *protocol.JoinResponse, 1),
		sendChan:   make(chan []byte, SendQueueSize),
		errChan:    make(chan error, 1),
	}
}

// Connect dials the server and performs the join handshake. A non-empty
// sessionToken asks the server to resume an earlier session.
func (nc *NetworkClient) Connect(sessionToken string) (JoinInfo, error) {
	nc.log.Info().Str("addr", nc.serverAddr).Str("proto", nc.proto).Msg("connecting")

	conn, err := transport.Dial(nc.proto, nc.serverAddr, DialTimeout)
	if err != nil {
		return JoinInfo{}, fmt.Errorf("dial %s: %w", nc.serverAddr, err)
	}
	nc.conn = conn
	nc.connected.Store(true)

	nc.wg.Add(3)
	go nc.receiveLoop()
	go nc.sendLoop()
	go nc.pingLoop()

	if err := nc.sendPacket(protocol.NewJoinRequestPacket(nc.playerName, sessionToken)); err != nil {
		nc.Close()
		return JoinInfo{}, fmt.Errorf("send join request: %w", err)
	}

	timer := time.NewTimer(JoinTimeout)
	defer timer.Stop()

	select {
	case resp := <-nc.joinChan:
		if !resp.Success {
			nc.Close()
			return JoinInfo{}, fmt.Errorf("%w: %s", ErrJoinRejected, resp.ErrorMessage)
		}
		nc.join = JoinInfo{
			PlayerID:     int32(resp.PlayerID),
			SessionToken: resp.SessionToken,
			TPS:          resp.TPS,
			CurrentTick:  resp.CurrentTick,
			HistoryTicks: resp.HistoryTicks,
		}
		nc.log.Info().
			Int32("player_id", nc.join.PlayerID).
			Uint32("tick", nc.join.CurrentTick).
			Uint32("tps", nc.join.TPS).
			Msg("joined")
		return nc.join, nil

	case err := <-nc.errChan:
		nc.Close()
		return JoinInfo{}, err

	case <-timer.C:
		nc.Close()
		return JoinInfo{}, errors.New("timed out waiting for join response")
	}
}

// Close shuts the connection and waits for the loops to exit.
func (nc *NetworkClient) Close() {
	nc.closeOnce.Do(func() {
		nc.connected.Store(false)
		nc.cancel()
		if nc.conn != nil {
			nc.conn.Close()
		}
		nc.wg.Wait()
		nc.log.Info().Msg("network client closed")
	})
}

func (nc *NetworkClient) Join() JoinInfo { return nc.join }

func (nc *NetworkClient) IsConnected() bool { return nc.connected.Load() }

// RTT is the most recent round trip measured by ping.
func (nc *NetworkClient) RTT() time.Duration { return time.Duration(nc.rtt.Load()) }

// DroppedUpdates counts GameUpdates discarded because the queue was full.
func (nc *NetworkClient) DroppedUpdates() int64 { return nc.droppedUpdates.Load() }

// Err returns a pending fatal receive error, if any.
func (nc *NetworkClient) Err() error {
	select {
	case err := <-nc.errChan:
		return err
	default:
		return nil
	}
}

// ========== Receive ==========

func (nc *NetworkClient) receiveLoop() {
	defer nc.wg.Done()
	defer nc.connected.Store(false)

	for {
		pkt, err := protocol.ReadPacket(nc.conn)
		if err != nil {
			if nc.ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) {
				nc.reportErr(fmt.Errorf("server closed connection: %w", err))
			} else {
				nc.reportErr(fmt.Errorf("read: %w", err))
			}
			return
		}
		if err := nc.handlePacket(pkt); err != nil {
			nc.log.Debug().Err(err).Stringer("type", pkt.Type).Msg("drop packet")
		}
	}
}

func (nc *NetworkClient) reportErr(err error) {
	select {
	case nc.errChan <- err:
	default:
	}
}

func (nc *NetworkClient) handlePacket(pkt *protocol.Packet) error {
	switch pkt.Type {
	case protocol.MessageTypeGameUpdate:
		u, err := protocol.ParseGameUpdate(pkt)
		if err != nil {
			return err
		}
		select {
		case nc.updateChan <- u:
		default:
			nc.droppedUpdates.Add(1)
		}

	case protocol.MessageTypeSoundUpdate:
		m, err := protocol.ParseSoundUpdate(pkt)
		if err != nil {
			return err
		}
		select {
		case nc.soundChan <- protocol.ProtoSoundToCore(m):
		default:
		}

	case protocol.MessageTypeJoinResponse:
		m, err := protocol.ParseJoinResponse(pkt)
		if err != nil {
			return err
		}
		select {
		case nc.joinChan <- m:
		default:
		}

	case protocol.MessageTypePing:
		m, err := protocol.ParsePing(pkt)
		if err != nil {
			return err
		}
		return nc.sendPacket(protocol.NewPongPacket(m.ClientTime, time.Now().UnixMilli(), 0))

	case protocol.MessageTypePong:
		m, err := protocol.ParsePong(pkt)
		if err != nil {
			return err
		}
		rtt := time.Since(time.UnixMilli(m.ClientTime))
		if rtt >= 0 {
			nc.rtt.Store(int64(rtt))
		}

	default:
		return fmt.Errorf("%w: %s", protocol.ErrUnknownMessage, pkt.Type)
	}
	return nil
}

// ========== Send ==========

func (nc *NetworkClient) sendLoop() {
	defer nc.wg.Done()

	for {
		select {
		case <-nc.ctx.Done():
			return
		case data := <-nc.sendChan:
			_ = nc.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
			if _, err := nc.conn.Write(data); err != nil {
				nc.log.Warn().Err(err).Msg("write failed")
				nc.reportErr(fmt.Errorf("write: %w", err))
				return
			}
		}
	}
}

func (nc *NetworkClient) pingLoop() {
	defer nc.wg.Done()

	ticker := time.NewTicker(PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-nc.ctx.Done():
			return
		case <-ticker.C:
			_ = nc.sendPacket(protocol.NewPingPacket(time.Now().UnixMilli()))
		}
	}
}

func (nc *NetworkClient) sendPacket(pkt *protocol.Packet) error {
	if !nc.connected.Load() {
		return ErrNotConnected
	}
	data, err := protocol.Marshal(pkt)
	if err != nil {
		return err
	}
	select {
	case nc.sendChan <- data:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// ========== Transport ==========

// SendInput queues one MouseUpdate.
func (nc *NetworkClient) SendInput(sample core.InputSample) error {
	return nc.sendPacket(protocol.NewMouseUpdatePacket(protocol.CoreSampleToMouseUpdate(sample)))
}

// ReceiveUpdate returns the next queued GameUpdate, or nil.
func (nc *NetworkClient) ReceiveUpdate() *protocol.GameUpdate {
	select {
	case u := <-nc.updateChan:
		return u
	default:
		return nil
	}
}

// ReceiveSound returns the next queued sound.
func (nc *NetworkClient) ReceiveSound() (core.SoundEvent, bool) {
	select {
	case s := <-nc.soundChan:
		return s, true
	default:
		return core.SoundEvent{}, false
	}
}
