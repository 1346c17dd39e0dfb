package server

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

	"lagcomp/pkg/protocol"
)

const (
	readTimeout  = 5 * time.Second
	writeTimeout = 1 * time.Second
	sendQueueLen = 256
)

var (
	ErrSendQueueFull    = errors.New("send queue full")
	ErrConnectionClosed = errors.New("connection closed")
)

// Connection is one client socket: a framed receive loop, a send loop fed by
// a bounded queue, and a heartbeat.
type Connection struct {
	conn     net.Conn
	server   *GameServer
	log      zerolog.Logger
	playerID int32

	sendChan chan []byte
	closeCh  chan struct{}
	closed   bool
	closeMu  sync.Mutex

	lastRecvTime atomic.Value
	rtt          atomic.Int64 // milliseconds
}

func NewConnection(conn net.Conn, server *GameServer) *Connection {
	c := &Connection{
		conn:     conn,
		server:   server,
		log:      server.log.With().Str("remote", conn.RemoteAddr().String()).Logger(),
		playerID: -1,
		sendChan: make(chan []byte, sendQueueLen),
		closeCh:  make(chan struct{}),
	}
	c.lastRecvTime.Store(time.Now())
	return c
}

// Handle runs the connection until ctx is cancelled or the peer goes away.
func (c *Connection) Handle(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	c.log.Debug().Msg("connection opened")

	wg.Add(3)
	go c.startHeartbeat(ctx, wg)
	go c.sendLoop(ctx, wg)
	go c.receiveLoop(ctx, wg)

	select {
	case <-ctx.Done():
	case <-c.closeCh:
	}
	c.Close()
}

// Close closes the socket and removes the player from its room.
func (c *Connection) Close() {
	c.closeWithNotify(true)
}

// CloseWithoutNotify closes the socket only; used when the room itself is
// tearing down.
func (c *Connection) CloseWithoutNotify() {
	c.closeWithNotify(false)
}

func (c *Connection) closeWithNotify(notify bool) {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.closeCh)
	if c.conn != nil {
		c.conn.Close()
	}
	close(c.sendChan)

	if notify {
		if playerID := c.getPlayerID(); playerID >= 0 {
			c.server.removePlayer(playerID)
		}
	}
	c.log.Info().Int32("player_id", c.getPlayerID()).Msg("connection closed")
}

// Send queues framed data without blocking.
func (c *Connection) Send(data []byte) error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return ErrConnectionClosed
	}
	select {
	case c.sendChan <- data:
		return nil
	default:
		return ErrSendQueueFull
	}
}

func (c *Connection) sendPacket(pkt *protocol.Packet) error {
	data, err := protocol.Marshal(pkt)
	if err != nil {
		return err
	}
	return c.Send(data)
}

func (c *Connection) sendLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.sendChan:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if _, err := c.conn.Write(data); err != nil {
				c.log.Warn().Err(err).Int32("player_id", c.getPlayerID()).Msg("write failed")
				c.Close()
				return
			}
		}
	}
}

func (c *Connection) receiveLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		pkt, err := protocol.ReadPacket(c.conn)
		if err != nil {
			var netErr net.Error
			switch {
			case errors.As(err, &netErr) && netErr.Timeout():
				c.log.Warn().Int32("player_id", c.getPlayerID()).Msg("read timeout")
			case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
			default:
				c.log.Warn().Err(err).Int32("player_id", c.getPlayerID()).Msg("read failed")
			}
			c.Close()
			return
		}

		c.lastRecvTime.Store(time.Now())
		if err := c.handlePacket(pkt); err != nil {
			c.log.Warn().Err(err).Int32("player_id", c.getPlayerID()).Stringer("type", pkt.Type).Msg("handle packet")
		}
	}
}

func (c *Connection) handlePacket(pkt *protocol.Packet) error {
	event, err := DecodePacket(pkt)
	if err != nil {
		return err
	}

	switch event.Kind {
	case EventJoin:
		if c.getPlayerID() >= 0 {
			return fmt.Errorf("player %d already joined", c.getPlayerID())
		}
		return c.server.handleJoin(c, event.Join)

	case EventInput:
		playerID := c.getPlayerID()
		if playerID < 0 {
			return errors.New("input before join")
		}
		c.server.handleInput(playerID, *event.Input)

	case EventPing:
		tick := c.server.currentTick(c.getPlayerID())
		return c.sendPacket(protocol.NewPongPacket(event.Ping.ClientTime, time.Now().UnixMilli(), tick))

	case EventPong:
		c.handlePong(event.Pong)
	}
	return nil
}

func (c *Connection) String() string {
	if id := c.getPlayerID(); id >= 0 {
		return fmt.Sprintf("Connection{%d, %s}", id, c.conn.RemoteAddr())
	}
	return fmt.Sprintf("Connection{%s}", c.conn.RemoteAddr())
}

func (c *Connection) getPlayerID() int32 {
	return atomic.LoadInt32(&c.playerID)
}

func (c *Connection) ID() int32 {
	return c.getPlayerID()
}

func (c *Connection) SetPlayerID(playerID int32) {
	atomic.StoreInt32(&c.playerID, playerID)
}

// RTT returns the last measured round trip.
func (c *Connection) RTT() time.Duration {
	return time.Duration(c.rtt.Load()) * time.Millisecond
}

const (
	heartbeatInterval = 1 * time.Second
	heartbeatTimeout  = 15 * time.Second
)

func (c *Connection) startHeartbeat(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closeCh:
			return
		case <-ticker.C:
			lastRecv, _ := c.lastRecvTime.Load().(time.Time)
			if time.Since(lastRecv) > heartbeatTimeout {
				c.log.Warn().Int32("player_id", c.getPlayerID()).Msg("heartbeat timeout")
				c.Close()
				return
			}
			_ = c.sendPacket(protocol.NewPingPacket(time.Now().UnixMilli()))
		}
	}
}

func (c *Connection) handlePong(pong *PongEvent) {
	if pong.ClientTime <= 0 {
		return
	}
	rtt := time.Duration(time.Now().UnixMilli()-pong.ClientTime) * time.Millisecond
	c.rtt.Store(rtt.Milliseconds())
	c.server.observeRTT(c.getPlayerID(), rtt)
}
