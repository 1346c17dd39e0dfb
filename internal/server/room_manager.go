package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"lagcomp/pkg/core"
)

const (
	// RoomEmptyTimeout is how long an abandoned range is kept so its shooter
	// can resume it with a session token.
	RoomEmptyTimeout = SessionTTL
	cleanupInterval  = 30 * time.Second
)

// RoomManager gives every shooter its own room and routes traffic by player.
type RoomManager struct {
	ctx context.Context
	cfg RoomConfig
	log zerolog.Logger

	rooms     map[string]*Room // room id -> room
	players   map[int32]string // player id -> room id
	roomMutex sync.RWMutex
	wg        sync.WaitGroup
	shutdown  chan struct{}
}

func NewRoomManager(ctx context.Context, cfg RoomConfig) *RoomManager {
	return &RoomManager{
		ctx:      ctx,
		cfg:      cfg,
		log:      cfg.Log,
		rooms:    make(map[string]*Room),
		players:  make(map[int32]string),
		shutdown: make(chan struct{}),
	}
}

// Run starts the idle-room reaper.
func (m *RoomManager) Run() {
	m.wg.Add(1)
	go m.cleanupLoop()
}

func (m *RoomManager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.shutdown:
			return
		case now := <-ticker.C:
			m.cleanupEmptyRooms(now)
		}
	}
}

func (m *RoomManager) cleanupEmptyRooms(now time.Time) {
	m.roomMutex.Lock()
	defer m.roomMutex.Unlock()

	for id, room := range m.rooms {
		if room.PlayerCount() == 0 && room.EmptyFor(now) > RoomEmptyTimeout {
			m.log.Info().Str("room", id).Msg("closing idle room")
			room.Shutdown()
			delete(m.rooms, id)
		}
	}
}

// RoomFor returns an existing room.
func (m *RoomManager) RoomFor(roomID string) (*Room, bool) {
	m.roomMutex.RLock()
	defer m.roomMutex.RUnlock()
	r, ok := m.rooms[roomID]
	return r, ok
}

func (m *RoomManager) getOrCreateRoom(roomID string) *Room {
	m.roomMutex.Lock()
	defer m.roomMutex.Unlock()

	if room, ok := m.rooms[roomID]; ok {
		return room
	}

	m.log.Info().Str("room", roomID).Msg("creating room")
	room := NewRoom(m.ctx, roomID, m.cfg)
	m.rooms[roomID] = room

	m.wg.Add(1)
	go room.Run(&m.wg)
	return room
}

// Join places session into roomID, creating the room if needed.
func (m *RoomManager) Join(session Session, playerID int32, roomID, token string) error {
	room := m.getOrCreateRoom(roomID)
	if err := room.Join(session, playerID, token); err != nil {
		return err
	}

	m.roomMutex.Lock()
	m.players[playerID] = roomID
	m.roomMutex.Unlock()
	return nil
}

func (m *RoomManager) roomOf(playerID int32) (*Room, bool) {
	m.roomMutex.RLock()
	defer m.roomMutex.RUnlock()
	roomID, ok := m.players[playerID]
	if !ok {
		return nil, false
	}
	room, ok := m.rooms[roomID]
	return room, ok
}

func (m *RoomManager) EnqueueInput(playerID int32, sample core.InputSample) {
	room, ok := m.roomOf(playerID)
	if !ok {
		m.log.Warn().Int32("player_id", playerID).Msg("input for player without a room dropped")
		return
	}
	room.EnqueueInput(playerID, sample)
}

func (m *RoomManager) Leave(playerID int32) {
	room, ok := m.roomOf(playerID)
	if !ok {
		return
	}
	m.roomMutex.Lock()
	delete(m.players, playerID)
	m.roomMutex.Unlock()
	room.Leave(playerID)
}

// CurrentTick returns the tick of playerID's room, 0 when it has none.
func (m *RoomManager) CurrentTick(playerID int32) uint32 {
	if room, ok := m.roomOf(playerID); ok {
		return room.CurrentTick()
	}
	return 0
}

func (m *RoomManager) Shutdown() {
	close(m.shutdown)

	m.roomMutex.Lock()
	m.log.Info().Int("rooms", len(m.rooms)).Msg("closing rooms")
	for _, room := range m.rooms {
		room.Shutdown()
	}
	m.roomMutex.Unlock()

	m.wg.Wait()
}

// RoomStats is a point-in-time view of one room.
type RoomStats struct {
	PlayerCount int
	Tick        uint32
}

func (m *RoomManager) Stats() map[string]RoomStats {
	m.roomMutex.RLock()
	defer m.roomMutex.RUnlock()

	stats := make(map[string]RoomStats, len(m.rooms))
	for id, room := range m.rooms {
		stats[id] = RoomStats{PlayerCount: room.PlayerCount(), Tick: room.CurrentTick()}
	}
	return stats
}

func rangeRoomID(playerID int32) string {
	return fmt.Sprintf("range-%d", playerID)
}
