package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records []ShotRecord
	nextID  uint
	closed  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Record(_ context.Context, rec ShotRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.nextID++
	rec.ID = s.nextID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	s.records = append(s.records, rec)
	return nil
}

// Recent returns up to limit records for roomID, newest first.
func (s *MemoryStore) Recent(_ context.Context, roomID string, limit int) ([]ShotRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ShotRecord
	for i := len(s.records) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if s.records[i].RoomID == roomID {
			out = append(out, s.records[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) Stats(_ context.Context, roomID string) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var st Stats
	for _, r := range s.records {
		if r.RoomID != roomID {
			continue
		}
		st.Shots++
		if r.Hit {
			st.Hits++
		}
	}
	return st, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, ShotRecord) error { return nil }
func (NopRecorder) Close() error                             { return nil }
