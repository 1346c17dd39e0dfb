package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleShots() []ShotRecord {
	return []ShotRecord{
		{RoomID: "range-1", PlayerID: 1, Tick: 10, Sequence: 4, Hit: true, TargetX: 0.5},
		{RoomID: "range-1", PlayerID: 1, Tick: 12, Sequence: 6, Hit: false},
		{RoomID: "range-2", PlayerID: 2, Tick: 3, Sequence: 1, Hit: true},
		{RoomID: "range-1", PlayerID: 1, Tick: 15, Sequence: 9, Hit: true},
	}
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	for _, rec := range sampleShots() {
		require.NoError(t, s.Record(ctx, rec))
	}

	recent, err := s.Recent(ctx, "range-1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, uint32(15), recent[0].Tick)
	assert.Equal(t, uint32(12), recent[1].Tick)

	all, err := s.Recent(ctx, "range-1", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 0.5, all[2].TargetX)

	st, err := s.Stats(ctx, "range-1")
	require.NoError(t, err)
	assert.Equal(t, Stats{Shots: 3, Hits: 2}, st)
	assert.InDelta(t, 2.0/3.0, st.Accuracy(), 1e-9)

	empty, err := s.Stats(ctx, "nowhere")
	require.NoError(t, err)
	assert.Zero(t, empty.Accuracy())
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseStore(t, s)
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Record(context.Background(), ShotRecord{}), ErrClosed)
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "shots.db"), zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteInMemory(t *testing.T) {
	s, err := OpenSQLite("", zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

type blockingRecorder struct {
	release chan struct{}
	got     chan ShotRecord
}

func (b *blockingRecorder) Record(_ context.Context, rec ShotRecord) error {
	<-b.release
	b.got <- rec
	return nil
}

func (b *blockingRecorder) Close() error { return nil }

func TestAsyncRecorderDropsWhenFull(t *testing.T) {
	next := &blockingRecorder{release: make(chan struct{}), got: make(chan ShotRecord, 8)}
	a := NewAsyncRecorder(next, 1, zerolog.Nop())
	ctx := context.Background()

	// The worker takes the first record and blocks on it; the second fills
	// the queue; the third has nowhere to go.
	require.NoError(t, a.Record(ctx, ShotRecord{Tick: 1}))
	require.Eventually(t, func() bool { return len(a.queue) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, a.Record(ctx, ShotRecord{Tick: 2}))
	assert.ErrorIs(t, a.Record(ctx, ShotRecord{Tick: 3}), ErrQueueFull)

	close(next.release)
	require.NoError(t, a.Close())
	close(next.got)

	var ticks []uint32
	for rec := range next.got {
		ticks = append(ticks, rec.Tick)
	}
	assert.Equal(t, []uint32{1, 2}, ticks)
	assert.ErrorIs(t, a.Record(ctx, ShotRecord{}), ErrClosed)
}

func TestOpen(t *testing.T) {
	s, err := Open(Config{Type: "memory"}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Open(Config{Type: "postgres"}, zerolog.Nop())
	assert.Error(t, err)

	_, err = Open(Config{Type: "cassandra"}, zerolog.Nop())
	assert.Error(t, err)

	r, err := OpenRecorder(Config{Type: "none"}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, NopRecorder{}, r)

	r, err = OpenRecorder(Config{Type: "memory", QueueSize: 4}, zerolog.Nop())
	require.NoError(t, err)
	assert.NoError(t, r.Record(context.Background(), ShotRecord{RoomID: "x"}))
	assert.NoError(t, r.Close())
}
