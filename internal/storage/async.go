package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var ErrQueueFull = errors.New("record queue full")

const writeTimeout = 2 * time.Second

// AsyncRecorder queues records for a background writer so callers on the
// tick loop never wait on I/O. A full queue drops the record.
type AsyncRecorder struct {
	next  Recorder
	queue chan ShotRecord
	log   zerolog.Logger

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
	done      chan struct{}
}

func NewAsyncRecorder(next Recorder, size int, log zerolog.Logger) *AsyncRecorder {
	if size <= 0 {
		size = 256
	}
	a := &AsyncRecorder{
		next:  next,
		queue: make(chan ShotRecord, size),
		log:   log,
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *AsyncRecorder) Record(_ context.Context, rec ShotRecord) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- rec:
		return nil
	default:
		return ErrQueueFull
	}
}

func (a *AsyncRecorder) run() {
	defer close(a.done)
	for rec := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := a.next.Record(ctx, rec); err != nil {
			a.log.Warn().Err(err).Uint32("tick", rec.Tick).Str("room", rec.RoomID).Msg("record shot")
		}
		cancel()
	}
}

// Close flushes queued records and closes the underlying recorder.
func (a *AsyncRecorder) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.queue)
		a.mu.Unlock()
		<-a.done
		err = a.next.Close()
	})
	return err
}
