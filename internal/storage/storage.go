// Package storage records resolved shots for later analysis.
package storage

import (
	"context"
	"errors"
	"time"
)

var ErrClosed = errors.New("storage closed")

// ShotRecord is one resolved shot as the server evaluated it.
type ShotRecord struct {
	ID            uint   `gorm:"primaryKey"`
	RoomID        string `gorm:"index"`
	PlayerID      int32  `gorm:"index"`
	Tick          uint32
	Sequence      uint32
	ReferenceTick uint32
	CameraTick    uint32
	Fraction      float64
	Subtick       bool
	TargetX       float64
	TargetY       float64
	TargetZ       float64
	Yaw           float64
	Pitch         float64
	Hit           bool
	CreatedAt     time.Time
}

// Stats summarises the shots of one room.
type Stats struct {
	Shots int64
	Hits  int64
}

// Accuracy is hits over shots, 0 when nothing was fired.
func (s Stats) Accuracy() float64 {
	if s.Shots == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Shots)
}

// Recorder accepts shot records.
type Recorder interface {
	Record(ctx context.Context, rec ShotRecord) error
	Close() error
}

// Store is a Recorder that can also be queried.
type Store interface {
	Recorder
	Recent(ctx context.Context, roomID string, limit int) ([]ShotRecord, error)
	Stats(ctx context.Context, roomID string) (Stats, error)
}
