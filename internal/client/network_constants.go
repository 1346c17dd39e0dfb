package client

import "time"

// Client networking and prediction tuning.
const (
	// DefaultSendHz is the input transmit rate when none is configured.
	DefaultSendHz = 60.0

	// InterpolationBufferSize bounds how many target updates the entity
	// interpolator holds before it skips ahead.
	InterpolationBufferSize = 8

	// MaxInputLog bounds unacknowledged samples kept for replay.
	MaxInputLog = 4096

	// Queue sizes between the network goroutines and the game loop.
	SendQueueSize   = 256
	UpdateQueueSize = 256
	SoundQueueSize  = 64

	DialTimeout  = 5 * time.Second
	JoinTimeout  = 10 * time.Second
	PingInterval = 1 * time.Second
	WriteTimeout = 1 * time.Second
)
