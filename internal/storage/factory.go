package storage

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Config selects a backend.
type Config struct {
	Type      string // none|memory|sqlite|postgres
	DSN       string
	QueueSize int
}

// Open builds the configured store. The returned Store is not yet wrapped in
// an AsyncRecorder; callers on hot paths should do that themselves.
func Open(cfg Config, log zerolog.Logger) (Store, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return OpenSQLite(cfg.DSN, log)
	case "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres storage requires a dsn")
		}
		return OpenPostgres(cfg.DSN, log)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// OpenRecorder returns the async write path for cfg, or a NopRecorder when
// recording is disabled.
func OpenRecorder(cfg Config, log zerolog.Logger) (Recorder, error) {
	if cfg.Type == "none" {
		return NopRecorder{}, nil
	}
	store, err := Open(cfg, log)
	if err != nil {
		return nil, err
	}
	return NewAsyncRecorder(store, cfg.QueueSize, log), nil
}
