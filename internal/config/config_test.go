package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7777", cfg.Server.Addr)
	assert.Equal(t, "tcp", cfg.Server.Proto)
	assert.Equal(t, 60, cfg.Server.TPS)
	assert.Equal(t, 64, cfg.Server.HistoryTicks)
	assert.Equal(t, 500*time.Millisecond, cfg.Server.MaxRTT)
	assert.True(t, cfg.Server.Subtick)
	assert.False(t, cfg.Client.EntityInterpolation)
	assert.Equal(t, 0.002, cfg.Client.Sensitivity)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, time.Second/60, cfg.Server.TickPeriod())
}

func TestFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lagcomp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  proto: kcp
  history_ticks: 120
client:
  entity_interpolation: true
storage:
  type: sqlite
  dsn: shots.db
`), 0o644))
	t.Setenv("LAGCOMP_SERVER_TPS", "30")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "kcp", cfg.Server.Proto)
	assert.Equal(t, 120, cfg.Server.HistoryTicks)
	assert.Equal(t, 30, cfg.Server.TPS)
	assert.True(t, cfg.Client.EntityInterpolation)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, "shots.db", cfg.Storage.DSN)
}

func TestMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateHistoryWindow(t *testing.T) {
	l, err := NewLoader("")
	require.NoError(t, err)

	// 30 ticks at 60 TPS is 500ms, not more than 500ms RTT plus a send period.
	l.Set("server.history_ticks", 30)
	_, err = l.Config()
	assert.ErrorIs(t, err, ErrInvalidConfig)

	l.Set("server.history_ticks", 32)
	_, err = l.Config()
	assert.NoError(t, err)

	l.Set("server.proto", "quic")
	_, err = l.Config()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lagcomp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("client:\n  sensitivity: 0.002\n"), 0o644))

	l, err := NewLoader(path)
	require.NoError(t, err)

	got := make(chan float64, 4)
	l.Watch(func(c Config) { got <- c.Client.Sensitivity }, nil)

	require.NoError(t, os.WriteFile(path, []byte("client:\n  sensitivity: 0.004\n"), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case s := <-got:
			if s == 0.004 {
				return
			}
		case <-deadline:
			t.Fatal("config change not observed")
		}
	}
}
