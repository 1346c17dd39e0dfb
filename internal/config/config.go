// Package config loads server and client settings from defaults, an optional
// config file and LAGCOMP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid config")

type ServerConfig struct {
	Addr         string
	Proto        string // tcp|kcp
	TPS          int
	HistoryTicks int
	MaxRTT       time.Duration
	Subtick      bool
	Seed         int64
}

// TickPeriod is the duration of one simulation tick.
func (s ServerConfig) TickPeriod() time.Duration {
	return time.Second / time.Duration(s.TPS)
}

type ClientConfig struct {
	ServerAddr          string
	Proto               string
	PlayerName          string
	SendHz              int
	Sensitivity         float64
	EntityInterpolation bool
	Subtick             bool
}

// SendPeriod is the interval between two MouseUpdates.
func (c ClientConfig) SendPeriod() time.Duration {
	return time.Second / time.Duration(c.SendHz)
}

type StorageConfig struct {
	Type      string
	DSN       string
	QueueSize int
}

type LogConfig struct {
	Level  string
	Format string
}

type Config struct {
	Server    ServerConfig
	Client    ClientConfig
	Storage   StorageConfig
	Log       LogConfig
	JWTSecret string
}

// Validate checks that the snapshot history outlives the worst shot a client
// can send: one that took max_rtt plus a transmit period to arrive.
func (c Config) Validate() error {
	if c.Server.TPS <= 0 {
		return fmt.Errorf("%w: server.tps must be positive", ErrInvalidConfig)
	}
	if c.Client.SendHz <= 0 {
		return fmt.Errorf("%w: client.send_hz must be positive", ErrInvalidConfig)
	}
	switch c.Server.Proto {
	case "tcp", "kcp":
	default:
		return fmt.Errorf("%w: server.proto %q", ErrInvalidConfig, c.Server.Proto)
	}
	window := time.Duration(c.Server.HistoryTicks) * c.Server.TickPeriod()
	need := c.Server.MaxRTT + c.Client.SendPeriod()
	if window <= need {
		return fmt.Errorf("%w: history of %d ticks covers %v, need more than %v",
			ErrInvalidConfig, c.Server.HistoryTicks, window, need)
	}
	return nil
}

// Loader owns a viper instance.
type Loader struct {
	v *viper.Viper
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":7777")
	v.SetDefault("server.proto", "tcp")
	v.SetDefault("server.tps", 60)
	v.SetDefault("server.history_ticks", 64)
	v.SetDefault("server.max_rtt", "500ms")
	v.SetDefault("server.subtick", true)
	v.SetDefault("server.seed", 1)

	v.SetDefault("client.server_addr", "127.0.0.1:7777")
	v.SetDefault("client.proto", "tcp")
	v.SetDefault("client.player_name", "player")
	v.SetDefault("client.send_hz", 60)
	v.SetDefault("client.sensitivity", 0.002)
	v.SetDefault("client.entity_interpolation", false)
	v.SetDefault("client.subtick", true)

	v.SetDefault("storage.type", "memory")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.queue_size", 256)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("jwt.secret", "lagcomp-dev-secret")
}

// NewLoader reads path if it is non-empty. A missing file is an error; an
// empty path means defaults and environment only.
func NewLoader(path string) (*Loader, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("LAGCOMP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return &Loader{v: v}, nil
}

// Load is NewLoader followed by Config.
func Load(path string) (Config, error) {
	l, err := NewLoader(path)
	if err != nil {
		return Config{}, err
	}
	return l.Config()
}

// Config snapshots the current values and validates them.
func (l *Loader) Config() (Config, error) {
	v := l.v
	cfg := Config{
		Server: ServerConfig{
			Addr:         v.GetString("server.addr"),
			Proto:        v.GetString("server.proto"),
			TPS:          v.GetInt("server.tps"),
			HistoryTicks: v.GetInt("server.history_ticks"),
			MaxRTT:       v.GetDuration("server.max_rtt"),
			Subtick:      v.GetBool("server.subtick"),
			Seed:         v.GetInt64("server.seed"),
		},
		Client: ClientConfig{
			ServerAddr:          v.GetString("client.server_addr"),
			Proto:               v.GetString("client.proto"),
			PlayerName:          v.GetString("client.player_name"),
			SendHz:              v.GetInt("client.send_hz"),
			Sensitivity:         v.GetFloat64("client.sensitivity"),
			EntityInterpolation: v.GetBool("client.entity_interpolation"),
			Subtick:             v.GetBool("client.subtick"),
		},
		Storage: StorageConfig{
			Type:      v.GetString("storage.type"),
			DSN:       v.GetString("storage.dsn"),
			QueueSize: v.GetInt("storage.queue_size"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		JWTSecret: v.GetString("jwt.secret"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Set overrides a key, e.g. from a command line flag.
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// Watch calls fn with the reloaded config whenever the config file changes.
// Invalid edits are reported to onErr and otherwise ignored.
func (l *Loader) Watch(fn func(Config), onErr func(error)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := l.Config()
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			return
		}
		fn(cfg)
	})
	l.v.WatchConfig()
}
