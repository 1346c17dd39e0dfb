package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"lagcomp/internal/config"
	"lagcomp/internal/logging"
	"lagcomp/internal/server"
	"lagcomp/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "config file (yaml or json)")
	address := flag.String("addr", "", "listen address, overrides server.addr")
	proto := flag.String("proto", "", "tcp or kcp, overrides server.proto")
	flag.Parse()

	boot := logging.Bootstrap(os.Stderr)
	loader, err := config.NewLoader(*configPath)
	if err != nil {
		boot.Fatal().Err(err).Msg("load config")
	}
	if *address != "" {
		loader.Set("server.addr", *address)
	}
	if *proto != "" {
		loader.Set("server.proto", *proto)
	}
	cfg, err := loader.Config()
	if err != nil {
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	recorder, err := storage.OpenRecorder(storage.Config{
		Type:      cfg.Storage.Type,
		DSN:       cfg.Storage.DSN,
		QueueSize: cfg.Storage.QueueSize,
	}, logging.Component(log, "storage"))
	if err != nil {
		log.Fatal().Err(err).Str("type", cfg.Storage.Type).Msg("open storage")
	}

	gameServer, err := server.NewGameServer(server.Options{
		Addr:         cfg.Server.Addr,
		Proto:        cfg.Server.Proto,
		TPS:          cfg.Server.TPS,
		HistoryTicks: cfg.Server.HistoryTicks,
		Subtick:      cfg.Server.Subtick,
		Seed:         cfg.Server.Seed,
		JWTSecret:    cfg.JWTSecret,
		Recorder:     recorder,
		Log:          log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create server")
	}
	if err := gameServer.Listen(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Server.Addr).Msg("listen")
	}

	log.Info().
		Str("addr", gameServer.Addr().String()).
		Str("proto", cfg.Server.Proto).
		Int("tps", cfg.Server.TPS).
		Int("history_ticks", cfg.Server.HistoryTicks).
		Dur("max_rtt", cfg.Server.MaxRTT).
		Bool("subtick", cfg.Server.Subtick).
		Str("storage", cfg.Storage.Type).
		Msg("server running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutting down")
	gameServer.Shutdown()
}
