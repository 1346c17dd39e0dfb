package main

import (
	"flag"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"lagcomp/internal/client"
	"lagcomp/internal/client/view"
	"lagcomp/internal/config"
	"lagcomp/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "config file (yaml or json); edits are picked up live")
	address := flag.String("addr", "", "server address, overrides client.server_addr")
	name := flag.String("name", "", "player name, overrides client.player_name")
	token := flag.String("token", "", "session token from an earlier join")
	flag.Parse()

	boot := logging.Bootstrap(os.Stderr)
	loader, err := config.NewLoader(*configPath)
	if err != nil {
		boot.Fatal().Err(err).Msg("load config")
	}
	if *address != "" {
		loader.Set("client.server_addr", *address)
	}
	if *name != "" {
		loader.Set("client.player_name", *name)
	}
	cfg, err := loader.Config()
	if err != nil {
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	network := client.NewNetworkClient(cfg.Client.ServerAddr, cfg.Client.Proto, cfg.Client.PlayerName, log)
	info, err := network.Connect(*token)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Client.ServerAddr).Msg("connect")
	}
	defer network.Close()
	log.Info().Str("token", info.SessionToken).Msg("pass -token to resume this session")

	tickPeriod := cfg.Server.TickPeriod()
	if info.TPS > 0 {
		tickPeriod = time.Second / time.Duration(info.TPS)
	}
	game := view.NewGame(network, cfg.Client, tickPeriod, log)

	if *configPath != "" {
		loader.Watch(func(c config.Config) {
			log.Info().
				Float64("sensitivity", c.Client.Sensitivity).
				Bool("entity_interpolation", c.Client.EntityInterpolation).
				Bool("subtick", c.Client.Subtick).
				Int("send_hz", c.Client.SendHz).
				Msg("client config reloaded")
			game.Reload(c.Client)
		}, func(err error) {
			log.Warn().Err(err).Msg("ignoring invalid config edit")
		})
	}

	ebiten.SetWindowSize(view.ScreenWidth, view.ScreenHeight)
	ebiten.SetWindowTitle("lagcomp - " + cfg.Client.PlayerName)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	ebiten.SetCursorMode(ebiten.CursorModeCaptured)
	ebiten.SetTPS(view.FPS)

	if err := ebiten.RunGame(game); err != nil {
		log.Error().Err(err).Msg("game stopped")
	}
}
