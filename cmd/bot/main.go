// Command bot is a headless client that aims at and shoots the target with
// the behaviour-tree aim bot.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lagcomp/internal/client"
	"lagcomp/internal/config"
	"lagcomp/internal/logging"
	"lagcomp/pkg/ai"
)

func main() {
	configPath := flag.String("config", "", "config file (yaml or json)")
	address := flag.String("addr", "", "server address, overrides client.server_addr")
	hard := flag.Bool("hard", false, "use the hard aim preset")
	seed := flag.Int64("seed", time.Now().UnixNano(), "aim noise seed")
	duration := flag.Duration("duration", 0, "stop after this long (0 runs until interrupted)")
	flag.Parse()

	boot := logging.Bootstrap(os.Stderr)
	loader, err := config.NewLoader(*configPath)
	if err != nil {
		boot.Fatal().Err(err).Msg("load config")
	}
	if *address != "" {
		loader.Set("client.server_addr", *address)
	}
	cfg, err := loader.Config()
	if err != nil {
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	network := client.NewNetworkClient(cfg.Client.ServerAddr, cfg.Client.Proto, "bot", log)
	info, err := network.Connect("")
	if err != nil {
		log.Fatal().Err(err).Msg("connect")
	}
	defer network.Close()

	tps := int(info.TPS)
	if tps <= 0 {
		tps = cfg.Server.TPS
	}
	frame := time.Second / time.Duration(tps)

	session := client.NewSession(network, client.SessionConfig{
		SendHz:              float64(cfg.Client.SendHz),
		Sensitivity:         cfg.Client.Sensitivity,
		EntityInterpolation: cfg.Client.EntityInterpolation,
		Subtick:             cfg.Client.Subtick,
		UpdatePeriod:        frame.Seconds(),
		Log:                 log,
	})

	preset := ai.AimConfigNormal
	if *hard {
		preset = ai.AimConfigHard
	}
	preset.Sensitivity = cfg.Client.Sensitivity
	bot := ai.NewAimControllerWithConfig(*seed, &preset)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	var deadline <-chan time.Time
	if *duration > 0 {
		deadline = time.After(*duration)
	}

	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	var shots, hits int
	last := time.Now()
	for {
		select {
		case <-sigChan:
			log.Info().Int("shots", shots).Int("client_hits", hits).Msg("bot stopped")
			return
		case <-deadline:
			log.Info().Int("shots", shots).Int("client_hits", hits).Msg("bot finished")
			return
		case now := <-ticker.C:
			if err := network.Err(); err != nil {
				log.Error().Err(err).Msg("connection lost")
				return
			}
			d := bot.Decide(session.Camera(), session.Target(), session.HasTarget())
			if d.Moved {
				session.OnPointer(d.PointerX, d.PointerY)
			}
			res := session.Update(now, d.Fire, now.Sub(last).Seconds())
			last = now
			if res.Shot != nil {
				shots++
				if res.Shot.Hit {
					hits++
				}
			}
		}
	}
}
