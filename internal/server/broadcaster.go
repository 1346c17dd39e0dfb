package server

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"lagcomp/pkg/protocol"
)

// Broadcaster encodes a tick's output and fans it out to every session.
type Broadcaster struct {
	log     zerolog.Logger
	metrics *Metrics
}

func NewBroadcaster(log zerolog.Logger, metrics *Metrics) *Broadcaster {
	return &Broadcaster{log: log, metrics: metrics}
}

// Encode returns the framed GameUpdate followed by one SoundUpdate per sound.
func (b *Broadcaster) Encode(res StepResult) ([][]byte, error) {
	out := make([][]byte, 0, 1+len(res.Sounds))

	update := protocol.NewGameUpdate(res.LastProcessed, res.Tick, res.Camera, res.Target)
	data, err := protocol.Marshal(protocol.NewGameUpdatePacket(update))
	if err != nil {
		return nil, fmt.Errorf("encode game update: %w", err)
	}
	out = append(out, data)

	for _, s := range res.Sounds {
		data, err := protocol.Marshal(protocol.NewSoundUpdatePacket(protocol.CoreSoundToProto(s)))
		if err != nil {
			return nil, fmt.Errorf("encode sound update: %w", err)
		}
		out = append(out, data)
	}
	return out, nil
}

// Broadcast sends res to all sessions. Delivery is best effort: a full send
// queue drops the packet for that session only.
func (b *Broadcaster) Broadcast(res StepResult, sessions map[int32]Session) {
	if len(sessions) == 0 {
		return
	}
	packets, err := b.Encode(res)
	if err != nil {
		b.log.Error().Err(err).Uint32("tick", res.Tick).Msg("encode broadcast")
		return
	}
	for id, s := range sessions {
		for _, data := range packets {
			if err := s.Send(data); err != nil {
				if errors.Is(err, ErrSendQueueFull) {
					b.metrics.recordDropped()
				}
				b.log.Debug().Err(err).Int32("player_id", id).Uint32("tick", res.Tick).Msg("broadcast send failed")
				break
			}
		}
	}
}
