package server

import (
	"fmt"

	"lagcomp/pkg/protocol"
)

// DecodePacket turns a client packet into a server event.
func DecodePacket(pkt *protocol.Packet) (*ServerEvent, error) {
	switch pkt.Type {
	case protocol.MessageTypeJoinRequest:
		req, err := protocol.ParseJoinRequest(pkt)
		if err != nil {
			return nil, err
		}
		return &ServerEvent{
			Kind: EventJoin,
			Join: &JoinEvent{PlayerName: req.PlayerName, SessionToken: req.SessionToken},
		}, nil

	case protocol.MessageTypeMouseUpdate:
		m, err := protocol.ParseMouseUpdate(pkt)
		if err != nil {
			return nil, err
		}
		sample := protocol.MouseUpdateToCoreSample(m)
		return &ServerEvent{Kind: EventInput, Input: &sample}, nil

	case protocol.MessageTypePing:
		ping, err := protocol.ParsePing(pkt)
		if err != nil {
			return nil, err
		}
		return &ServerEvent{Kind: EventPing, Ping: &PingEvent{ClientTime: ping.ClientTime}}, nil

	case protocol.MessageTypePong:
		pong, err := protocol.ParsePong(pkt)
		if err != nil {
			return nil, err
		}
		return &ServerEvent{
			Kind: EventPong,
			Pong: &PongEvent{ClientTime: pong.ClientTime, ServerTime: pong.ServerTime, ServerTick: pong.ServerTick},
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", protocol.ErrUnknownMessage, pkt.Type)
}
