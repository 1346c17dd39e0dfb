package protocol

import "fmt"

type marshaler interface {
	Marshal() []byte
}

type unmarshaler interface {
	Unmarshal([]byte) error
}

func newPacket(t MessageType, m marshaler) *Packet {
	return &Packet{Type: t, Payload: m.Marshal()}
}

func parse(pkt *Packet, want MessageType, dst unmarshaler) error {
	if pkt == nil {
		return fmt.Errorf("%w: nil packet", ErrUnexpectedType)
	}
	if pkt.Type != want {
		return fmt.Errorf("%w: got %s, want %s", ErrUnexpectedType, pkt.Type, want)
	}
	if err := dst.Unmarshal(pkt.Payload); err != nil {
		return fmt.Errorf("decode %s: %w", want, err)
	}
	return nil
}

// ========== Client messages ==========

func NewMouseUpdatePacket(m *MouseUpdate) *Packet {
	return newPacket(MessageTypeMouseUpdate, m)
}

func NewJoinRequestPacket(playerName, sessionToken string) *Packet {
	return newPacket(MessageTypeJoinRequest, &JoinRequest{PlayerName: playerName, SessionToken: sessionToken})
}

func NewPingPacket(clientTime int64) *Packet {
	return newPacket(MessageTypePing, &Ping{ClientTime: clientTime})
}

// ========== Server messages ==========

func NewGameUpdatePacket(m *GameUpdate) *Packet {
	return newPacket(MessageTypeGameUpdate, m)
}

func NewSoundUpdatePacket(m *SoundUpdate) *Packet {
	return newPacket(MessageTypeSoundUpdate, m)
}

func NewJoinResponsePacket(m *JoinResponse) *Packet {
	return newPacket(MessageTypeJoinResponse, m)
}

func NewPongPacket(clientTime, serverTime int64, serverTick uint32) *Packet {
	return newPacket(MessageTypePong, &Pong{ClientTime: clientTime, ServerTime: serverTime, ServerTick: serverTick})
}

// ========== Parsing ==========

func ParseMouseUpdate(pkt *Packet) (*MouseUpdate, error) {
	m := &MouseUpdate{}
	return m, parse(pkt, MessageTypeMouseUpdate, m)
}

func ParseGameUpdate(pkt *Packet) (*GameUpdate, error) {
	m := &GameUpdate{}
	return m, parse(pkt, MessageTypeGameUpdate, m)
}

func ParseSoundUpdate(pkt *Packet) (*SoundUpdate, error) {
	m := &SoundUpdate{}
	return m, parse(pkt, MessageTypeSoundUpdate, m)
}

func ParseJoinRequest(pkt *Packet) (*JoinRequest, error) {
	m := &JoinRequest{}
	return m, parse(pkt, MessageTypeJoinRequest, m)
}

func ParseJoinResponse(pkt *Packet) (*JoinResponse, error) {
	m := &JoinResponse{}
	return m, parse(pkt, MessageTypeJoinResponse, m)
}

func ParsePing(pkt *Packet) (*Ping, error) {
	m := &Ping{}
	return m, parse(pkt, MessageTypePing, m)
}

func ParsePong(pkt *Packet) (*Pong, error) {
	m := &Pong{}
	return m, parse(pkt, MessageTypePong, m)
}

// Marshal frames a packet for the wire.
func Marshal(pkt *Packet) ([]byte, error) {
	return MarshalPacket(pkt)
}
