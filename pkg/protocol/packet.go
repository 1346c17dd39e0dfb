package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MessageType tags a packet so the receiver can route it to a handler.
type MessageType uint8

const (
	MessageTypeUnknown MessageType = iota
	MessageTypeMouseUpdate
	MessageTypeGameUpdate
	MessageTypeSoundUpdate
	MessageTypeJoinRequest
	MessageTypeJoinResponse
	MessageTypePing
	MessageTypePong
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeMouseUpdate:
		return "MOUSE_UPDATE"
	case MessageTypeGameUpdate:
		return "GAME_UPDATE"
	case MessageTypeSoundUpdate:
		return "SOUND_UPDATE"
	case MessageTypeJoinRequest:
		return "JOIN_REQUEST"
	case MessageTypeJoinResponse:
		return "JOIN_RESPONSE"
	case MessageTypePing:
		return "PING"
	case MessageTypePong:
		return "PONG"
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint8(t))
}

const (
	// HeaderSize is type (1 byte) + payload length (2 bytes, big endian).
	HeaderSize     = 3
	MaxPayloadSize = 4096
)

var (
	ErrPacketTooLarge = errors.New("packet too large")
	ErrShortPacket    = errors.New("short packet")
	ErrUnknownMessage = errors.New("unknown message type")
	ErrUnexpectedType = errors.New("unexpected message type")
)

// Header precedes every payload on the wire.
type Header struct {
	Type   MessageType
	Length uint16
}

// Packet is a demultiplexed message: its type tag and encoded body.
type Packet struct {
	Type    MessageType
	Payload []byte
}

// MarshalPacket prefixes the payload with its header.
func MarshalPacket(pkt *Packet) ([]byte, error) {
	if pkt == nil {
		return nil, errors.New("nil packet")
	}
	if len(pkt.Payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPacketTooLarge, len(pkt.Payload))
	}
	buf := make([]byte, HeaderSize+len(pkt.Payload))
	buf[0] = byte(pkt.Type)
	binary.BigEndian.PutUint16(buf[1:HeaderSize], uint16(len(pkt.Payload)))
	copy(buf[HeaderSize:], pkt.Payload)
	return buf, nil
}

// UnmarshalPacket splits one complete framed packet.
func UnmarshalPacket(data []byte) (*Packet, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortPacket, len(data))
	}
	h := decodeHeader(data)
	if int(h.Length) != len(data)-HeaderSize {
		return nil, fmt.Errorf("%w: header says %d, have %d", ErrShortPacket, h.Length, len(data)-HeaderSize)
	}
	payload := make([]byte, h.Length)
	copy(payload, data[HeaderSize:])
	return &Packet{Type: h.Type, Payload: payload}, nil
}

// ReadPacket reads one framed packet from a stream.
func ReadPacket(r io.Reader) (*Packet, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	h := decodeHeader(hdr[:])
	if h.Length > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPacketTooLarge, h.Length)
	}
	payload := make([]byte, h.Length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return &Packet{Type: h.Type, Payload: payload}, nil
}

// WritePacket writes one framed packet to a stream.
func WritePacket(w io.Writer, pkt *Packet) error {
	data, err := MarshalPacket(pkt)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func decodeHeader(b []byte) Header {
	return Header{
		Type:   MessageType(b[0]),
		Length: binary.BigEndian.Uint16(b[1:HeaderSize]),
	}
}
