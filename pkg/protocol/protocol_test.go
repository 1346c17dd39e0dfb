package protocol

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"lagcomp/pkg/core"
)

func TestFramedStreamDemultiplexes(t *testing.T) {
	var buf bytes.Buffer
	gu := &GameUpdate{LastProcessedInputSequence: 41, Tick: 900, Yaw: -1.2, Pitch: 0.3, TargetX: 1, TargetY: 2, TargetZ: -3}
	su := &SoundUpdate{Sound: uint32(core.SoundServerHit), X: 4, Y: 5, Z: 6}

	for _, pkt := range []*Packet{NewGameUpdatePacket(gu), NewSoundUpdatePacket(su), NewPingPacket(-17)} {
		if err := WritePacket(&buf, pkt); err != nil {
			t.Fatalf("write %s: %v", pkt.Type, err)
		}
	}

	pkt, err := ReadPacket(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	gotGU, err := ParseGameUpdate(pkt)
	if err != nil {
		t.Fatalf("parse game update: %v", err)
	}
	if *gotGU != *gu {
		t.Errorf("game update = %+v, want %+v", gotGU, gu)
	}

	pkt, err = ReadPacket(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if _, err := ParseGameUpdate(pkt); !errors.Is(err, ErrUnexpectedType) {
		t.Errorf("parsing sound as game update: err = %v", err)
	}
	gotSU, err := ParseSoundUpdate(pkt)
	if err != nil || *gotSU != *su {
		t.Errorf("sound update = %+v (%v), want %+v", gotSU, err, su)
	}

	pkt, err = ReadPacket(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	ping, err := ParsePing(pkt)
	if err != nil || ping.ClientTime != -17 {
		t.Errorf("ping = %+v (%v)", ping, err)
	}

	if _, err := ReadPacket(&buf); !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF after last packet, got %v", err)
	}
}

func TestReadPacketRejectsOversizedHeader(t *testing.T) {
	data := []byte{byte(MessageTypeGameUpdate), 0xff, 0xff}
	if _, err := ReadPacket(bytes.NewReader(data)); !errors.Is(err, ErrPacketTooLarge) {
		t.Fatalf("err = %v, want ErrPacketTooLarge", err)
	}
}

func TestUnmarshalPacketLengthMismatch(t *testing.T) {
	data, err := MarshalPacket(NewPingPacket(5))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := UnmarshalPacket(data[:len(data)-1]); !errors.Is(err, ErrShortPacket) {
		t.Errorf("truncated: err = %v", err)
	}
	if _, err := UnmarshalPacket(data[:2]); !errors.Is(err, ErrShortPacket) {
		t.Errorf("header only: err = %v", err)
	}
}

func TestMouseUpdateSkipsUnknownFields(t *testing.T) {
	m := &MouseUpdate{Sequence: 12, X: 3.5, Y: -2, FirePressed: true, Sensitivity: 0.002, SubtickFraction: 0.25}
	b := m.Marshal()
	b = protowire.AppendTag(b, 99, protowire.BytesType)
	b = protowire.AppendString(b, "from a newer client")

	var got MouseUpdate
	if err := got.Unmarshal(b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != *m {
		t.Fatalf("got %+v, want %+v", got, *m)
	}
}

func TestMouseUpdateToCoreSampleClampsFraction(t *testing.T) {
	for _, tc := range []struct{ in, want float64 }{
		{-0.5, 0}, {0.4, 0.4}, {3, 1}, {math.NaN(), 0},
	} {
		s := MouseUpdateToCoreSample(&MouseUpdate{SubtickFraction: tc.in})
		if s.SubtickFraction != tc.want {
			t.Errorf("fraction %v -> %v, want %v", tc.in, s.SubtickFraction, tc.want)
		}
	}
}

func TestSampleConversionKeepsFireStamp(t *testing.T) {
	s := core.InputSample{
		Sequence: 7, PointerX: 10, PointerY: 20, FireHeld: true, Sensitivity: 0.5,
		SubtickFraction: 0.75, EntityTickBeforeFire: 100, CameraTickBeforeFire: 104,
		SubtickPointerX: 9, SubtickPointerY: 19,
	}
	var wire MouseUpdate
	if err := wire.Unmarshal(CoreSampleToMouseUpdate(s).Marshal()); err != nil {
		t.Fatal(err)
	}
	if got := MouseUpdateToCoreSample(&wire); got != s {
		t.Fatalf("got %+v, want %+v", got, s)
	}
}
