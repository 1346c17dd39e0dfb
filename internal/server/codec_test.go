package server

import (
	"errors"
	"testing"

	"lagcomp/pkg/core"
	"lagcomp/pkg/protocol"
)

func TestDecodePacket(t *testing.T) {
	sample := core.InputSample{Sequence: 3, PointerX: 1, PointerY: 2, FireHeld: true, Sensitivity: 0.5, SubtickFraction: 0.5, EntityTickBeforeFire: 8, CameraTickBeforeFire: 9}
	ev, err := DecodePacket(protocol.NewMouseUpdatePacket(protocol.CoreSampleToMouseUpdate(sample)))
	if err != nil {
		t.Fatal(err)
	}
	if ev.Kind != EventInput || *ev.Input != sample {
		t.Fatalf("event %+v", ev)
	}

	ev, err = DecodePacket(protocol.NewJoinRequestPacket("ana", "tok"))
	if err != nil {
		t.Fatal(err)
	}
	if ev.Kind != EventJoin || ev.Join.PlayerName != "ana" || ev.Join.SessionToken != "tok" {
		t.Fatalf("event %+v", ev)
	}

	ev, err = DecodePacket(protocol.NewPingPacket(99))
	if err != nil || ev.Kind != EventPing || ev.Ping.ClientTime != 99 {
		t.Fatalf("ping: %+v %v", ev, err)
	}
}

func TestDecodePacketRejectsServerMessages(t *testing.T) {
	_, err := DecodePacket(protocol.NewGameUpdatePacket(&protocol.GameUpdate{Tick: 1}))
	if !errors.Is(err, protocol.ErrUnknownMessage) {
		t.Fatalf("err = %v, want ErrUnknownMessage", err)
	}
}
