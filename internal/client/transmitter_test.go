package client

import (
	"testing"
	"time"

	"lagcomp/pkg/core"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// frame is 1/60 s rounded up so every step lands past the send period.
const frame = 17 * time.Millisecond

func TestTransmitterCadence(t *testing.T) {
	tx := NewTransmitter(60)
	sample := core.InputSample{Sequence: 1}

	if out := tx.Poll(t0, sample, true); !out.Due || !out.Send {
		t.Fatalf("first poll %+v, want a send", out)
	}
	if out := tx.Poll(t0.Add(5*time.Millisecond), sample, true); out.Due {
		t.Fatal("sent twice inside one period")
	}
	if out := tx.Poll(t0.Add(frame), sample, true); !out.Send {
		t.Fatal("no send after a full period")
	}
}

func TestTransmitterSkipsEmptyLog(t *testing.T) {
	tx := NewTransmitter(60)
	out := tx.Poll(t0, core.InputSample{}, false)
	if !out.Due || out.Send {
		t.Fatalf("poll %+v, want due without send", out)
	}
}

func TestTransmitterLatchesShortPress(t *testing.T) {
	tx := NewTransmitter(60)
	sample := core.InputSample{Sequence: 9, PointerX: 5, PointerY: 6}
	stamp := FireStamp{SubtickFraction: 0.4, EntityTick: 11, CameraTick: 12, PointerX: 3, PointerY: 4}

	tx.Poll(t0, sample, true)

	// press and release strictly between two sends
	tx.ObserveFire(false, FireStamp{})
	if !tx.ObserveFire(true, stamp) {
		t.Fatal("press not reported as an edge")
	}
	tx.ObserveFire(false, FireStamp{CameraTick: 99})

	out := tx.Poll(t0.Add(frame), sample, true)
	if !out.FireEdge || !out.Sample.FireHeld {
		t.Fatalf("short press lost: %+v", out)
	}
	s := out.Sample
	if s.SubtickFraction != 0.4 || s.EntityTickBeforeFire != 11 || s.CameraTickBeforeFire != 12 ||
		s.SubtickPointerX != 3 || s.SubtickPointerY != 4 {
		t.Fatalf("fire stamp not carried: %+v", s)
	}
	if s.Sequence != 9 || s.PointerX != 5 {
		t.Fatalf("sample fields changed: %+v", s)
	}

	out = tx.Poll(t0.Add(2*frame), sample, true)
	if out.FireEdge || out.Sample.FireHeld {
		t.Fatalf("fire not cleared after send: %+v", out)
	}
}

func TestTransmitterHeldFireIsOneEdge(t *testing.T) {
	tx := NewTransmitter(60)
	sample := core.InputSample{Sequence: 1}

	var edges, held int
	for i := 0; i < 5; i++ {
		tx.ObserveFire(true, FireStamp{CameraTick: uint32(i + 1)})
		out := tx.Poll(t0.Add(time.Duration(i)*frame), sample, true)
		if out.FireEdge {
			edges++
		}
		if out.Sample.FireHeld {
			held++
		}
		if out.Sample.CameraTickBeforeFire != 1 {
			t.Fatalf("send %d: stamp moved to tick %d", i, out.Sample.CameraTickBeforeFire)
		}
	}
	if edges != 1 || held != 5 {
		t.Fatalf("edges %d held %d, want 1 and 5", edges, held)
	}
}

func TestTransmitterKeepsFireUntilFirstSample(t *testing.T) {
	tx := NewTransmitter(60)
	tx.Poll(t0, core.InputSample{}, false)
	tx.ObserveFire(true, FireStamp{CameraTick: 4})
	tx.ObserveFire(false, FireStamp{})

	// released before any pointer sample existed
	out := tx.Poll(t0.Add(frame), core.InputSample{}, false)
	if out.FireEdge || out.Send {
		t.Fatalf("poll %+v, want nothing without a sample", out)
	}

	out = tx.Poll(t0.Add(2*frame), core.InputSample{Sequence: 1}, true)
	if !out.Send || !out.FireEdge || !out.Sample.FireHeld || out.Sample.CameraTickBeforeFire != 4 {
		t.Fatalf("poll %+v, want the press delivered with the first sample", out)
	}
	if out := tx.Poll(t0.Add(3*frame), core.InputSample{Sequence: 1}, true); out.FireEdge || out.Sample.FireHeld {
		t.Fatalf("poll %+v, press delivered twice", out)
	}
}
