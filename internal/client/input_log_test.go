package client

import (
	"testing"

	"lagcomp/pkg/core"
)

func TestInputLogSequencesFromOne(t *testing.T) {
	l := NewInputLog()
	for i := 1; i <= 3; i++ {
		if s := l.Append(float64(i), 0, sens); s.Sequence != uint32(i) {
			t.Fatalf("sample %d got sequence %d", i, s.Sequence)
		}
	}
	if l.LastSequence() != 3 || l.Len() != 3 {
		t.Fatalf("last %d len %d", l.LastSequence(), l.Len())
	}
}

func TestInputLogTrimKeepsOrder(t *testing.T) {
	l := NewInputLog()
	for i := 0; i < 5; i++ {
		l.Append(float64(i), 0, sens)
	}
	if n := l.TrimBefore(4); n != 3 {
		t.Fatalf("trimmed %d, want 3", n)
	}
	if n := l.TrimBefore(2); n != 0 {
		t.Fatalf("trimmed %d on second pass", n)
	}
	got := l.Samples()
	if len(got) != 2 || got[0].Sequence != 4 || got[1].Sequence != 5 {
		t.Fatalf("remaining %+v", got)
	}

	// sequence numbering is not affected by trimming
	if s := l.Append(9, 9, sens); s.Sequence != 6 {
		t.Fatalf("next sequence %d, want 6", s.Sequence)
	}
}

func TestInputLogIsBounded(t *testing.T) {
	l := NewInputLog()
	for i := 0; i < MaxInputLog+10; i++ {
		l.Append(0, 0, sens)
	}
	if l.Len() != MaxInputLog || l.Dropped() != 10 {
		t.Fatalf("len %d dropped %d", l.Len(), l.Dropped())
	}
	if s, _ := l.Latest(); s.Sequence != MaxInputLog+10 {
		t.Fatalf("latest %d", s.Sequence)
	}
}

func TestSamplerPredictsImmediately(t *testing.T) {
	l := NewInputLog()
	p := NewPredictor()
	s := NewSampler(l, p, sens)

	s.Sample(50, 50)
	if p.Camera().Yaw != core.DefaultYaw {
		t.Fatal("first sample should only seed the baseline")
	}
	s.Sample(60, 40)
	cam := p.Camera()
	if !nearly(cam.Yaw, core.DefaultYaw+10*sens) || !nearly(cam.Pitch, 10*sens) {
		t.Fatalf("camera %+v", cam)
	}
	if x, y := p.LastPointer(); x != 60 || y != 40 {
		t.Fatalf("last pointer (%v, %v)", x, y)
	}
}
