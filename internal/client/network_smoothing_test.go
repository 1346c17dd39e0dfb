package client

import (
	"testing"

	"lagcomp/pkg/core"
)

func TestInterpolatorBetweenTwoUpdates(t *testing.T) {
	e := NewEntityInterpolator(0.5)
	e.Push(10, core.Vec3{X: 0})
	if pos, ok := e.Position(); !ok || pos.X != 0 || e.Ready() {
		t.Fatalf("single update: %v %v ready=%v", pos, ok, e.Ready())
	}
	e.Push(11, core.Vec3{X: 4})

	e.Advance(0.125)
	if pos, _ := e.Position(); pos.X != 1 {
		t.Fatalf("position %v, want x=1", pos)
	}
	if e.Progress() != 0.25 || e.EntityTick() != 10 {
		t.Fatalf("progress %v tick %d", e.Progress(), e.EntityTick())
	}
}

func TestInterpolatorIgnoresStale(t *testing.T) {
	e := NewEntityInterpolator(0.5)
	e.Push(10, core.Vec3{X: 1})
	e.Push(10, core.Vec3{X: 2})
	e.Push(9, core.Vec3{X: 3})
	if e.Len() != 1 {
		t.Fatalf("len %d, want 1", e.Len())
	}
}

func TestInterpolatorReleasesOldest(t *testing.T) {
	e := NewEntityInterpolator(0.5)
	e.Push(1, core.Vec3{X: 0})
	e.Push(2, core.Vec3{X: 2})
	e.Push(3, core.Vec3{X: 4})

	e.Advance(0.75)
	if e.EntityTick() != 2 || e.Progress() != 0.5 {
		t.Fatalf("tick %d progress %v", e.EntityTick(), e.Progress())
	}
	if pos, _ := e.Position(); pos.X != 3 {
		t.Fatalf("position %v", pos)
	}

	// out of newer updates: hold at the newest
	e.Advance(5)
	if pos, _ := e.Position(); pos.X != 4 || e.EntityTick() != 2 {
		t.Fatalf("position %v tick %d", pos, e.EntityTick())
	}
}

func TestInterpolatorSkipsAheadWhenFull(t *testing.T) {
	e := NewEntityInterpolator(0.5)
	for i := 1; i <= InterpolationBufferSize+1; i++ {
		e.Push(uint32(i), core.Vec3{X: float64(i)})
	}
	if e.Len() != 2 || e.EntityTick() != InterpolationBufferSize {
		t.Fatalf("len %d tick %d", e.Len(), e.EntityTick())
	}
}

func TestInterpolatorStampSpansDroppedTicks(t *testing.T) {
	e := NewEntityInterpolator(0.5)
	if tick, frac := e.Stamp(); tick != 0 || frac != 0 {
		t.Fatalf("empty stamp %d %v", tick, frac)
	}
	e.Push(10, core.Vec3{X: 0})
	if tick, frac := e.Stamp(); tick != 10 || frac != 0 {
		t.Fatalf("single update stamp %d %v", tick, frac)
	}

	// ticks 11 and 12 never arrived
	e.Push(13, core.Vec3{X: 6})
	e.Advance(0.25)
	if pos, _ := e.Position(); pos.X != 3 {
		t.Fatalf("position %v, want x=3", pos)
	}
	if tick, frac := e.Stamp(); tick != 11 || frac != 0.5 {
		t.Fatalf("stamp %d %v, want 11 0.5", tick, frac)
	}

	// holding on the newest update
	e.Advance(0.5)
	if tick, frac := e.Stamp(); tick != 13 || frac != 0 {
		t.Fatalf("stamp %d %v, want 13 0", tick, frac)
	}
}
