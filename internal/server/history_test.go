package server

import (
	"errors"
	"testing"

	"lagcomp/pkg/core"
)

func TestSnapshotHistoryLookup(t *testing.T) {
	h := NewSnapshotHistory(4)
	body := core.NewTargetBody(core.Vec3{})
	for tick := uint32(1); tick <= 4; tick++ {
		body.SetPosition(core.Vec3{X: float64(tick)})
		h.Capture(tick, body, core.NewCameraState().WithOrientation(float64(tick), 0))
	}

	for tick := uint32(1); tick <= 4; tick++ {
		snap, err := h.Lookup(tick)
		if err != nil {
			t.Fatalf("tick %d: %v", tick, err)
		}
		if snap.Tick != tick || snap.Position.X != float64(tick) || snap.Camera.Yaw != float64(tick) {
			t.Errorf("tick %d: got %+v", tick, snap)
		}
	}
	if h.Latest() != 4 {
		t.Errorf("latest = %d", h.Latest())
	}
}

func TestSnapshotHistoryEvictsOldest(t *testing.T) {
	h := NewSnapshotHistory(4)
	body := core.NewTargetBody(core.Vec3{})
	for tick := uint32(1); tick <= 6; tick++ {
		h.Capture(tick, body, core.NewCameraState())
	}

	for _, tick := range []uint32{1, 2} {
		if _, err := h.Lookup(tick); !errors.Is(err, ErrTickEvicted) {
			t.Errorf("tick %d: err = %v, want ErrTickEvicted", tick, err)
		}
	}
	for _, tick := range []uint32{3, 4, 5, 6} {
		if _, err := h.Lookup(tick); err != nil {
			t.Errorf("tick %d: %v", tick, err)
		}
	}
	if _, err := h.Camera(7); !errors.Is(err, ErrTickEvicted) {
		t.Errorf("future tick: err = %v, want ErrTickEvicted", err)
	}
	if _, err := NewSnapshotHistory(8).Lookup(0); !errors.Is(err, ErrTickEvicted) {
		t.Errorf("empty history: err = %v", err)
	}
}

func TestSnapshotRestoresBodyExactly(t *testing.T) {
	h := NewSnapshotHistory(8)
	body := core.NewTargetBody(core.Vec3{X: 1, Y: 2, Z: 3})
	body.MoveTo(core.Vec3{X: 1.5, Y: 2, Z: 3}, core.FixedDeltaTime)
	h.Capture(3, body, core.NewCameraState())
	want := *body

	body.MoveTo(core.Vec3{X: 9}, core.FixedDeltaTime)
	snap, err := h.Lookup(3)
	if err != nil {
		t.Fatal(err)
	}
	if err := body.Restore(snap.State); err != nil {
		t.Fatal(err)
	}
	if *body != want {
		t.Fatalf("restored %+v, want %+v", *body, want)
	}
}
