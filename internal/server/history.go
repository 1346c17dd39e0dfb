package server

import (
	"errors"
	"fmt"

	"lagcomp/pkg/core"
)

// ErrTickEvicted means a shot referenced a tick the history no longer holds.
// The history window is too short for the observed latency.
var ErrTickEvicted = errors.New("tick evicted from snapshot history")

// Snapshot is the state captured at the start of a tick, after the target's
// own motion and before any input of that tick.
type Snapshot struct {
	Tick     uint32
	Position core.Vec3
	State    core.StateHandle
	Camera   core.CameraState
}

type historySlot struct {
	snap  Snapshot
	valid bool
}

// SnapshotHistory is a fixed-capacity ring indexed by tick modulo capacity.
// Capturing a tick overwrites whatever tick shared its slot.
type SnapshotHistory struct {
	slots  []historySlot
	latest uint32
}

func NewSnapshotHistory(capacity int) *SnapshotHistory {
	if capacity < 2 {
		capacity = 2
	}
	return &SnapshotHistory{slots: make([]historySlot, capacity)}
}

func (h *SnapshotHistory) Capacity() int {
	return len(h.slots)
}

// Latest returns the newest captured tick.
func (h *SnapshotHistory) Latest() uint32 {
	return h.latest
}

// Capture records body and camera state for tick.
func (h *SnapshotHistory) Capture(tick uint32, body core.PhysicsBody, camera core.CameraState) {
	h.slots[h.index(tick)] = historySlot{
		snap: Snapshot{
			Tick:     tick,
			Position: body.Position(),
			State:    body.Snapshot(),
			Camera:   camera,
		},
		valid: true,
	}
	if tick > h.latest {
		h.latest = tick
	}
}

// Lookup returns the snapshot for tick, or ErrTickEvicted if it was never
// captured or has been overwritten.
func (h *SnapshotHistory) Lookup(tick uint32) (Snapshot, error) {
	slot := h.slots[h.index(tick)]
	if !slot.valid || slot.snap.Tick != tick {
		return Snapshot{}, fmt.Errorf("%w: tick %d (latest %d, capacity %d)", ErrTickEvicted, tick, h.latest, len(h.slots))
	}
	return slot.snap, nil
}

// Camera returns the camera recorded at tick.
func (h *SnapshotHistory) Camera(tick uint32) (core.CameraState, error) {
	snap, err := h.Lookup(tick)
	if err != nil {
		return core.CameraState{}, err
	}
	return snap.Camera, nil
}

func (h *SnapshotHistory) index(tick uint32) int {
	return int(tick % uint32(len(h.slots)))
}
