package client

import (
	"math"

	"lagcomp/pkg/core"
)

// entityUpdate is one authoritative target position.
type entityUpdate struct {
	tick     uint32
	position core.Vec3
}

// EntityInterpolator renders the target between the two oldest buffered
// updates instead of snapping to the newest. Its cursor (the tick being
// interpolated from) advances independently of the reconciler's camera
// cursor.
type EntityInterpolator struct {
	buffer   []entityUpdate
	progress float64 // fraction of the way from buffer[0] to buffer[1]
	period   float64 // seconds between server updates
}

// NewEntityInterpolator creates an interpolator for updates sent every
// period seconds.
func NewEntityInterpolator(period float64) *EntityInterpolator {
	if period <= 0 {
		period = core.FixedDeltaTime
	}
	return &EntityInterpolator{
		buffer: make([]entityUpdate, 0, InterpolationBufferSize),
		period: period,
	}
}

// Push buffers an update. Ticks not newer than the last buffered one are
// ignored.
func (e *EntityInterpolator) Push(tick uint32, position core.Vec3) {
	if n := len(e.buffer); n > 0 && tick <= e.buffer[n-1].tick {
		return
	}
	e.buffer = append(e.buffer, entityUpdate{tick: tick, position: position})

	// fell too far behind: jump forward so the delay stays bounded
	if len(e.buffer) > InterpolationBufferSize {
		e.buffer = append(e.buffer[:0], e.buffer[len(e.buffer)-2:]...)
		e.progress = 0
	}
}

// Advance moves the render cursor forward by dt seconds. When a full period
// has elapsed the oldest update is released, provided a newer pair exists.
func (e *EntityInterpolator) Advance(dt float64) {
	if len(e.buffer) < 2 {
		return
	}
	e.progress += dt / e.period
	for e.progress >= 1 {
		if len(e.buffer) <= 2 {
			e.progress = 1
			return
		}
		e.buffer = e.buffer[1:]
		e.progress--
	}
}

// Ready reports whether two updates are buffered.
func (e *EntityInterpolator) Ready() bool { return len(e.buffer) >= 2 }

// Position is the interpolated target position. With a single update
// buffered it is that update's position.
func (e *EntityInterpolator) Position() (core.Vec3, bool) {
	switch len(e.buffer) {
	case 0:
		return core.Vec3{}, false
	case 1:
		return e.buffer[0].position, true
	}
	return core.Lerp(e.buffer[0].position, e.buffer[1].position, e.progress), true
}

// Progress is the current fraction between the two rendered updates.
func (e *EntityInterpolator) Progress() float64 {
	if len(e.buffer) < 2 {
		return 0
	}
	return e.progress
}

// EntityTick is the tick being interpolated from, 0 while empty.
func (e *EntityInterpolator) EntityTick() uint32 {
	if len(e.buffer) == 0 {
		return 0
	}
	return e.buffer[0].tick
}

// Stamp maps the render cursor onto server ticks: the tick the rendered
// position starts from and the fraction toward the tick after it. The two
// buffered updates need not be consecutive ticks when updates were dropped.
func (e *EntityInterpolator) Stamp() (uint32, float64) {
	switch len(e.buffer) {
	case 0:
		return 0, 0
	case 1:
		return e.buffer[0].tick, 0
	}
	span := e.buffer[1].tick - e.buffer[0].tick
	p := e.progress * float64(span)
	whole := math.Floor(p)
	if whole >= float64(span) {
		return e.buffer[1].tick, 0
	}
	return e.buffer[0].tick + uint32(whole), p - whole
}

// Len reports how many updates are buffered.
func (e *EntityInterpolator) Len() int { return len(e.buffer) }

// Reset empties the buffer.
func (e *EntityInterpolator) Reset() {
	e.buffer = e.buffer[:0]
	e.progress = 0
}
