package client

import (
	"time"

	"lagcomp/pkg/core"

	"golang.org/x/time/rate"
)

// FireStamp describes the instant fire went down: how far the displayed
// target was between two updates, which updates were on screen, and where
// the pointer was.
type FireStamp struct {
	SubtickFraction float64
	EntityTick      uint32
	CameraTick      uint32
	PointerX        float64
	PointerY        float64
}

// Transmission is the outcome of one Poll.
type Transmission struct {
	// Due is set when the send period elapsed, even if nothing was sent.
	Due bool
	// Send is set when Sample should go out.
	Send   bool
	Sample core.InputSample
	// FireEdge reports fire held this window but not the previous one.
	FireEdge bool
}

// Transmitter sends the newest sample at a fixed rate with the fire intent
// accumulated since the previous send.
type Transmitter struct {
	limiter *rate.Limiter

	pending     bool // fire seen at any point since the last send
	prevPending bool // pending as of the last send
	frameHeld   bool
	stamp       FireStamp
}

func NewTransmitter(sendHz float64) *Transmitter {
	if sendHz <= 0 {
		sendHz = DefaultSendHz
	}
	return &Transmitter{
		limiter: rate.NewLimiter(rate.Every(time.Duration(float64(time.Second)/sendHz)), 1),
	}
}

// SetRate changes the send cadence.
func (t *Transmitter) SetRate(now time.Time, sendHz float64) {
	if sendHz <= 0 {
		return
	}
	t.limiter.SetLimitAt(now, rate.Every(time.Duration(float64(time.Second)/sendHz)))
}

// ObserveFire records this frame's fire button state. The stamp is kept
// only when fire goes down, and the return value reports that edge.
func (t *Transmitter) ObserveFire(held bool, stamp FireStamp) bool {
	edge := held && !t.frameHeld
	t.frameHeld = held
	if edge {
		t.stamp = stamp
	}
	t.pending = t.pending || held
	return edge
}

// Poll sends latest if the period has elapsed. The fire latch advances only
// when a sample actually goes out, so a press that starts and ends between
// two sends, or before the first sample exists, still reaches the server as
// an edge.
func (t *Transmitter) Poll(now time.Time, latest core.InputSample, ok bool) Transmission {
	if !t.limiter.AllowN(now, 1) {
		return Transmission{}
	}
	if !ok {
		return Transmission{Due: true}
	}

	sample := latest
	sample.FireHeld = t.pending
	if t.pending {
		sample.SubtickFraction = t.stamp.SubtickFraction
		sample.EntityTickBeforeFire = t.stamp.EntityTick
		sample.CameraTickBeforeFire = t.stamp.CameraTick
		sample.SubtickPointerX = t.stamp.PointerX
		sample.SubtickPointerY = t.stamp.PointerY
	}
	out := Transmission{
		Due:      true,
		Send:     true,
		Sample:   sample,
		FireEdge: t.pending && !t.prevPending,
	}

	t.prevPending = t.pending
	t.pending = false
	return out
}
