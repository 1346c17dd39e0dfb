package core

// InputSample is one pointer-motion sample taken by the client.
// Pointer coordinates are absolute; deltas are derived against the camera's
// last pointer baseline when the sample is applied.
type InputSample struct {
	Sequence    uint32
	PointerX    float64
	PointerY    float64
	FireHeld    bool
	Sensitivity float64

	// Fire stamp, meaningful only when FireHeld is set.
	SubtickFraction      float64
	EntityTickBeforeFire uint32
	CameraTickBeforeFire uint32
	SubtickPointerX      float64
	SubtickPointerY      float64
}

// FireEdgeDetector reports false->true transitions of the fire intent.
type FireEdgeDetector struct {
	prev bool
}

// Observe feeds the next fire state and reports whether it is a rising edge.
func (d *FireEdgeDetector) Observe(held bool) bool {
	edge := held && !d.prev
	d.prev = held
	return edge
}

// Held returns the last observed fire state.
func (d *FireEdgeDetector) Held() bool {
	return d.prev
}
