package server

import "lagcomp/pkg/core"

// InputProcessor folds client samples into the authoritative camera.
// Samples are applied in the order they were received; sequence numbers are
// recorded but not used to reorder.
type InputProcessor struct {
	lastProcessed uint32
	fire          core.FireEdgeDetector
}

// Apply updates camera with sample and reports whether the sample starts a
// shot (fire went from released to held).
func (p *InputProcessor) Apply(camera *core.CameraState, sample core.InputSample) bool {
	*camera = core.Apply(*camera, sample)
	p.lastProcessed = sample.Sequence
	return p.fire.Observe(sample.FireHeld)
}

// LastProcessed is the sequence of the most recently applied sample, 0 before
// the first one.
func (p *InputProcessor) LastProcessed() uint32 {
	return p.lastProcessed
}
