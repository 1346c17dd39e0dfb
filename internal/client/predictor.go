package client

import "lagcomp/pkg/core"

// Predictor owns the camera the player sees. It never waits for the server.
type Predictor struct {
	camera core.CameraState
}

func NewPredictor() *Predictor {
	return &Predictor{camera: core.NewCameraState()}
}

// Apply folds one sample into the predicted camera.
func (p *Predictor) Apply(sample core.InputSample) core.CameraState {
	p.camera = core.Apply(p.camera, sample)
	return p.camera
}

func (p *Predictor) Camera() core.CameraState { return p.camera }

// SetCamera replaces the prediction, used after reconciliation.
func (p *Predictor) SetCamera(c core.CameraState) { p.camera = c }

// LastPointer is the pointer position the camera was last moved to.
func (p *Predictor) LastPointer() (x, y float64) {
	return p.camera.LastPointerX, p.camera.LastPointerY
}
