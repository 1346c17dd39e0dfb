package server

import (
	"errors"
	"testing"

	"lagcomp/pkg/core"
)

// recordingBody records where the body was when the ray was cast.
type recordingBody struct {
	*core.Body
	castAt []core.Vec3
}

func (p *recordingBody) CastRay(origin, dir core.Vec3) bool {
	p.castAt = append(p.castAt, p.Position())
	return p.Body.CastRay(origin, dir)
}

func aimedCamera() core.CameraState {
	return core.ApplyPointer(core.NewCameraState(), 100, 100, core.DefaultSensitivity)
}

// historyWith captures the given target positions at consecutive ticks
// starting at first, with a camera looking straight down -Z.
func historyWith(first uint32, positions ...core.Vec3) *SnapshotHistory {
	h := NewSnapshotHistory(16)
	body := core.NewTargetBody(core.Vec3{})
	for i, p := range positions {
		body.SetPosition(p)
		h.Capture(first+uint32(i), body, aimedCamera())
	}
	return h
}

func fireSample(ref uint32, fraction float64) core.InputSample {
	return core.InputSample{
		Sequence:             42,
		PointerX:             100,
		PointerY:             100,
		FireHeld:             true,
		Sensitivity:          core.DefaultSensitivity,
		SubtickFraction:      fraction,
		EntityTickBeforeFire: ref,
		CameraTickBeforeFire: ref,
		SubtickPointerX:      100,
		SubtickPointerY:      100,
	}
}

func TestRewindInterpolatesBetweenTicks(t *testing.T) {
	h := historyWith(10, core.Vec3{X: 0, Z: -5}, core.Vec3{X: 2, Z: -5})
	body := &recordingBody{Body: core.NewTargetBody(core.Vec3{X: 7, Z: -5})}
	camera := aimedCamera()

	res, err := NewRewinder(h, true).Resolve(body, &camera, fireSample(10, 0.25))
	if err != nil {
		t.Fatal(err)
	}
	want := core.Vec3{X: 0.5, Z: -5}
	if len(body.castAt) != 1 || body.castAt[0] != want {
		t.Fatalf("ray cast against %v, want [%v]", body.castAt, want)
	}
	if res.TargetPosition != want || res.Fraction != 0.25 || res.ReferenceTick != 10 {
		t.Fatalf("result %+v", res)
	}
	if res.Hit {
		t.Fatal("target 0.5 off the aim line with radius 0.3 should be a miss")
	}
}

func TestRewindFractionBoundaries(t *testing.T) {
	p0, p1 := core.Vec3{X: -1, Y: 0.25, Z: -5}, core.Vec3{X: 3, Y: 0.75, Z: -6}
	tests := []struct {
		fraction float64
		want     core.Vec3
	}{
		{0, p0},
		{1, p1},
		{0.5, core.Vec3{X: 1, Y: 0.5, Z: -5.5}},
	}
	for _, tc := range tests {
		h := historyWith(20, p0, p1)
		body := &recordingBody{Body: core.NewTargetBody(core.Vec3{})}
		camera := aimedCamera()
		if _, err := NewRewinder(h, true).Resolve(body, &camera, fireSample(20, tc.fraction)); err != nil {
			t.Fatal(err)
		}
		if body.castAt[0] != tc.want {
			t.Errorf("fraction %v: cast at %v, want %v", tc.fraction, body.castAt[0], tc.want)
		}
	}
}

func TestRewindRestoresLiveState(t *testing.T) {
	tests := []struct {
		name     string
		fraction float64
		subtick  bool
		wantHit  bool
	}{
		{"subtick hit", 0.1, true, true},
		{"subtick miss", 0.9, true, false},
		{"plain hit", 0.9, false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := historyWith(10, core.Vec3{Z: -5}, core.Vec3{X: 2, Z: -5})
			body := core.NewTargetBody(core.Vec3{X: 4, Y: 1, Z: -8})
			body.MoveTo(core.Vec3{X: 4.1, Y: 1, Z: -8}, core.FixedDeltaTime)
			liveBody := *body
			camera := core.ApplyPointer(aimedCamera(), 103, 101, core.DefaultSensitivity)
			liveCamera := camera

			res, err := NewRewinder(h, tc.subtick).Resolve(body, &camera, fireSample(10, tc.fraction))
			if err != nil {
				t.Fatal(err)
			}
			if res.Hit != tc.wantHit {
				t.Errorf("hit = %v, want %v", res.Hit, tc.wantHit)
			}
			if *body != liveBody {
				t.Errorf("body %+v, want %+v", *body, liveBody)
			}
			if camera != liveCamera {
				t.Errorf("camera %+v, want %+v", camera, liveCamera)
			}
		})
	}
}

func TestRewindWithoutSubtickKeepsLiveCamera(t *testing.T) {
	h := historyWith(10, core.Vec3{Z: -5}, core.Vec3{X: 2, Z: -5})
	body := &recordingBody{Body: core.NewTargetBody(core.Vec3{})}
	// Live camera turned right by 90 degrees: the historical target is no
	// longer in front of it.
	camera := aimedCamera().WithOrientation(0, 0)

	res, err := NewRewinder(h, false).Resolve(body, &camera, fireSample(10, 0.5))
	if err != nil {
		t.Fatal(err)
	}
	if body.castAt[0] != (core.Vec3{Z: -5}) {
		t.Errorf("cast at %v, want exact tick 10 position", body.castAt[0])
	}
	if res.Hit || res.Yaw != 0 || res.Fraction != 0 {
		t.Errorf("result %+v", res)
	}
}

func TestRewindEvictedTick(t *testing.T) {
	h := historyWith(10, core.Vec3{Z: -5}, core.Vec3{X: 2, Z: -5})
	body := core.NewTargetBody(core.Vec3{X: 3})
	live := *body
	camera := aimedCamera()

	for name, sample := range map[string]core.InputSample{
		"entity tick": fireSample(3, 0.5),
		"after tick":  fireSample(11, 0.5),
		"camera tick": func() core.InputSample { s := fireSample(10, 0.5); s.CameraTickBeforeFire = 2; return s }(),
	} {
		_, err := NewRewinder(h, true).Resolve(body, &camera, sample)
		if !errors.Is(err, ErrTickEvicted) {
			t.Errorf("%s: err = %v, want ErrTickEvicted", name, err)
		}
		if *body != live || camera != aimedCamera() {
			t.Errorf("%s: live state changed", name)
		}
	}
}
