// Package ai drives a headless shooter: a behaviour tree that turns the
// pointer toward the target and pulls the trigger when the view ray hits.
package ai

import (
	"math/rand"

	"lagcomp/pkg/ai/bt"
	"lagcomp/pkg/core"
)

// Decision is one frame of bot input.
type Decision struct {
	// Moved reports that the pointer moved to (PointerX, PointerY).
	Moved    bool
	PointerX float64
	PointerY float64
	Fire     bool
}

type AimController struct {
	rnd    *rand.Rand
	config *AimConfig
	primed bool

	blackboard Blackboard
	tree       bt.Node
}

// NewAimController creates a bot with the normal preset.
func NewAimController(seed int64) *AimController {
	return NewAimControllerWithConfig(seed, &AimConfigNormal)
}

func NewAimControllerWithConfig(seed int64, config *AimConfig) *AimController {
	if config == nil {
		config = &AimConfigNormal
	}
	rnd := rand.New(rand.NewSource(seed))

	c := &AimController{rnd: rnd, config: config}
	c.blackboard = Blackboard{RNG: rnd, Config: config}
	c.tree = &bt.Selector{Children: []bt.Node{
		&bt.Sequence{Children: []bt.Node{
			&bt.Condition{Check: condHasTarget},
			&bt.Action{Do: actSolveAim},
			&bt.Action{Do: actTurn},
			&bt.Condition{Check: condOnTarget},
			&bt.Cooldown{Child: &bt.Action{Do: actFire}, Ticks: config.FireCooldownFrames},
		}},
		&bt.Sequence{Children: []bt.Node{
			&bt.Inverter{Child: &bt.Condition{Check: condHasTarget}},
			&bt.Action{Do: actIdle},
		}},
	}}
	return c
}

// Decide picks this frame's pointer motion and fire state given the view
// the bot currently has.
func (c *AimController) Decide(camera core.CameraState, target core.Vec3, hasTarget bool) Decision {
	bb := &c.blackboard
	bb.ResetFrame(camera, target, hasTarget)

	if !c.primed {
		// the first sample only seeds the camera's pointer baseline
		c.primed = true
		return Decision{Moved: true, PointerX: bb.PointerX, PointerY: bb.PointerY}
	}

	if c.config.MistakeRate > 0 && c.rnd.Float64() < c.config.MistakeRate {
		return Decision{}
	}

	_ = c.tree.Tick(bb.AsBT())

	return Decision{
		Moved:    bb.Moved,
		PointerX: bb.NextPointerX,
		PointerY: bb.NextPointerY,
		Fire:     bb.Fire,
	}
}

func (c *AimController) GetConfig() *AimConfig {
	return c.config
}
