package ai

// AimConfig controls how well the bot shoots.
type AimConfig struct {
	// MaxTurnPerFrame caps pointer travel per frame, in pointer units.
	MaxTurnPerFrame float64

	// AimNoise is the standard deviation of the aim error in radians,
	// redrawn every time the bot acquires the target.
	AimNoise float64

	// FireCooldownFrames is the minimum gap between two shots.
	FireCooldownFrames int

	// MistakeRate is the chance per frame of ignoring the tree and idling.
	MistakeRate float64

	Sensitivity float64
}

// AimConfigNormal leads the target loosely and shoots about twice a second.
var AimConfigNormal = AimConfig{
	MaxTurnPerFrame:    40,
	AimNoise:           0.01,
	FireCooldownFrames: 30,
	MistakeRate:        0.02,
	Sensitivity:        0.002,
}

// AimConfigHard snaps quickly and never idles.
var AimConfigHard = AimConfig{
	MaxTurnPerFrame:    200,
	AimNoise:           0,
	FireCooldownFrames: 10,
	MistakeRate:        0,
	Sensitivity:        0.002,
}
