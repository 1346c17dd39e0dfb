package core

// SoundType identifies a sound the client should play.
type SoundType int32

const (
	SoundClientHit SoundType = iota
	SoundClientMiss
	SoundServerHit
	SoundServerMiss
	SoundUIHover
	SoundUIClick
	SoundUISuccess
)

func (s SoundType) String() string {
	switch s {
	case SoundClientHit:
		return "CLIENT_HIT"
	case SoundClientMiss:
		return "CLIENT_MISS"
	case SoundServerHit:
		return "SERVER_HIT"
	case SoundServerMiss:
		return "SERVER_MISS"
	case SoundUIHover:
		return "UI_HOVER"
	case SoundUIClick:
		return "UI_CLICK"
	case SoundUISuccess:
		return "UI_SUCCESS"
	}
	return "UNKNOWN"
}

// SoundEvent is a sound positioned in the world.
type SoundEvent struct {
	Sound  SoundType
	Origin Vec3
}
