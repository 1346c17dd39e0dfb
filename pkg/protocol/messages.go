package protocol

import "google.golang.org/protobuf/encoding/protowire"

// MouseUpdate client -> server: the latest pointer sample plus fire intent
// accumulated since the previous send.
type MouseUpdate struct {
	Sequence uint32

	// Last applied GameUpdate ticks when fire went down. They differ when the
	// client renders entities with interpolation delay.
	EntityTickBeforeFire uint32
	CameraTickBeforeFire uint32

	SubtickFraction float64
	SubtickX        float64
	SubtickY        float64

	X           float64
	Y           float64
	FirePressed bool
	Sensitivity float64
}

func (m *MouseUpdate) Marshal() []byte {
	b := make([]byte, 0, 96)
	b = appendUint(b, 1, uint64(m.Sequence))
	b = appendUint(b, 2, uint64(m.EntityTickBeforeFire))
	b = appendUint(b, 3, uint64(m.CameraTickBeforeFire))
	b = appendDouble(b, 4, m.SubtickFraction)
	b = appendDouble(b, 5, m.SubtickX)
	b = appendDouble(b, 6, m.SubtickY)
	b = appendDouble(b, 7, m.X)
	b = appendDouble(b, 8, m.Y)
	b = appendBool(b, 9, m.FirePressed)
	b = appendDouble(b, 10, m.Sensitivity)
	return b
}

func (m *MouseUpdate) Unmarshal(b []byte) error {
	*m = MouseUpdate{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readUint32(typ, b, &m.Sequence)
		case 2:
			return readUint32(typ, b, &m.EntityTickBeforeFire)
		case 3:
			return readUint32(typ, b, &m.CameraTickBeforeFire)
		case 4:
			return readDouble(typ, b, &m.SubtickFraction)
		case 5:
			return readDouble(typ, b, &m.SubtickX)
		case 6:
			return readDouble(typ, b, &m.SubtickY)
		case 7:
			return readDouble(typ, b, &m.X)
		case 8:
			return readDouble(typ, b, &m.Y)
		case 9:
			return readBool(typ, b, &m.FirePressed)
		case 10:
			return readDouble(typ, b, &m.Sensitivity)
		}
		return 0
	})
}

// GameUpdate server -> client, one per tick.
type GameUpdate struct {
	LastProcessedInputSequence uint32
	Tick                       uint32
	Yaw                        float64
	Pitch                      float64
	TargetX                    float64
	TargetY                    float64
	TargetZ                    float64
}

func (m *GameUpdate) Marshal() []byte {
	b := make([]byte, 0, 64)
	b = appendUint(b, 1, uint64(m.LastProcessedInputSequence))
	b = appendUint(b, 2, uint64(m.Tick))
	b = appendDouble(b, 3, m.Yaw)
	b = appendDouble(b, 4, m.Pitch)
	b = appendDouble(b, 5, m.TargetX)
	b = appendDouble(b, 6, m.TargetY)
	b = appendDouble(b, 7, m.TargetZ)
	return b
}

func (m *GameUpdate) Unmarshal(b []byte) error {
	*m = GameUpdate{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readUint32(typ, b, &m.LastProcessedInputSequence)
		case 2:
			return readUint32(typ, b, &m.Tick)
		case 3:
			return readDouble(typ, b, &m.Yaw)
		case 4:
			return readDouble(typ, b, &m.Pitch)
		case 5:
			return readDouble(typ, b, &m.TargetX)
		case 6:
			return readDouble(typ, b, &m.TargetY)
		case 7:
			return readDouble(typ, b, &m.TargetZ)
		}
		return 0
	})
}

// SoundUpdate server -> client, emitted when a shot is resolved.
type SoundUpdate struct {
	Sound uint32
	X     float64
	Y     float64
	Z     float64
}

func (m *SoundUpdate) Marshal() []byte {
	b := make([]byte, 0, 32)
	b = appendUint(b, 1, uint64(m.Sound))
	b = appendDouble(b, 2, m.X)
	b = appendDouble(b, 3, m.Y)
	b = appendDouble(b, 4, m.Z)
	return b
}

func (m *SoundUpdate) Unmarshal(b []byte) error {
	*m = SoundUpdate{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readUint32(typ, b, &m.Sound)
		case 2:
			return readDouble(typ, b, &m.X)
		case 3:
			return readDouble(typ, b, &m.Y)
		case 4:
			return readDouble(typ, b, &m.Z)
		}
		return 0
	})
}

// JoinRequest opens a session. A non-empty token resumes an earlier one.
type JoinRequest struct {
	PlayerName   string
	SessionToken string
}

func (m *JoinRequest) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.PlayerName)
	b = appendString(b, 2, m.SessionToken)
	return b
}

func (m *JoinRequest) Unmarshal(b []byte) error {
	*m = JoinRequest{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readString(typ, b, &m.PlayerName)
		case 2:
			return readString(typ, b, &m.SessionToken)
		}
		return 0
	})
}

type JoinResponse struct {
	Success      bool
	PlayerID     uint32
	ErrorMessage string
	SessionToken string
	TPS          uint32
	CurrentTick  uint32
	HistoryTicks uint32
}

func (m *JoinResponse) Marshal() []byte {
	var b []byte
	b = appendBool(b, 1, m.Success)
	b = appendUint(b, 2, uint64(m.PlayerID))
	b = appendString(b, 3, m.ErrorMessage)
	b = appendString(b, 4, m.SessionToken)
	b = appendUint(b, 5, uint64(m.TPS))
	b = appendUint(b, 6, uint64(m.CurrentTick))
	b = appendUint(b, 7, uint64(m.HistoryTicks))
	return b
}

func (m *JoinResponse) Unmarshal(b []byte) error {
	*m = JoinResponse{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readBool(typ, b, &m.Success)
		case 2:
			return readUint32(typ, b, &m.PlayerID)
		case 3:
			return readString(typ, b, &m.ErrorMessage)
		case 4:
			return readString(typ, b, &m.SessionToken)
		case 5:
			return readUint32(typ, b, &m.TPS)
		case 6:
			return readUint32(typ, b, &m.CurrentTick)
		case 7:
			return readUint32(typ, b, &m.HistoryTicks)
		}
		return 0
	})
}

// Ping is sent by either side; the peer answers with a Pong echoing ClientTime.
type Ping struct {
	ClientTime int64
}

func (m *Ping) Marshal() []byte {
	return appendUint(nil, 1, uint64(m.ClientTime))
}

func (m *Ping) Unmarshal(b []byte) error {
	*m = Ping{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 {
			return readInt64(typ, b, &m.ClientTime)
		}
		return 0
	})
}

type Pong struct {
	ClientTime int64
	ServerTime int64
	ServerTick uint32
}

func (m *Pong) Marshal() []byte {
	var b []byte
	b = appendUint(b, 1, uint64(m.ClientTime))
	b = appendUint(b, 2, uint64(m.ServerTime))
	b = appendUint(b, 3, uint64(m.ServerTick))
	return b
}

func (m *Pong) Unmarshal(b []byte) error {
	*m = Pong{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readInt64(typ, b, &m.ClientTime)
		case 2:
			return readInt64(typ, b, &m.ServerTime)
		case 3:
			return readUint32(typ, b, &m.ServerTick)
		}
		return 0
	})
}
