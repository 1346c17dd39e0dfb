package server

import "lagcomp/pkg/core"

type EventKind int

const (
	EventUnknown EventKind = iota
	EventJoin
	EventInput
	EventPing
	EventPong
)

type JoinEvent struct {
	PlayerName   string
	SessionToken string // non-empty when resuming an earlier session
}

type PingEvent struct {
	ClientTime int64
}

type PongEvent struct {
	ClientTime int64
	ServerTime int64
	ServerTick uint32
}

type ServerEvent struct {
	Kind  EventKind
	Join  *JoinEvent
	Input *core.InputSample
	Ping  *PingEvent
	Pong  *PongEvent
}
