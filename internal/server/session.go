package server

// Session is the room's view of a connected client.
type Session interface {
	ID() int32
	Send(data []byte) error
	Close()
	CloseWithoutNotify()
	SetPlayerID(id int32)
}
