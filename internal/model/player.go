package model

import "time"

// PlayerID is the transport-assigned identity of a connected client
type PlayerID string

// RoomPlayer represents a player's membership in a lobby room
type RoomPlayer struct {
	ID          PlayerID
	DisplayName string
	Ready       bool
	JoinedAt    time.Time
}

// PlayerState is the authoritative in-game state of one player.
// Mutated only by the session engine that owns it.
type PlayerState struct {
	ID          PlayerID
	DisplayName string
	Pos         Vec2
	Mass        float64 // collision radius proxy
	Alive       bool
	LastDelta   Vec2 // last applied movement, for client interpolation
}
