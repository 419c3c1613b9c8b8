package model

// Event names produced by the server
const (
	EventRoomList          = "room-list"
	EventStateSnapshot     = "state-snapshot"
	EventProjectileCreated = "projectile-created"
	EventSessionEnded      = "session-ended"
	EventCountdownStarted  = "countdown-started"
)

// Event names consumed from clients
const (
	EventJoinRoom           = "join-room-request"
	EventLeaveRoom          = "leave-room-request"
	EventToggleReady        = "toggle-ready"
	EventJoinSessionChannel = "join-session-channel"
	EventRequestState       = "request-state"
	EventMove               = "move"
	EventShoot              = "shoot"
	EventEndSession         = "end-session-request"
)

// RoomListPayload is broadcast to a game type's lobby channel after any
// structural room mutation
type RoomListPayload struct {
	GameType GameTypeID    `json:"gameType"`
	Rooms    []RoomSummary `json:"rooms"`
}

// SnapshotPlayer is one alive player's entry in a state snapshot
type SnapshotPlayer struct {
	ID          PlayerID `json:"id"`
	DisplayName string   `json:"name"`
	Pos         Vec2     `json:"pos"`
	Mass        float64  `json:"mass"`
	LastDelta   Vec2     `json:"lastDelta"`
}

// SnapshotProjectile is one live projectile's entry in a state snapshot
type SnapshotProjectile struct {
	ID     ProjectileID `json:"id"`
	Owner  PlayerID     `json:"owner"`
	Pos    Vec2         `json:"pos"`
	Radius float64      `json:"radius"`
}

// Snapshot is the serialized authoritative state sent each broadcast tick
type Snapshot struct {
	RoomID      RoomID               `json:"roomId"`
	Players     []SnapshotPlayer     `json:"players"`
	Projectiles []SnapshotProjectile `json:"projectiles"`
	Winner      string               `json:"winner,omitempty"`
	WorldWidth  float64              `json:"worldWidth"`
	WorldHeight float64              `json:"worldHeight"`
}

// ProjectileCreatedPayload is emitted immediately on spawn so clients render
// the shot without waiting for the next broadcast tick
type ProjectileCreatedPayload struct {
	RoomID     RoomID             `json:"roomId"`
	Projectile SnapshotProjectile `json:"projectile"`
	Kind       ProjectileKind     `json:"kind"`
	Vel        Vec2               `json:"vel"`
}

// SessionEndedPayload is the terminal event of a session. Winner is the
// winning player's display name, empty when nobody survived.
type SessionEndedPayload struct {
	RoomID RoomID `json:"roomId"`
	Winner string `json:"winner,omitempty"`
}

// CountdownStartedPayload announces the lobby-to-session transition delay
type CountdownStartedPayload struct {
	RoomID  RoomID  `json:"roomId"`
	Seconds float64 `json:"seconds"`
}
