package model

import "time"

// GameTypeID partitions independent pools of rooms and sessions (game modes)
type GameTypeID string

// RoomID uniquely identifies a room within a game type. A session promoted
// from a room keeps the room's id.
type RoomID string

// Room is a pre-game grouping of players who have not yet started playing
type Room struct {
	GameType  GameTypeID
	ID        RoomID
	Players   []RoomPlayer // join order
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetPlayer returns the member with the given id, or nil if not present
func (r *Room) GetPlayer(id PlayerID) *RoomPlayer {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// RemovePlayer deletes the member with the given id, preserving join order.
// It reports whether a member was removed.
func (r *Room) RemovePlayer(id PlayerID) bool {
	for i := range r.Players {
		if r.Players[i].ID == id {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return true
		}
	}
	return false
}

// Occupancy returns the number of players in the room
func (r *Room) Occupancy() int {
	return len(r.Players)
}

// ReadyCount returns the number of players that have readied up
func (r *Room) ReadyCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Ready {
			n++
		}
	}
	return n
}

// AllReady reports whether the room is occupied and every member is ready
func (r *Room) AllReady() bool {
	return len(r.Players) > 0 && r.ReadyCount() == len(r.Players)
}

// RoomSummary is the per-room entry of the lobby room list broadcast
type RoomSummary struct {
	ID         RoomID `json:"roomId"`
	Occupancy  int    `json:"occupancy"`
	ReadyCount int    `json:"readyCount"`
}

// Summary returns the broadcastable view of the room
func (r *Room) Summary() RoomSummary {
	return RoomSummary{
		ID:         r.ID,
		Occupancy:  r.Occupancy(),
		ReadyCount: r.ReadyCount(),
	}
}
