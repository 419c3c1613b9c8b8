package model

import "errors"

// Common errors used across the application. Per the server's fire-and-forget
// event model these are absorbed at the transport boundary, never surfaced to
// the sender.
var (
	// Room errors
	ErrRoomNotFound  = errors.New("room not found")
	ErrAlreadyInRoom = errors.New("player is already in room")
	ErrNotInRoom     = errors.New("player is not in room")
	ErrLastOpenRoom  = errors.New("cannot delete the last open room")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionEnded    = errors.New("session already ended")
	ErrPlayerDead      = errors.New("player is not alive")

	// Input errors
	ErrUnknownDirection = errors.New("unknown movement direction")
	ErrUnknownKind      = errors.New("unknown projectile kind")
	ErrInvalidDirection = errors.New("direction vector is not finite")
	ErrEmptyDisplayName = errors.New("display name is empty")
	ErrMalformedPayload = errors.New("malformed event payload")
	ErrUnknownEvent     = errors.New("unknown event name")
)
