// Package protocol defines the wire shapes of inbound client events. Every
// event name maps to one tagged request type that is decoded and validated
// at the transport boundary, so core logic only ever sees structured,
// already-checked arguments.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/tmccall/arenad/internal/model"
)

// Envelope is the outer frame of every inbound message
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Request is a decoded, validatable inbound event payload
type Request interface {
	Validate() error
}

// RoomRef identifies one room within one game type
type RoomRef struct {
	GameType model.GameTypeID `json:"gameType"`
	RoomID   model.RoomID     `json:"roomId"`
}

func (r RoomRef) Validate() error {
	if r.GameType == "" || r.RoomID == "" {
		return fmt.Errorf("%w: missing gameType or roomId", model.ErrMalformedPayload)
	}
	return nil
}

// JoinRoomRequest asks to join a lobby room
type JoinRoomRequest struct {
	RoomRef
	DisplayName string `json:"displayName"`
}

func (r JoinRoomRequest) Validate() error {
	if err := r.RoomRef.Validate(); err != nil {
		return err
	}
	if r.DisplayName == "" {
		return model.ErrEmptyDisplayName
	}
	return nil
}

// LeaveRoomRequest asks to leave a lobby room
type LeaveRoomRequest struct {
	RoomRef
}

// SetReadyRequest sets the sender's ready flag in a lobby room
type SetReadyRequest struct {
	RoomRef
	Ready bool `json:"ready"`
}

// JoinSessionChannelRequest subscribes the sender to a session's channel
type JoinSessionChannelRequest struct {
	RoomRef
}

// RequestStateRequest asks for one ad-hoc snapshot outside the tick cadence
type RequestStateRequest struct {
	RoomRef
}

// MoveRequest applies one movement step in a compass direction
type MoveRequest struct {
	RoomRef
	Direction model.Direction `json:"direction"`
}

func (r MoveRequest) Validate() error {
	if err := r.RoomRef.Validate(); err != nil {
		return err
	}
	if _, ok := r.Direction.Delta(); !ok {
		return model.ErrUnknownDirection
	}
	return nil
}

// ShootRequest spawns a projectile toward a direction vector
type ShootRequest struct {
	RoomRef
	Kind      model.ProjectileKind `json:"kind"`
	Direction model.Vec2           `json:"direction"`
}

func (r ShootRequest) Validate() error {
	if err := r.RoomRef.Validate(); err != nil {
		return err
	}
	if r.Kind == "" {
		return model.ErrUnknownKind
	}
	if !r.Direction.IsFinite() || r.Direction.Length() == 0 {
		return model.ErrInvalidDirection
	}
	return nil
}

// EndSessionRequest explicitly ends a running session
type EndSessionRequest struct {
	RoomRef
}

// Decode parses an envelope's data into the request type named by its event
// and validates it. Unknown events and malformed payloads return an error;
// the caller is expected to drop the message.
func Decode(env Envelope) (Request, error) {
	var req Request
	switch env.Event {
	case model.EventJoinRoom:
		req = &JoinRoomRequest{}
	case model.EventLeaveRoom:
		req = &LeaveRoomRequest{}
	case model.EventToggleReady:
		req = &SetReadyRequest{}
	case model.EventJoinSessionChannel:
		req = &JoinSessionChannelRequest{}
	case model.EventRequestState:
		req = &RequestStateRequest{}
	case model.EventMove:
		req = &MoveRequest{}
	case model.EventShoot:
		req = &ShootRequest{}
	case model.EventEndSession:
		req = &EndSessionRequest{}
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownEvent, env.Event)
	}
	if err := json.Unmarshal(env.Data, req); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedPayload, err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}
