package storage

import (
	"context"

	"github.com/tmccall/arenad/internal/model"
)

// Storage defines the interface for lobby room persistence. Live session
// state never passes through here; it belongs to the session engine.
type Storage interface {
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, gameType model.GameTypeID, id model.RoomID) (*model.Room, error)
	DeleteRoom(ctx context.Context, gameType model.GameTypeID, id model.RoomID) error
	RoomExists(ctx context.Context, gameType model.GameTypeID, id model.RoomID) (bool, error)

	// ListRooms returns the game type's rooms ordered by creation time
	ListRooms(ctx context.Context, gameType model.GameTypeID) ([]*model.Room, error)

	// ListGameTypes returns every game type that currently has rooms.
	// Disconnect handling scans all of them.
	ListGameTypes(ctx context.Context) ([]model.GameTypeID, error)
}
