package registry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tmccall/arenad/internal/broadcast"
	"github.com/tmccall/arenad/internal/dependencies/clock"
	"github.com/tmccall/arenad/internal/dependencies/random"
	"github.com/tmccall/arenad/internal/model"
	"github.com/tmccall/arenad/internal/storage"
)

const (
	// RoomIDLength is the length of generated room ids
	RoomIDLength = 6
	// RoomIDAlphabet is the characters used in room ids (avoid confusing chars)
	RoomIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Registry owns the set of lobby rooms per game type. It enforces the
// invariant that every game type always has at least one zero-occupancy room
// available for joining, and re-broadcasts the room list after every
// structural change.
type Registry struct {
	storage storage.Storage
	adapter *broadcast.Adapter
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	// Serializes room-set mutations; storage locks protect individual
	// reads/writes but the empty-room invariant spans several of them.
	mu sync.Mutex
}

// New creates a Registry
func New(
	storage storage.Storage,
	adapter *broadcast.Adapter,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Registry {
	return &Registry{
		storage: storage,
		adapter: adapter,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "registry")),
	}
}

// EnsureJoinableRoom guarantees at least one zero-occupancy room exists for
// the game type, creating one with a fresh id if none does. Idempotent.
func (r *Registry) EnsureJoinableRoom(ctx context.Context, gameType model.GameTypeID) (*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureJoinableRoomLocked(ctx, gameType)
}

func (r *Registry) ensureJoinableRoomLocked(ctx context.Context, gameType model.GameTypeID) (*model.Room, error) {
	rooms, err := r.storage.ListRooms(ctx, gameType)
	if err != nil {
		return nil, err
	}
	for _, room := range rooms {
		if room.Occupancy() == 0 {
			return room, nil
		}
	}

	now := r.clock.Now()
	room := &model.Room{
		GameType:  gameType,
		ID:        r.freshRoomID(ctx, gameType),
		Players:   []model.RoomPlayer{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	r.logger.Info("room created",
		slog.String("game_type", string(gameType)),
		slog.String("room_id", string(room.ID)),
	)
	return room, nil
}

// RemoveRoomIfRedundant deletes a room only if it is empty and at least one
// other empty room remains for the game type. Otherwise it is a no-op.
func (r *Registry) RemoveRoomIfRedundant(ctx context.Context, gameType model.GameTypeID, id model.RoomID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, err := r.storage.GetRoom(ctx, gameType, id)
	if err != nil {
		return err
	}
	if room.Occupancy() != 0 {
		return nil
	}

	rooms, err := r.storage.ListRooms(ctx, gameType)
	if err != nil {
		return err
	}
	otherEmpty := false
	for _, other := range rooms {
		if other.ID != id && other.Occupancy() == 0 {
			otherEmpty = true
			break
		}
	}
	if !otherEmpty {
		// Never delete the last open room
		return model.ErrLastOpenRoom
	}

	if err := r.storage.DeleteRoom(ctx, gameType, id); err != nil {
		return err
	}
	r.logger.Info("room removed",
		slog.String("game_type", string(gameType)),
		slog.String("room_id", string(id)),
	)
	return nil
}

// Sync is the after-any-mutation hook: it restores the joinable-room
// invariant and re-broadcasts the full room list. Join-time and
// disconnect-time paths share it so no transient zero-joinable-room state
// can be observed.
func (r *Registry) Sync(ctx context.Context, gameType model.GameTypeID) {
	if _, err := r.EnsureJoinableRoom(ctx, gameType); err != nil {
		r.logger.Error("ensure joinable room failed",
			slog.String("game_type", string(gameType)),
			slog.String("error", err.Error()),
		)
	}
	r.BroadcastRoomList(ctx, gameType)
}

// BroadcastRoomList pushes the current room list to the lobby channel
func (r *Registry) BroadcastRoomList(ctx context.Context, gameType model.GameTypeID) {
	summaries, err := r.RoomList(ctx, gameType)
	if err != nil {
		r.logger.Error("room list failed",
			slog.String("game_type", string(gameType)),
			slog.String("error", err.Error()),
		)
		return
	}
	r.adapter.RoomList(gameType, summaries)
}

// RoomList returns summaries of the game type's rooms in creation order
func (r *Registry) RoomList(ctx context.Context, gameType model.GameTypeID) ([]model.RoomSummary, error) {
	rooms, err := r.storage.ListRooms(ctx, gameType)
	if err != nil {
		return nil, err
	}
	summaries := make([]model.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		summaries = append(summaries, room.Summary())
	}
	return summaries, nil
}

// freshRoomID generates a room id not currently in use
func (r *Registry) freshRoomID(ctx context.Context, gameType model.GameTypeID) model.RoomID {
	for {
		id := model.RoomID(r.random.String(RoomIDLength, RoomIDAlphabet))
		exists, err := r.storage.RoomExists(ctx, gameType, id)
		if err != nil || !exists {
			return id
		}
	}
}
