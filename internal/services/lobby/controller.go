package lobby

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tmccall/arenad/internal/broadcast"
	"github.com/tmccall/arenad/internal/dependencies/clock"
	"github.com/tmccall/arenad/internal/model"
	"github.com/tmccall/arenad/internal/registry"
	"github.com/tmccall/arenad/internal/services/session"
	"github.com/tmccall/arenad/internal/storage"
)

type countdownKey struct {
	gameType model.GameTypeID
	roomID   model.RoomID
}

// Controller drives the lobby room state machine: joins, leaves, and the
// ready-up flow that promotes a full room into a live session after a
// countdown. Structural changes always end in a registry sync, which
// restores the joinable-room invariant and re-broadcasts the room list.
type Controller struct {
	storage  storage.Storage
	registry *registry.Registry
	sessions *session.Manager
	adapter  *broadcast.Adapter
	clock    clock.Clock
	logger   *slog.Logger
	cfg      model.Config

	// mu serializes every room read-modify-write sequence. Storage hands out
	// live room values, and each websocket client dispatches from its own
	// goroutine, so the whole GetRoom-mutate-SaveRoom span must hold it.
	// It also guards countdowns.
	mu         sync.Mutex
	countdowns map[countdownKey]clock.Timer
}

func NewController(
	storage storage.Storage,
	reg *registry.Registry,
	sessions *session.Manager,
	adapter *broadcast.Adapter,
	clk clock.Clock,
	cfg model.Config,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:    storage,
		registry:   reg,
		sessions:   sessions,
		adapter:    adapter,
		clock:      clk,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "lobby")),
		countdowns: make(map[countdownKey]clock.Timer),
	}
}

// Join adds a player to a room. Joining a room that no longer exists is
// rejected; joining a room the player is already in is ignored. The joiner
// subscribes to the game type's lobby channel as a side effect.
func (c *Controller) Join(ctx context.Context, gameType model.GameTypeID, roomID model.RoomID, playerID model.PlayerID, displayName string) error {
	if displayName == "" {
		return model.ErrEmptyDisplayName
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	room, err := c.storage.GetRoom(ctx, gameType, roomID)
	if err != nil {
		return err
	}
	if room.GetPlayer(playerID) != nil {
		return nil
	}

	room.Players = append(room.Players, model.RoomPlayer{
		ID:          playerID,
		DisplayName: displayName,
		Ready:       false,
		JoinedAt:    c.clock.Now(),
	})
	room.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return err
	}

	c.adapter.JoinLobby(playerID, gameType)
	// A joiner arrives un-ready, so any pending countdown is invalid
	c.cancelCountdownLocked(gameType, roomID)
	c.registry.Sync(ctx, gameType)

	c.logger.Info("player joined room",
		slog.String("game_type", string(gameType)),
		slog.String("room_id", string(roomID)),
		slog.String("player_id", string(playerID)),
	)
	return nil
}

// Leave removes a player from a room. An emptied room is deleted unless it
// is the game type's last open room.
func (c *Controller) Leave(ctx context.Context, gameType model.GameTypeID, roomID model.RoomID, playerID model.PlayerID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.leaveLocked(ctx, gameType, roomID, playerID)
}

func (c *Controller) leaveLocked(ctx context.Context, gameType model.GameTypeID, roomID model.RoomID, playerID model.PlayerID) error {
	room, err := c.storage.GetRoom(ctx, gameType, roomID)
	if err != nil {
		return err
	}
	if !room.RemovePlayer(playerID) {
		return model.ErrNotInRoom
	}
	room.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return err
	}

	c.cancelCountdownLocked(gameType, roomID)
	if room.Occupancy() == 0 {
		if err := c.registry.RemoveRoomIfRedundant(ctx, gameType, roomID); err != nil && !errors.Is(err, model.ErrLastOpenRoom) {
			c.logger.Error("room cleanup failed",
				slog.String("room_id", string(roomID)),
				slog.String("error", err.Error()),
			)
		}
	}
	c.registry.Sync(ctx, gameType)
	return nil
}

// SetReady sets a player's ready flag. When the change leaves every occupant
// ready, a countdown starts; when it breaks all-ready, any pending countdown
// is cancelled.
func (c *Controller) SetReady(ctx context.Context, gameType model.GameTypeID, roomID model.RoomID, playerID model.PlayerID, ready bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, err := c.storage.GetRoom(ctx, gameType, roomID)
	if err != nil {
		return err
	}
	player := room.GetPlayer(playerID)
	if player == nil {
		return model.ErrNotInRoom
	}
	player.Ready = ready
	room.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return err
	}

	if room.AllReady() {
		c.startCountdownLocked(gameType, roomID)
	} else {
		c.cancelCountdownLocked(gameType, roomID)
	}
	c.registry.Sync(ctx, gameType)
	return nil
}

// HandleDisconnect removes the player from every lobby room they appear in,
// across all game types.
func (c *Controller) HandleDisconnect(ctx context.Context, playerID model.PlayerID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gameTypes, err := c.storage.ListGameTypes(ctx)
	if err != nil {
		c.logger.Error("game type scan failed", slog.String("error", err.Error()))
		return
	}
	for _, gameType := range gameTypes {
		rooms, err := c.storage.ListRooms(ctx, gameType)
		if err != nil {
			c.logger.Error("room scan failed",
				slog.String("game_type", string(gameType)),
				slog.String("error", err.Error()),
			)
			continue
		}
		for _, room := range rooms {
			if room.GetPlayer(playerID) == nil {
				continue
			}
			if err := c.leaveLocked(ctx, gameType, room.ID, playerID); err != nil {
				c.logger.Error("disconnect leave failed",
					slog.String("room_id", string(room.ID)),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

func (c *Controller) startCountdownLocked(gameType model.GameTypeID, roomID model.RoomID) {
	k := countdownKey{gameType: gameType, roomID: roomID}
	if timer, ok := c.countdowns[k]; ok {
		timer.Stop()
	}
	c.countdowns[k] = c.clock.AfterFunc(c.cfg.Countdown, func() {
		c.promote(gameType, roomID)
	})

	c.adapter.CountdownStarted(gameType, model.CountdownStartedPayload{
		RoomID:  roomID,
		Seconds: c.cfg.Countdown.Seconds(),
	})
	c.logger.Info("countdown started",
		slog.String("game_type", string(gameType)),
		slog.String("room_id", string(roomID)),
	)
}

func (c *Controller) cancelCountdownLocked(gameType model.GameTypeID, roomID model.RoomID) {
	k := countdownKey{gameType: gameType, roomID: roomID}
	if timer, ok := c.countdowns[k]; ok {
		timer.Stop()
		delete(c.countdowns, k)
	}
}

// promote runs when a countdown fires. The room's state may have changed
// while the countdown was pending, so all-ready is re-verified before the
// room becomes a session and leaves the lobby.
func (c *Controller) promote(gameType model.GameTypeID, roomID model.RoomID) {
	ctx := context.Background()

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.countdowns, countdownKey{gameType: gameType, roomID: roomID})

	room, err := c.storage.GetRoom(ctx, gameType, roomID)
	if err != nil {
		return
	}
	if !room.AllReady() {
		return
	}

	for _, p := range room.Players {
		c.adapter.JoinSession(p.ID, gameType, roomID)
	}
	c.sessions.Start(room)

	if err := c.storage.DeleteRoom(ctx, gameType, roomID); err != nil {
		c.logger.Error("promoted room delete failed",
			slog.String("room_id", string(roomID)),
			slog.String("error", err.Error()),
		)
	}
	c.registry.Sync(ctx, gameType)
}
