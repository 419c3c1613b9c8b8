package broadcast

import (
	"github.com/tmccall/arenad/internal/model"
)

// Adapter translates core state changes into wire events. It carries no
// state of its own; every method is a pure publish of its arguments.
type Adapter struct {
	pub Publisher
}

// NewAdapter creates an Adapter over the given publisher
func NewAdapter(pub Publisher) *Adapter {
	return &Adapter{pub: pub}
}

// RoomList broadcasts the full room list to the game type's lobby channel
func (a *Adapter) RoomList(gameType model.GameTypeID, rooms []model.RoomSummary) {
	a.pub.ToChannel(LobbyChannel(gameType), model.EventRoomList, model.RoomListPayload{
		GameType: gameType,
		Rooms:    rooms,
	})
}

// Snapshot broadcasts a state snapshot to the session's channel
func (a *Adapter) Snapshot(gameType model.GameTypeID, snap model.Snapshot) {
	a.pub.ToChannel(SessionChannel(gameType, snap.RoomID), model.EventStateSnapshot, snap)
}

// SnapshotTo sends a state snapshot to a single client (request-state path)
func (a *Adapter) SnapshotTo(clientID model.PlayerID, snap model.Snapshot) {
	a.pub.ToClient(clientID, model.EventStateSnapshot, snap)
}

// ProjectileCreated announces a freshly spawned projectile to the session's
// channel, ahead of the next broadcast tick
func (a *Adapter) ProjectileCreated(gameType model.GameTypeID, payload model.ProjectileCreatedPayload) {
	a.pub.ToChannel(SessionChannel(gameType, payload.RoomID), model.EventProjectileCreated, payload)
}

// SessionEnded emits the terminal event of a session
func (a *Adapter) SessionEnded(gameType model.GameTypeID, payload model.SessionEndedPayload) {
	a.pub.ToChannel(SessionChannel(gameType, payload.RoomID), model.EventSessionEnded, payload)
}

// CountdownStarted announces the lobby-to-session countdown on the lobby
// channel, where the room's occupants are still subscribed
func (a *Adapter) CountdownStarted(gameType model.GameTypeID, payload model.CountdownStartedPayload) {
	a.pub.ToChannel(LobbyChannel(gameType), model.EventCountdownStarted, payload)
}

// JoinSession subscribes a client to a session's channel
func (a *Adapter) JoinSession(clientID model.PlayerID, gameType model.GameTypeID, roomID model.RoomID) {
	a.pub.Join(clientID, SessionChannel(gameType, roomID))
}

// JoinLobby subscribes a client to a game type's lobby channel
func (a *Adapter) JoinLobby(clientID model.PlayerID, gameType model.GameTypeID) {
	a.pub.Join(clientID, LobbyChannel(gameType))
}
