package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tmccall/arenad/internal/broadcast"
	"github.com/tmccall/arenad/internal/model"
	"github.com/tmccall/arenad/internal/protocol"
	"github.com/tmccall/arenad/internal/services/lobby"
	"github.com/tmccall/arenad/internal/services/session"
)

// Dispatcher routes validated inbound requests to the lobby and session
// services. Every failure is absorbed here with a debug log and no reply;
// a malformed event from one client must never disturb anyone else.
type Dispatcher struct {
	lobby    *lobby.Controller
	sessions *session.Manager
	adapter  *broadcast.Adapter
	logger   *slog.Logger
}

func NewDispatcher(
	lobbyCtrl *lobby.Controller,
	sessions *session.Manager,
	adapter *broadcast.Adapter,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		lobby:    lobbyCtrl,
		sessions: sessions,
		adapter:  adapter,
		logger:   logger.With(slog.String("component", "dispatcher")),
	}
}

// HandleMessage decodes one inbound frame and executes it
func (d *Dispatcher) HandleMessage(clientID model.PlayerID, raw []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		d.logger.Debug("dropping unparseable frame",
			slog.String("client_id", string(clientID)),
			slog.String("error", err.Error()))
		return
	}

	req, err := protocol.Decode(env)
	if err != nil {
		d.logger.Debug("dropping invalid request",
			slog.String("client_id", string(clientID)),
			slog.String("event", env.Event),
			slog.String("error", err.Error()))
		return
	}

	ctx := context.Background()
	switch r := req.(type) {
	case *protocol.JoinRoomRequest:
		err = d.lobby.Join(ctx, r.GameType, r.RoomID, clientID, r.DisplayName)
	case *protocol.LeaveRoomRequest:
		err = d.lobby.Leave(ctx, r.GameType, r.RoomID, clientID)
	case *protocol.SetReadyRequest:
		err = d.lobby.SetReady(ctx, r.GameType, r.RoomID, clientID, r.Ready)
	case *protocol.JoinSessionChannelRequest:
		d.adapter.JoinSession(clientID, r.GameType, r.RoomID)
	case *protocol.RequestStateRequest:
		snap := d.sessions.SnapshotFor(r.GameType, r.RoomID)
		d.adapter.SnapshotTo(clientID, snap)
	case *protocol.MoveRequest:
		err = d.sessions.ApplyMovement(r.GameType, r.RoomID, clientID, r.Direction)
	case *protocol.ShootRequest:
		err = d.sessions.SpawnProjectile(r.GameType, r.RoomID, clientID, r.Kind, r.Direction)
	case *protocol.EndSessionRequest:
		err = d.sessions.End(r.GameType, r.RoomID)
	}
	if err != nil {
		d.logger.Debug("request dropped",
			slog.String("client_id", string(clientID)),
			slog.String("event", env.Event),
			slog.String("error", err.Error()))
	}
}

// HandleDisconnect removes the identity from every session and lobby room
// it appears in. Sessions first: an emptied session is deleted abruptly
// before the lobby sweep rebroadcasts room lists.
func (d *Dispatcher) HandleDisconnect(clientID model.PlayerID) {
	d.sessions.HandleDisconnect(clientID)
	d.lobby.HandleDisconnect(context.Background(), clientID)
}
