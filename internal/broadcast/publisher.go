package broadcast

import (
	"fmt"

	"github.com/tmccall/arenad/internal/model"
)

// Publisher is the narrow view of the transport layer the core depends on:
// channel membership plus event emission to a channel or a single client.
type Publisher interface {
	Join(clientID model.PlayerID, channel string)
	Leave(clientID model.PlayerID, channel string)
	ToChannel(channel string, event string, payload any)
	ToClient(clientID model.PlayerID, event string, payload any)
}

// LobbyChannel names the channel carrying a game type's room-list broadcasts
func LobbyChannel(gameType model.GameTypeID) string {
	return fmt.Sprintf("lobby:%s", gameType)
}

// SessionChannel names the channel carrying one room's session events
func SessionChannel(gameType model.GameTypeID, roomID model.RoomID) string {
	return fmt.Sprintf("session:%s:%s", gameType, roomID)
}
