package redis

import (
	"fmt"

	"github.com/tmccall/arenad/internal/model"
)

// Key prefix for all room data
const keyPrefix = "arenad"

// roomKey returns the Redis key for a Room
func roomKey(gameType model.GameTypeID, id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s:%s", keyPrefix, gameType, id)
}

// roomsForTypeIndexKey returns the Redis key for the SET of a game type's room keys
func roomsForTypeIndexKey(gameType model.GameTypeID) string {
	return fmt.Sprintf("%s:idx:rooms_for_type:%s", keyPrefix, gameType)
}

// gameTypesIndexKey returns the Redis key for the SET of known game types
func gameTypesIndexKey() string {
	return fmt.Sprintf("%s:idx:game_types", keyPrefix)
}
