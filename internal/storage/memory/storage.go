package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tmccall/arenad/internal/model"
	"github.com/tmccall/arenad/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	rooms map[roomKey]*model.Room
}

type roomKey struct {
	gameType model.GameTypeID
	id       model.RoomID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		rooms: make(map[roomKey]*model.Room),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[roomKey{gameType: room.GameType, id: room.ID}] = room
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, gameType model.GameTypeID, id model.RoomID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[roomKey{gameType: gameType, id: id}]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, gameType model.GameTypeID, id model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, roomKey{gameType: gameType, id: id})
	return nil
}

func (s *Storage) RoomExists(ctx context.Context, gameType model.GameTypeID, id model.RoomID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[roomKey{gameType: gameType, id: id}]
	return ok, nil
}

func (s *Storage) ListRooms(ctx context.Context, gameType model.GameTypeID) ([]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rooms []*model.Room
	for key, room := range s.rooms {
		if key.gameType == gameType {
			rooms = append(rooms, room)
		}
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})
	return rooms, nil
}

func (s *Storage) ListGameTypes(ctx context.Context) ([]model.GameTypeID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[model.GameTypeID]struct{})
	var gameTypes []model.GameTypeID
	for key := range s.rooms {
		if _, ok := seen[key.gameType]; ok {
			continue
		}
		seen[key.gameType] = struct{}{}
		gameTypes = append(gameTypes, key.gameType)
	}
	sort.Slice(gameTypes, func(i, j int) bool { return gameTypes[i] < gameTypes[j] })
	return gameTypes, nil
}
