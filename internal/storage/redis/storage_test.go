package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/tmccall/arenad/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.RoomTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) room(gameType, id string, players ...model.RoomPlayer) *model.Room {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if players == nil {
		players = []model.RoomPlayer{}
	}
	return &model.Room{
		GameType:  model.GameTypeID(gameType),
		ID:        model.RoomID(id),
		Players:   players,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := s.room("arena", "ABC123", model.RoomPlayer{ID: "p1", DisplayName: "One"})
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	got, err := s.storage.GetRoom(s.ctx, "arena", "ABC123")
	s.Require().NoError(err)
	s.Equal(room.ID, got.ID)
	s.Require().Len(got.Players, 1)
	s.Equal(model.PlayerID("p1"), got.Players[0].ID)
}

func (s *StorageSuite) TestGetMissingRoom() {
	_, err := s.storage.GetRoom(s.ctx, "arena", "NOPE")
	s.Require().ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestRoomExists() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.room("arena", "ABC123")))

	exists, err := s.storage.RoomExists(s.ctx, "arena", "ABC123")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.storage.RoomExists(s.ctx, "arena", "NOPE")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *StorageSuite) TestDeleteRoomRemovesFromIndex() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.room("arena", "ABC123")))
	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "arena", "ABC123"))

	_, err := s.storage.GetRoom(s.ctx, "arena", "ABC123")
	s.Require().ErrorIs(err, model.ErrRoomNotFound)

	rooms, err := s.storage.ListRooms(s.ctx, "arena")
	s.Require().NoError(err)
	s.Empty(rooms)
}

func (s *StorageSuite) TestListRoomsScopedToGameType() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.room("arena", "AAAAAA")))
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.room("duel", "BBBBBB")))

	rooms, err := s.storage.ListRooms(s.ctx, "arena")
	s.Require().NoError(err)
	s.Require().Len(rooms, 1)
	s.Equal(model.RoomID("AAAAAA"), rooms[0].ID)
}

func (s *StorageSuite) TestListRoomsOrderedByCreation() {
	older := s.room("arena", "ZZZZZZ")
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.room("arena", "AAAAAA")))
	s.Require().NoError(s.storage.SaveRoom(s.ctx, older))

	rooms, err := s.storage.ListRooms(s.ctx, "arena")
	s.Require().NoError(err)
	s.Require().Len(rooms, 2)
	s.Equal(model.RoomID("ZZZZZZ"), rooms[0].ID)
	s.Equal(model.RoomID("AAAAAA"), rooms[1].ID)
}

func (s *StorageSuite) TestListRoomsSkipsExpiredEntries() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.room("arena", "AAAAAA")))
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.room("arena", "BBBBBB")))

	// Simulate a value expiring out from under the index
	s.mini.Del(roomKey("arena", "AAAAAA"))

	rooms, err := s.storage.ListRooms(s.ctx, "arena")
	s.Require().NoError(err)
	s.Require().Len(rooms, 1)
	s.Equal(model.RoomID("BBBBBB"), rooms[0].ID)
}

func (s *StorageSuite) TestListGameTypes() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.room("duel", "AAAAAA")))
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.room("arena", "BBBBBB")))

	gameTypes, err := s.storage.ListGameTypes(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.GameTypeID{"arena", "duel"}, gameTypes)
}
