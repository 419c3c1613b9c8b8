package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tmccall/arenad/internal/broadcast"
	"github.com/tmccall/arenad/internal/dependencies/mocks"
	"github.com/tmccall/arenad/internal/model"
	"github.com/tmccall/arenad/internal/testutil"
)

const gameType = model.GameTypeID("arena")

type ManagerSuite struct {
	suite.Suite
	clock     *mocks.MockClock
	random    *mocks.MockRandom
	publisher *mocks.MockPublisher
	cfg       model.Config
	manager   *Manager
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.publisher = mocks.NewMockPublisher()
	s.cfg = model.DefaultConfig()
	s.manager = NewManager(s.cfg, broadcast.NewAdapter(s.publisher), s.clock, s.random, testutil.NopLogger())
}

// startSession starts a two-player session with deterministic spawns:
// player a at (100, 100), player b at (400, 100).
func (s *ManagerSuite) startSession() *Session {
	s.random.QueueFloat64(100.0/s.cfg.WorldWidth, 100.0/s.cfg.WorldHeight)
	s.random.QueueFloat64(400.0/s.cfg.WorldWidth, 100.0/s.cfg.WorldHeight)
	room := &model.Room{
		GameType: gameType,
		ID:       "ROOM01",
		Players: []model.RoomPlayer{
			{ID: "a", DisplayName: "Alpha", Ready: true},
			{ID: "b", DisplayName: "Beta", Ready: true},
		},
	}
	return s.manager.Start(room)
}

func (s *ManagerSuite) TestStartSpawnsPlayersWithinBounds() {
	sess := s.startSession()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.Require().Len(sess.players, 2)
	for _, ps := range sess.players {
		s.True(s.cfg.InWorld(ps.Pos))
		s.True(ps.Alive)
		s.Equal(s.cfg.PlayerMass, ps.Mass)
	}
	s.Equal(model.Vec2{X: 100, Y: 100}, sess.players["a"].Pos)
	s.Equal(model.Vec2{X: 400, Y: 100}, sess.players["b"].Pos)
}

func (s *ManagerSuite) TestStartCancelsStaleLoopsForReusedRoomID() {
	stale := s.startSession()

	s.random.QueueFloat64(0.1, 0.1, 0.2, 0.2)
	fresh := s.startSession()

	s.NotSame(stale, fresh)
	select {
	case <-stale.simTask.stop:
	default:
		s.Fail("stale simulation task not cancelled")
	}
	select {
	case <-stale.broadcastTask.stop:
	default:
		s.Fail("stale broadcast task not cancelled")
	}
	s.Same(fresh, s.manager.Session(gameType, "ROOM01"))
}

func (s *ManagerSuite) TestApplyMovementClampsToWorld() {
	sess := s.startSession()

	for i := 0; i < 20; i++ {
		s.Require().NoError(s.manager.ApplyMovement(gameType, "ROOM01", "a", model.DirectionLeft))
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.Equal(0.0, sess.players["a"].Pos.X)
	s.Equal(model.Vec2{X: -s.cfg.MovementStep, Y: 0}, sess.players["a"].LastDelta)
}

func (s *ManagerSuite) TestApplyMovementIgnoresUnknownAndDeadPlayers() {
	sess := s.startSession()

	s.Require().NoError(s.manager.ApplyMovement(gameType, "ROOM01", "ghost", model.DirectionUp))

	sess.mu.Lock()
	sess.players["b"].Alive = false
	before := sess.players["b"].Pos
	sess.mu.Unlock()

	s.Require().NoError(s.manager.ApplyMovement(gameType, "ROOM01", "b", model.DirectionUp))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.Equal(before, sess.players["b"].Pos)
}

func (s *ManagerSuite) TestApplyMovementRejectsUnknownDirection() {
	s.startSession()
	err := s.manager.ApplyMovement(gameType, "ROOM01", "a", model.Direction("sideways"))
	s.Require().ErrorIs(err, model.ErrUnknownDirection)
}

func (s *ManagerSuite) TestApplyMovementMissingSession() {
	err := s.manager.ApplyMovement(gameType, "NOPE", "a", model.DirectionUp)
	s.Require().ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ManagerSuite) TestSpawnProjectileAssignsIncreasingIDs() {
	sess := s.startSession()

	for i := 0; i < 3; i++ {
		s.Require().NoError(s.manager.SpawnProjectile(gameType, "ROOM01", "a", model.KindBullet, model.Vec2{X: 1, Y: 0}))
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.Require().Len(sess.projectiles, 3)
	var prev model.ProjectileID
	for _, p := range sess.projectiles {
		s.Greater(p.ID, prev)
		prev = p.ID
	}
}

func (s *ManagerSuite) TestSpawnProjectileEmitsImmediately() {
	s.startSession()

	s.Require().NoError(s.manager.SpawnProjectile(gameType, "ROOM01", "a", model.KindBullet, model.Vec2{X: 1, Y: 0}))

	emit := s.publisher.LastEventNamed(model.EventProjectileCreated)
	s.Require().NotNil(emit)
	s.Equal(broadcast.SessionChannel(gameType, "ROOM01"), emit.Channel)

	payload, ok := emit.Payload.(model.ProjectileCreatedPayload)
	s.Require().True(ok)
	s.Equal(model.PlayerID("a"), payload.Projectile.Owner)
	s.Equal(model.KindBullet, payload.Kind)
	s.Equal(s.cfg.Projectiles[model.KindBullet].Speed, payload.Vel.Length())
}

func (s *ManagerSuite) TestSpawnProjectileValidation() {
	s.startSession()

	err := s.manager.SpawnProjectile(gameType, "ROOM01", "a", "railgun", model.Vec2{X: 1, Y: 0})
	s.Require().ErrorIs(err, model.ErrUnknownKind)

	err = s.manager.SpawnProjectile(gameType, "ROOM01", "a", model.KindBullet, model.Vec2{})
	s.Require().ErrorIs(err, model.ErrInvalidDirection)

	err = s.manager.SpawnProjectile(gameType, "ROOM01", "ghost", model.KindBullet, model.Vec2{X: 1, Y: 0})
	s.Require().ErrorIs(err, model.ErrNotInRoom)
}

func (s *ManagerSuite) TestSpawnProjectileRejectsDeadShooter() {
	sess := s.startSession()
	sess.mu.Lock()
	sess.players["a"].Alive = false
	sess.mu.Unlock()

	err := s.manager.SpawnProjectile(gameType, "ROOM01", "a", model.KindBullet, model.Vec2{X: 1, Y: 0})
	s.Require().ErrorIs(err, model.ErrPlayerDead)
}

// Two players 300 units apart on the x axis; a rocket travels 18/tick and
// needs (300 - radius - mass) / 18 = 15 ticks to close the gap.
func (s *ManagerSuite) TestKillScenarioEndsSessionWithWinner() {
	sess := s.startSession()

	s.Require().NoError(s.manager.SpawnProjectile(gameType, "ROOM01", "a", model.KindBullet, model.Vec2{X: 1, Y: 0}))

	aliveBefore := 2
	for i := 0; i < 40; i++ {
		s.manager.SimulationTick(sess)
		sess.mu.Lock()
		alive := len(sess.alive)
		ended := sess.ended
		sess.mu.Unlock()
		s.LessOrEqual(alive, aliveBefore)
		aliveBefore = alive
		if ended {
			break
		}
	}

	sess.mu.Lock()
	s.False(sess.players["b"].Alive)
	s.True(sess.ended)
	sess.mu.Unlock()

	emits := s.publisher.EventsNamed(model.EventSessionEnded)
	s.Require().Len(emits, 1)
	payload, ok := emits[0].Payload.(model.SessionEndedPayload)
	s.Require().True(ok)
	s.Equal("Alpha", payload.Winner)

	s.Nil(s.manager.Session(gameType, "ROOM01"))
}

func (s *ManagerSuite) TestSimultaneousLastDeathsCollapseToNoWinner() {
	sess := s.startSession()

	// Kill both players outside the collision path, then run one tick so
	// the win check observes an empty alive set.
	sess.mu.Lock()
	sess.players["a"].Alive = false
	delete(sess.alive, "a")
	sess.players["b"].Alive = false
	delete(sess.alive, "b")
	sess.mu.Unlock()

	s.manager.SimulationTick(sess)

	emits := s.publisher.EventsNamed(model.EventSessionEnded)
	s.Require().Len(emits, 1)
	payload, ok := emits[0].Payload.(model.SessionEndedPayload)
	s.Require().True(ok)
	s.Equal("", payload.Winner)
}

func (s *ManagerSuite) TestProjectileRetiresAtWorldBounds() {
	sess := s.startSession()

	s.Require().NoError(s.manager.SpawnProjectile(gameType, "ROOM01", "a", model.KindBullet, model.Vec2{X: 0, Y: -1}))

	// From y=100 straight up at 28/tick, the bullet exits after 4 ticks
	for i := 0; i < 5; i++ {
		s.manager.SimulationTick(sess)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.Empty(sess.projectiles)
	s.Equal(1, sess.pool.Size())
}

func (s *ManagerSuite) TestProjectileRetiresAtMaxRange() {
	sess := s.startSession()

	// Plasma fired away from the other player; range 720 at 40/tick is 18 ticks
	s.Require().NoError(s.manager.SpawnProjectile(gameType, "ROOM01", "b", model.KindPlasma, model.Vec2{X: 1, Y: 0}))

	for i := 0; i < 17; i++ {
		s.manager.SimulationTick(sess)
	}
	sess.mu.Lock()
	s.Len(sess.projectiles, 1)
	sess.mu.Unlock()

	s.manager.SimulationTick(sess)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.Empty(sess.projectiles)
}

func (s *ManagerSuite) TestBroadcastTickEmitsSnapshot() {
	sess := s.startSession()
	s.Require().NoError(s.manager.SpawnProjectile(gameType, "ROOM01", "a", model.KindBullet, model.Vec2{X: 0, Y: 1}))
	s.publisher.ResetEmits()

	s.manager.BroadcastTick(sess)

	emit := s.publisher.LastEventNamed(model.EventStateSnapshot)
	s.Require().NotNil(emit)
	snap, ok := emit.Payload.(model.Snapshot)
	s.Require().True(ok)
	s.Equal(model.RoomID("ROOM01"), snap.RoomID)
	s.Len(snap.Players, 2)
	s.Len(snap.Projectiles, 1)
	s.Equal(s.cfg.WorldWidth, snap.WorldWidth)
	s.Equal("", snap.Winner)
}

func (s *ManagerSuite) TestEndIsIdempotent() {
	sess := s.startSession()
	s.Require().NoError(s.manager.SpawnProjectile(gameType, "ROOM01", "a", model.KindBullet, model.Vec2{X: 0, Y: 1}))

	s.Require().NoError(s.manager.End(gameType, "ROOM01"))
	err := s.manager.End(gameType, "ROOM01")
	s.Require().ErrorIs(err, model.ErrSessionNotFound)

	// Ending directly on the detached session object is also a no-op
	sess.mu.Lock()
	s.False(sess.teardownLocked())
	s.Empty(sess.projectiles)
	sess.mu.Unlock()

	emits := s.publisher.EventsNamed(model.EventSessionEnded)
	s.Len(emits, 1)

	select {
	case <-sess.simTask.stop:
	default:
		s.Fail("simulation task still pending after end")
	}
	select {
	case <-sess.broadcastTask.stop:
	default:
		s.Fail("broadcast task still pending after end")
	}
}

func (s *ManagerSuite) TestTicksAfterEndDoNothing() {
	sess := s.startSession()
	s.Require().NoError(s.manager.End(gameType, "ROOM01"))
	s.publisher.ResetEmits()

	s.manager.SimulationTick(sess)
	s.manager.BroadcastTick(sess)

	s.Empty(s.publisher.Emits)
}

func (s *ManagerSuite) TestDisconnectEmptyingSessionDeletesWithoutEvent() {
	sess := s.startSession()

	s.manager.HandleDisconnect("a")
	s.NotNil(s.manager.Session(gameType, "ROOM01"))

	s.manager.HandleDisconnect("b")

	s.Nil(s.manager.Session(gameType, "ROOM01"))
	s.Empty(s.publisher.EventsNamed(model.EventSessionEnded))

	select {
	case <-sess.simTask.stop:
	default:
		s.Fail("simulation task still pending after abandonment")
	}
}

func (s *ManagerSuite) TestDisconnectUnknownPlayerIsNoOp() {
	s.startSession()
	s.manager.HandleDisconnect("ghost")
	s.NotNil(s.manager.Session(gameType, "ROOM01"))
}

func (s *ManagerSuite) TestPoolRecyclesRecordsUnderSustainedFire() {
	sess := s.startSession()

	// Fire straight up from y=100: each bullet leaves the world within 4
	// ticks, so the in-flight population never exceeds a handful and the
	// pool keeps recycling the same records.
	for i := 0; i < 1000; i++ {
		s.Require().NoError(s.manager.SpawnProjectile(gameType, "ROOM01", "a", model.KindBullet, model.Vec2{X: 0, Y: -1}))
		s.manager.SimulationTick(sess)
	}
	for i := 0; i < 10; i++ {
		s.manager.SimulationTick(sess)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.Empty(sess.projectiles)
	s.Equal(sess.pool.Allocated(), sess.pool.Size())
	s.Less(sess.pool.Allocated(), 20)
	s.Equal(model.ProjectileID(1000), sess.nextProjID)
}

func (s *ManagerSuite) TestSnapshotForMissingSessionIsEmpty() {
	snap := s.manager.SnapshotFor(gameType, "NOPE")

	s.Equal(model.RoomID("NOPE"), snap.RoomID)
	s.Empty(snap.Players)
	s.Empty(snap.Projectiles)
	s.Equal(s.cfg.WorldWidth, snap.WorldWidth)
}

func (s *ManagerSuite) TestSnapshotOmitsDeadPlayers() {
	sess := s.startSession()
	sess.mu.Lock()
	sess.players["b"].Alive = false
	sess.mu.Unlock()

	snap := s.manager.SnapshotFor(gameType, "ROOM01")
	s.Require().Len(snap.Players, 1)
	s.Equal(model.PlayerID("a"), snap.Players[0].ID)
}
