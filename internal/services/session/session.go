package session

import (
	"sync"

	"github.com/tmccall/arenad/internal/model"
)

// task wraps the stop channel for one periodic loop. cancel is safe to
// call more than once; the loop goroutine exits when the channel closes.
type task struct {
	stop chan struct{}
	once sync.Once
}

func newTask() *task {
	return &task{stop: make(chan struct{})}
}

func (t *task) cancel() {
	t.once.Do(func() {
		close(t.stop)
	})
}

// Session holds the live state for one in-progress game. All mutable
// fields are guarded by mu; the simulation loop, the broadcast loop,
// and player requests all take the same lock, so a tick always runs to
// completion before a snapshot of its result can be taken.
type Session struct {
	GameType model.GameTypeID
	RoomID   model.RoomID

	mu      sync.Mutex
	players map[model.PlayerID]*model.PlayerState
	order   []model.PlayerID
	alive   map[model.PlayerID]struct{}

	// projectiles keeps insertion order; collision resolution depends
	// on older projectiles being tested first.
	projectiles []*model.Projectile
	pool        *ProjectilePool
	nextProjID  model.ProjectileID

	winnerSet bool
	winner    model.PlayerID
	ended     bool

	simTask       *task
	broadcastTask *task
}

func (s *Session) removePlayerLocked(id model.PlayerID) bool {
	if _, ok := s.players[id]; !ok {
		return false
	}
	delete(s.players, id)
	delete(s.alive, id)
	for i, pid := range s.order {
		if pid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// retireProjectileLocked removes the projectile at index i, preserving
// order, and returns its record to the pool.
func (s *Session) retireProjectileLocked(i int) {
	rec := s.projectiles[i]
	copy(s.projectiles[i:], s.projectiles[i+1:])
	s.projectiles[len(s.projectiles)-1] = nil
	s.projectiles = s.projectiles[:len(s.projectiles)-1]
	s.pool.Release(rec)
}

// teardownLocked cancels both loops, drains every in-flight projectile
// back to the pool, resets per-player combat state, and marks the
// session ended. Idempotent; the second call is a no-op.
func (s *Session) teardownLocked() bool {
	if s.ended {
		return false
	}
	s.ended = true
	s.simTask.cancel()
	s.broadcastTask.cancel()
	for i, rec := range s.projectiles {
		s.pool.Release(rec)
		s.projectiles[i] = nil
	}
	s.projectiles = s.projectiles[:0]
	for _, ps := range s.players {
		ps.Alive = true
		ps.LastDelta = model.Vec2{}
	}
	return true
}

// winnerNameLocked resolves the recorded winner to a display name, or
// "" when no winner was recorded.
func (s *Session) winnerNameLocked() string {
	if !s.winnerSet || s.winner == "" {
		return ""
	}
	if ps, ok := s.players[s.winner]; ok {
		return ps.DisplayName
	}
	return string(s.winner)
}

func (s *Session) snapshotLocked(cfg model.Config) model.Snapshot {
	snap := model.Snapshot{
		RoomID:      s.RoomID,
		Players:     make([]model.SnapshotPlayer, 0, len(s.order)),
		Projectiles: make([]model.SnapshotProjectile, 0, len(s.projectiles)),
		Winner:      s.winnerNameLocked(),
		WorldWidth:  cfg.WorldWidth,
		WorldHeight: cfg.WorldHeight,
	}
	for _, pid := range s.order {
		ps := s.players[pid]
		if !ps.Alive {
			continue
		}
		snap.Players = append(snap.Players, model.SnapshotPlayer{
			ID:          ps.ID,
			DisplayName: ps.DisplayName,
			Pos:         ps.Pos,
			Mass:        ps.Mass,
			LastDelta:   ps.LastDelta,
		})
	}
	for _, p := range s.projectiles {
		snap.Projectiles = append(snap.Projectiles, model.SnapshotProjectile{
			ID:     p.ID,
			Owner:  p.Owner,
			Pos:    p.Pos,
			Radius: p.Radius,
		})
	}
	return snap
}
