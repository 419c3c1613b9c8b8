package session

import (
	"log/slog"
	"sync"

	"github.com/tmccall/arenad/internal/broadcast"
	"github.com/tmccall/arenad/internal/dependencies/clock"
	"github.com/tmccall/arenad/internal/dependencies/random"
	"github.com/tmccall/arenad/internal/model"
)

type sessionKey struct {
	gameType model.GameTypeID
	roomID   model.RoomID
}

// Manager owns every active game session. Each session runs two periodic
// loops (simulation and broadcast) on the manager's clock; all access to a
// session's state goes through its own mutex, so player requests, the
// simulation tick, and the broadcast tick never observe a half-applied
// mutation.
type Manager struct {
	cfg     model.Config
	adapter *broadcast.Adapter
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[sessionKey]*Session
}

func NewManager(
	cfg model.Config,
	adapter *broadcast.Adapter,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		cfg:      cfg,
		adapter:  adapter,
		clock:    clk,
		random:   rnd,
		logger:   logger.With(slog.String("component", "session")),
		sessions: make(map[sessionKey]*Session),
	}
}

// Start promotes a lobby room into a live session: players get random spawn
// positions and fresh combat state, and the two tick loops begin. Any loops
// still bound to a prior session reusing the same room id are cancelled
// first.
func (m *Manager) Start(room *model.Room) *Session {
	s := &Session{
		GameType:      room.GameType,
		RoomID:        room.ID,
		players:       make(map[model.PlayerID]*model.PlayerState, len(room.Players)),
		alive:         make(map[model.PlayerID]struct{}, len(room.Players)),
		pool:          NewProjectilePool(),
		simTask:       newTask(),
		broadcastTask: newTask(),
	}
	for _, p := range room.Players {
		s.players[p.ID] = &model.PlayerState{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			Pos: model.Vec2{
				X: m.random.Float64() * m.cfg.WorldWidth,
				Y: m.random.Float64() * m.cfg.WorldHeight,
			},
			Mass:  m.cfg.PlayerMass,
			Alive: true,
		}
		s.order = append(s.order, p.ID)
		s.alive[p.ID] = struct{}{}
	}

	k := sessionKey{gameType: room.GameType, roomID: room.ID}
	m.mu.Lock()
	if stale, ok := m.sessions[k]; ok {
		stale.simTask.cancel()
		stale.broadcastTask.cancel()
	}
	m.sessions[k] = s
	m.mu.Unlock()

	go m.runLoop(s.simTask, m.clock.NewTicker(m.cfg.SimulationInterval), func() {
		m.SimulationTick(s)
	})
	go m.runLoop(s.broadcastTask, m.clock.NewTicker(m.cfg.BroadcastInterval), func() {
		m.BroadcastTick(s)
	})

	m.logger.Info("session started",
		slog.String("game_type", string(room.GameType)),
		slog.String("room_id", string(room.ID)),
		slog.Int("players", len(room.Players)),
	)
	return s
}

func (m *Manager) runLoop(t *task, ticker clock.Ticker, fn func()) {
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C():
			fn()
		case <-t.stop:
			return
		}
	}
}

// Session returns the active session for a room, or nil
func (m *Manager) Session(gameType model.GameTypeID, roomID model.RoomID) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[sessionKey{gameType: gameType, roomID: roomID}]
}

// ApplyMovement resolves a compass direction to a fixed-magnitude delta and
// applies it to the player's position, clamped to world bounds. Unknown or
// dead players are ignored. Never triggers a broadcast; the result is
// observed on the next broadcast tick.
func (m *Manager) ApplyMovement(gameType model.GameTypeID, roomID model.RoomID, playerID model.PlayerID, dir model.Direction) error {
	s := m.Session(gameType, roomID)
	if s == nil {
		return model.ErrSessionNotFound
	}
	delta, ok := dir.Delta()
	if !ok {
		return model.ErrUnknownDirection
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return model.ErrSessionEnded
	}
	ps, ok := s.players[playerID]
	if !ok || !ps.Alive {
		return nil
	}
	step := delta.Scale(m.cfg.MovementStep)
	ps.Pos = m.cfg.ClampToWorld(ps.Pos.Add(step))
	ps.LastDelta = step
	return nil
}

// SpawnProjectile fires a shot from the player's current position. The
// record comes from the session's pool; ids are strictly increasing and
// never reissued. A projectile-created event is emitted immediately so
// clients render the shot ahead of the next broadcast tick.
func (m *Manager) SpawnProjectile(gameType model.GameTypeID, roomID model.RoomID, playerID model.PlayerID, kind model.ProjectileKind, dir model.Vec2) error {
	s := m.Session(gameType, roomID)
	if s == nil {
		return model.ErrSessionNotFound
	}
	spec, ok := m.cfg.Projectiles[kind]
	if !ok {
		return model.ErrUnknownKind
	}
	if !dir.IsFinite() || dir.Length() == 0 {
		return model.ErrInvalidDirection
	}

	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return model.ErrSessionEnded
	}
	ps, present := s.players[playerID]
	if !present {
		s.mu.Unlock()
		return model.ErrNotInRoom
	}
	if !ps.Alive {
		s.mu.Unlock()
		return model.ErrPlayerDead
	}

	rec := s.pool.Acquire()
	s.nextProjID++
	rec.ID = s.nextProjID
	rec.Owner = playerID
	rec.Kind = kind
	rec.Pos = ps.Pos
	rec.Vel = dir.Normalized().Scale(spec.Speed)
	rec.Radius = spec.Radius
	rec.Traveled = 0
	rec.MaxRange = spec.MaxRange
	s.projectiles = append(s.projectiles, rec)

	payload := model.ProjectileCreatedPayload{
		RoomID: s.RoomID,
		Projectile: model.SnapshotProjectile{
			ID:     rec.ID,
			Owner:  rec.Owner,
			Pos:    rec.Pos,
			Radius: rec.Radius,
		},
		Kind: rec.Kind,
		Vel:  rec.Vel,
	}
	s.mu.Unlock()

	m.adapter.ProjectileCreated(gameType, payload)
	return nil
}

// SimulationTick advances every live projectile in insertion order, retires
// those that leave the world or exhaust their range, resolves collisions
// (one kill per projectile, first match wins), then evaluates the win
// condition once. Exported so tests can drive the simulation without a
// ticker.
func (m *Manager) SimulationTick(s *Session) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}

	i := 0
	for i < len(s.projectiles) {
		p := s.projectiles[i]
		p.Pos = p.Pos.Add(p.Vel)
		p.Traveled += p.Vel.Length()
		if !m.cfg.InWorld(p.Pos) || (p.MaxRange > 0 && p.Traveled >= p.MaxRange) {
			s.retireProjectileLocked(i)
			continue
		}
		hit := false
		for _, pid := range s.order {
			if pid == p.Owner {
				continue
			}
			target := s.players[pid]
			if !target.Alive {
				continue
			}
			if p.Pos.DistanceTo(target.Pos) < p.Radius+target.Mass {
				target.Alive = false
				delete(s.alive, pid)
				s.retireProjectileLocked(i)
				hit = true
				break
			}
		}
		if !hit {
			i++
		}
	}

	var winnerName string
	endNow := false
	if !s.winnerSet && len(s.alive) <= 1 {
		s.winnerSet = true
		for pid := range s.alive {
			s.winner = pid
		}
		winnerName = s.winnerNameLocked()
		s.teardownLocked()
		endNow = true
	}
	s.mu.Unlock()

	if endNow {
		m.remove(s)
		m.adapter.SessionEnded(s.GameType, model.SessionEndedPayload{
			RoomID: s.RoomID,
			Winner: winnerName,
		})
		m.logger.Info("session ended",
			slog.String("game_type", string(s.GameType)),
			slog.String("room_id", string(s.RoomID)),
			slog.String("winner", winnerName),
		)
	}
}

// BroadcastTick publishes the current snapshot to the session's channel.
// Exported so tests can drive the loop without a ticker.
func (m *Manager) BroadcastTick(s *Session) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	snap := s.snapshotLocked(m.cfg)
	s.mu.Unlock()
	m.adapter.Snapshot(s.GameType, snap)
}

// End tears the session down on an explicit request: both loops are
// cancelled, in-flight projectiles drain back to the pool, and one terminal
// session-ended event is emitted. A second call is a no-op.
func (m *Manager) End(gameType model.GameTypeID, roomID model.RoomID) error {
	s := m.Session(gameType, roomID)
	if s == nil {
		return model.ErrSessionNotFound
	}
	s.mu.Lock()
	if !s.teardownLocked() {
		s.mu.Unlock()
		return nil
	}
	winnerName := s.winnerNameLocked()
	s.mu.Unlock()

	m.remove(s)
	m.adapter.SessionEnded(gameType, model.SessionEndedPayload{
		RoomID: roomID,
		Winner: winnerName,
	})
	m.logger.Info("session ended",
		slog.String("game_type", string(gameType)),
		slog.String("room_id", string(roomID)),
		slog.String("winner", winnerName),
	)
	return nil
}

// HandleDisconnect removes the player from every session they appear in.
// A session emptied this way is deleted outright with no session-ended
// event; an abandoned session has no meaningful winner.
func (m *Manager) HandleDisconnect(playerID model.PlayerID) {
	m.mu.Lock()
	active := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		active = append(active, s)
	}
	m.mu.Unlock()

	for _, s := range active {
		s.mu.Lock()
		if !s.removePlayerLocked(playerID) {
			s.mu.Unlock()
			continue
		}
		empty := len(s.players) == 0
		if empty {
			s.teardownLocked()
		}
		s.mu.Unlock()

		if empty {
			m.remove(s)
			m.logger.Info("session abandoned",
				slog.String("game_type", string(s.GameType)),
				slog.String("room_id", string(s.RoomID)),
			)
		}
	}
}

// SnapshotFor builds a snapshot for a room, tolerating the absence of an
// active session by returning an effectively empty one.
func (m *Manager) SnapshotFor(gameType model.GameTypeID, roomID model.RoomID) model.Snapshot {
	if s := m.Session(gameType, roomID); s != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.snapshotLocked(m.cfg)
	}
	return model.Snapshot{
		RoomID:      roomID,
		Players:     []model.SnapshotPlayer{},
		Projectiles: []model.SnapshotProjectile{},
		WorldWidth:  m.cfg.WorldWidth,
		WorldHeight: m.cfg.WorldHeight,
	}
}

func (m *Manager) remove(s *Session) {
	k := sessionKey{gameType: s.GameType, roomID: s.RoomID}
	m.mu.Lock()
	if m.sessions[k] == s {
		delete(m.sessions, k)
	}
	m.mu.Unlock()
}
