package model

import "time"

// Config holds the tunable world and simulation parameters. The zero value is
// not usable; start from DefaultConfig.
type Config struct {
	WorldWidth  float64
	WorldHeight float64

	// Tick intervals for the two per-session loops. They are independent so
	// the broadcast cadence can diverge from simulation cadence.
	SimulationInterval time.Duration
	BroadcastInterval  time.Duration

	// MovementStep is the fixed distance one movement event covers
	MovementStep float64

	// Countdown is the delay between all players readying up and the
	// session starting
	Countdown time.Duration

	// PlayerMass is the spawn-time collision radius proxy of every player
	PlayerMass float64

	Projectiles map[ProjectileKind]ProjectileSpec
}

// DefaultConfig returns the default world parameters: a 1080x1080 world with
// both loops at 30 ticks per second.
func DefaultConfig() Config {
	return Config{
		WorldWidth:         1080,
		WorldHeight:        1080,
		SimulationInterval: time.Second / 30,
		BroadcastInterval:  time.Second / 30,
		MovementStep:       12,
		Countdown:          3 * time.Second,
		PlayerMass:         24,
		Projectiles: map[ProjectileKind]ProjectileSpec{
			KindBullet: {Speed: 28, Radius: 6, MaxRange: 0},
			KindPlasma: {Speed: 40, Radius: 4, MaxRange: 720},
			KindRocket: {Speed: 18, Radius: 12, MaxRange: 1400},
		},
	}
}

// ClampToWorld returns p constrained to the world extents
func (c Config) ClampToWorld(p Vec2) Vec2 {
	if p.X < 0 {
		p.X = 0
	} else if p.X > c.WorldWidth {
		p.X = c.WorldWidth
	}
	if p.Y < 0 {
		p.Y = 0
	} else if p.Y > c.WorldHeight {
		p.Y = c.WorldHeight
	}
	return p
}

// InWorld reports whether p lies within the world extents
func (c Config) InWorld(p Vec2) bool {
	return p.X >= 0 && p.X <= c.WorldWidth && p.Y >= 0 && p.Y <= c.WorldHeight
}
