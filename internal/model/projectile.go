package model

// ProjectileID is unique within a session and strictly increasing. Retired
// projectile records are recycled but their ids are never reissued.
type ProjectileID int64

// ProjectileKind selects an entry in the per-kind parameter table
type ProjectileKind string

const (
	KindBullet ProjectileKind = "bullet"
	KindPlasma ProjectileKind = "plasma"
	KindRocket ProjectileKind = "rocket"
)

// ProjectileSpec holds the fixed parameters for one projectile kind
type ProjectileSpec struct {
	Speed    float64 // world units per tick
	Radius   float64
	MaxRange float64 // 0 means unlimited
}

// Projectile is one live shot owned by a session engine. Records are pooled;
// every field is overwritten on reuse.
type Projectile struct {
	ID       ProjectileID
	Owner    PlayerID
	Kind     ProjectileKind
	Pos      Vec2
	Vel      Vec2
	Radius   float64
	Traveled float64
	MaxRange float64
}
