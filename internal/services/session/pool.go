package session

import (
	"github.com/tmccall/arenad/internal/model"
)

// ProjectilePool recycles projectile records so that steady-state fire
// does not allocate. It is not safe for concurrent use; each session
// owns one pool and accesses it under the session mutex.
type ProjectilePool struct {
	free      []*model.Projectile
	allocated int
}

func NewProjectilePool() *ProjectilePool {
	return &ProjectilePool{}
}

// Acquire returns a free record, allocating a new one only when the
// pool is empty. The caller is responsible for overwriting every field;
// records come back with stale contents.
func (p *ProjectilePool) Acquire() *model.Projectile {
	if n := len(p.free); n > 0 {
		rec := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		return rec
	}
	p.allocated++
	return &model.Projectile{}
}

// Release returns a record to the pool for reuse.
func (p *ProjectilePool) Release(rec *model.Projectile) {
	p.free = append(p.free, rec)
}

// Size reports how many records are currently free.
func (p *ProjectilePool) Size() int {
	return len(p.free)
}

// Allocated reports how many distinct records the pool has ever handed
// out. Useful for verifying that recycling actually happens.
func (p *ProjectilePool) Allocated() int {
	return p.allocated
}
