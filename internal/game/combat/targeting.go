package combat

import (
	"math"
	"time"

	"github.com/udisondev/idlecore/internal/fixed"
	"github.com/udisondev/idlecore/internal/model"
	"github.com/udisondev/idlecore/internal/world"
)

// nearest returns the position of the closest live object of kind within
// maxRange of pos.
func nearest(tx *world.Tx, pos fixed.Position, kind model.Kind, maxRange int32) (fixed.Position, bool) {
	var (
		best  fixed.Position
		bestD int64 = -1
	)
	for i, obj := range tx.Objects {
		if obj == nil || obj.Kind != kind || !obj.Alive() {
			continue
		}
		p := tx.Positions[i]
		if !pos.Within(p, maxRange) {
			continue
		}
		if d := pos.DistanceSquared(p); bestD < 0 || d < bestD {
			best, bestD = p, d
		}
	}
	return best, bestD >= 0
}

// fire turns one ready attack into orders.
//
// Multi-projectile attacks fan out evenly around aim. Stationary attacks
// (speed 0) are placed half their range ahead of the owner. Bursts queue
// their follow-up shots BurstDelay apart.
func (m *Manager) fire(tmpl model.AttackTemplate, owner model.ObjectID, hostile bool, bonus int32, at, aim fixed.Position) {
	dir := aim.Normalize()
	if dir == fixed.Zero {
		dir = fixed.New(fixed.Scale, 0)
	}

	base := world.AttackOrder{
		Kind:    tmpl.Kind,
		Owner:   owner,
		Hostile: hostile,
		Bonus:   bonus,
	}

	if tmpl.Projectiles > 1 {
		fx, fy := dir.ToFloat()
		start := math.Atan2(fy, fx)
		step := 2 * math.Pi / float64(tmpl.Projectiles)
		for i := range tmpl.Projectiles {
			angle := start + step*float64(i)
			o := base
			o.At = at
			o.Direction = fixed.FromFloat(math.Cos(angle), math.Sin(angle))
			m.orders = append(m.orders, o)
		}
		return
	}

	var offset fixed.Position
	if tmpl.Speed == 0 {
		offset = dir.Mul(tmpl.Range / 2)
	}
	base.Direction = dir

	for b := range max(tmpl.BurstCount, 1) {
		o := base
		o.At = at.Add(offset)
		if b == 0 {
			m.orders = append(m.orders, o)
			continue
		}
		m.pending = append(m.pending, delayed{
			order:  o,
			offset: offset,
			due:    time.Duration(b) * tmpl.BurstDelay,
		})
	}
}
