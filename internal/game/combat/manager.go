// Package combat advances attacks, applies hits and fires ready attacks.
package combat

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/idlecore/internal/fixed"
	"github.com/udisondev/idlecore/internal/model"
	"github.com/udisondev/idlecore/internal/world"
)

// Config selects who fires what.
type Config struct {
	PlayerAttacks []model.AttackKind
	EnemyAttack   model.AttackKind // 0 = enemies only chase
	MightBonus    int32            // extra damage per might upgrade level
}

// DefaultConfig arms the player with every attack and enemies with a slash.
func DefaultConfig() Config {
	return Config{
		PlayerAttacks: append([]model.AttackKind(nil), model.AttackKinds...),
		EnemyAttack:   model.AttackSlash,
		MightBonus:    2,
	}
}

// HitResult описывает одно попадание атаки по цели за тик.
type HitResult struct {
	Attack model.ObjectID
	Target model.ObjectID
	Damage int32
	Killed bool
}

// Result summarizes one combat tick.
type Result struct {
	Hits      []HitResult
	Fired     int
	Dropped   int // attacks lost to exhausted pools
	Despawned int
}

// Manager runs combat once per tick. Not safe for concurrent use: the game
// loop owns it.
type Manager struct {
	cfg Config

	pending []delayed
	orders  []world.AttackOrder
	dead    []*model.Object
	buf     []model.ObjectID
}

// delayed is a burst shot waiting for its delay to pass.
type delayed struct {
	order  world.AttackOrder
	offset fixed.Position // from the owner's position
	due    time.Duration
}

// NewManager creates a combat manager.
func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg}
}

// Tick ages attacks, applies their hits, fires ready attacks and despawns
// whatever expired or died.
//
// Object state is mutated under World.Update; despawns and spawns run after
// the lock is released.
func (m *Manager) Tick(w *world.World, dt time.Duration) (Result, error) {
	var res Result
	playerID := w.State().PlayerID
	m.orders = m.orders[:0]
	m.dead = m.dead[:0]

	w.Update(func(tx *world.Tx) {
		m.releaseBursts(tx, dt)

		for _, obj := range tx.Objects {
			if obj == nil {
				continue
			}
			switch obj.Kind {
			case model.KindAttack:
				m.tickAttack(tx, obj, dt, &res)
			case model.KindPlayer:
				if obj.Alive() {
					m.firePlayer(tx, obj, dt)
				}
			case model.KindEnemy:
				if obj.Alive() {
					m.fireEnemy(tx, obj, playerID, dt)
				}
			}
		}
	})

	if len(m.dead) > 0 {
		r, err := w.DespawnObjects(m.dead)
		if err != nil {
			return res, fmt.Errorf("despawning combat casualties: %w", err)
		}
		res.Despawned = len(r.Removed)
	}

	ids, dropped, err := w.SpawnAttacks(m.orders)
	if err != nil {
		return res, fmt.Errorf("firing attacks: %w", err)
	}
	res.Fired = len(ids)
	res.Dropped = dropped

	if len(res.Hits) > 0 || res.Fired > 0 {
		slog.Debug("combat tick",
			"hits", len(res.Hits),
			"fired", res.Fired,
			"dropped", res.Dropped,
			"despawned", res.Despawned)
	}
	return res, nil
}

// Pending returns the number of burst shots waiting to fire.
func (m *Manager) Pending() int {
	return len(m.pending)
}

func (m *Manager) tickAttack(tx *world.Tx, obj *model.Object, dt time.Duration, res *Result) {
	a := obj.Attack
	if a == nil || !a.Enabled {
		m.dead = append(m.dead, obj)
		return
	}
	a.Elapsed += dt

	pos := tx.Positions[obj.ID]
	box := obj.Bounds(pos)

	m.buf = tx.Nearby(pos, m.buf[:0])
	for _, id := range m.buf {
		if a.Expired() {
			break
		}
		target, ok := tx.Object(id)
		if !ok || !target.Kind.Blocking() || !target.Alive() {
			continue
		}
		// Hostile attacks hit the player, friendly ones hit enemies.
		if a.Hostile != (target.Kind == model.KindPlayer) {
			continue
		}
		if !box.Overlaps(target.Bounds(tx.Positions[id])) {
			continue
		}
		if !a.RegisterHit(id) {
			continue
		}

		dmg := a.HitDamage()
		killed := target.Damage(dmg)
		res.Hits = append(res.Hits, HitResult{Attack: obj.ID, Target: id, Damage: dmg, Killed: killed})
		if killed {
			m.dead = append(m.dead, target)
		}
	}

	if a.Expired() || outOfRange(a) {
		m.dead = append(m.dead, obj)
	}
}

// outOfRange reports whether a projectile flew past its range.
func outOfRange(a *model.AttackStats) bool {
	if a.Speed <= 0 || a.Range <= 0 {
		return false
	}
	flown := int64(a.Speed) * int64(a.Elapsed) / int64(time.Second)
	return flown >= int64(a.Range)
}

func (m *Manager) firePlayer(tx *world.Tx, obj *model.Object, dt time.Duration) {
	pos := tx.Positions[obj.ID]
	bonus := obj.UpgradeLevel(model.UpgradeMight) * m.cfg.MightBonus

	for _, kind := range m.cfg.PlayerAttacks {
		tmpl, ok := model.AttackTemplateFor(kind)
		if !ok {
			continue
		}
		target, found := nearest(tx, pos, model.KindEnemy, tmpl.Range)
		if !found {
			obj.Cool(kind, dt)
			continue
		}
		if !obj.ReadyToFire(kind, dt, tmpl.Cooldown) {
			continue
		}
		m.fire(tmpl, obj.ID, false, bonus, pos, target.Sub(pos))
	}
}

func (m *Manager) fireEnemy(tx *world.Tx, obj *model.Object, playerID model.ObjectID, dt time.Duration) {
	if m.cfg.EnemyAttack == 0 {
		return
	}
	tmpl, ok := model.AttackTemplateFor(m.cfg.EnemyAttack)
	if !ok {
		return
	}
	target, ok := tx.Position(playerID)
	if !ok {
		return
	}
	pos := tx.Positions[obj.ID]
	if !pos.Within(target, tmpl.Range) {
		obj.Cool(tmpl.Kind, dt)
		return
	}
	if obj.ReadyToFire(tmpl.Kind, dt, tmpl.Cooldown) {
		m.fire(tmpl, obj.ID, true, 0, pos, target.Sub(pos))
	}
}

// releaseBursts moves burst shots whose delay passed into this tick's
// orders, re-anchored on the owner. Shots of removed owners are dropped.
func (m *Manager) releaseBursts(tx *world.Tx, dt time.Duration) {
	kept := m.pending[:0]
	for _, d := range m.pending {
		d.due -= dt
		if d.due > 0 {
			kept = append(kept, d)
			continue
		}
		owner, ok := tx.Object(d.order.Owner)
		if !ok || !owner.Alive() || owner.Kind == model.KindAttack {
			continue
		}
		d.order.At = tx.Positions[d.order.Owner].Add(d.offset)
		m.orders = append(m.orders, d.order)
	}
	clear(m.pending[len(kept):])
	m.pending = kept
}
