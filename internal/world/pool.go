package world

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/sasha-s/go-deadlock"

	"github.com/udisondev/idlecore/internal/fixed"
	"github.com/udisondev/idlecore/internal/model"
)

// DefaultPoolSize is the number of pre-built attacks per kind.
const DefaultPoolSize = 1024

// AttackPools holds a reusable freelist of attack objects per attack kind.
// Safe for concurrent use; its lock is a leaf and never wraps world locks.
type AttackPools struct {
	mu    deadlock.Mutex
	pools map[model.AttackKind]*attackPool
}

type attackPool struct {
	template model.AttackTemplate
	free     []*model.Object
	size     int
	dropped  atomic.Int64
}

// NewAttackPools pre-builds sizes[kind] attacks for every kind in sizes.
// Kinds without a template are ignored.
func NewAttackPools(sizes map[model.AttackKind]int) *AttackPools {
	p := &AttackPools{pools: make(map[model.AttackKind]*attackPool, len(sizes))}
	for kind, n := range sizes {
		tmpl, ok := model.AttackTemplateFor(kind)
		if !ok {
			slog.Warn("attack pool skipped, no template", "kind", kind)
			continue
		}
		pool := &attackPool{template: tmpl, free: make([]*model.Object, 0, n), size: n}
		for range n {
			pool.free = append(pool.free, model.NewAttack(tmpl))
		}
		p.pools[kind] = pool
	}
	return p
}

// DefaultPoolSizes returns DefaultPoolSize for every known kind.
func DefaultPoolSizes() map[model.AttackKind]int {
	sizes := make(map[model.AttackKind]int, len(model.AttackKinds))
	for _, k := range model.AttackKinds {
		sizes[k] = DefaultPoolSize
	}
	return sizes
}

// Checkout takes an attack of kind out of its pool, enabled and with
// per-flight stats reset. Returns false when the pool is empty or unknown:
// the spawn is dropped and counted instead of growing the pool.
func (p *AttackPools) Checkout(kind model.AttackKind) (*model.Object, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pool, ok := p.pools[kind]
	if !ok {
		return nil, false
	}
	n := len(pool.free)
	if n == 0 {
		dropped := pool.dropped.Add(1)
		slog.Debug("attack pool exhausted, spawn dropped", "kind", kind, "dropped", dropped)
		return nil, false
	}
	obj := pool.free[n-1]
	pool.free[n-1] = nil
	pool.free = pool.free[:n-1]

	obj.ID = model.Unassigned
	obj.Parent = model.Unassigned
	obj.Attack.Reset()
	obj.Attack.Enabled = true
	return obj, true
}

// Checkin returns an attack to its pool and disables it.
// Objects that are not attacks, or whose pool is full, are discarded.
func (p *AttackPools) Checkin(obj *model.Object) bool {
	if obj == nil || obj.Kind != model.KindAttack || obj.Attack == nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	pool, ok := p.pools[obj.Attack.Kind]
	if !ok || len(pool.free) >= pool.size {
		return false
	}
	obj.Attack.Enabled = false
	obj.ID = model.Unassigned
	obj.Parent = model.Unassigned
	pool.free = append(pool.free, obj)
	return true
}

// Available returns the number of attacks of kind ready for checkout.
func (p *AttackPools) Available(kind model.AttackKind) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pool, ok := p.pools[kind]; ok {
		return len(pool.free)
	}
	return 0
}

// Dropped returns how many checkouts of kind failed on an empty pool.
func (p *AttackPools) Dropped(kind model.AttackKind) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pool, ok := p.pools[kind]; ok {
		return pool.dropped.Load()
	}
	return 0
}

// Has reports whether kind has a pool.
func (p *AttackPools) Has(kind model.AttackKind) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.pools[kind]
	return ok
}

// CheckoutAttack takes an attack of kind from the world's pools.
func (w *World) CheckoutAttack(kind model.AttackKind) (*model.Object, bool) {
	return w.pools.Checkout(kind)
}

// CheckinAttack returns an attack that never made it into the world.
func (w *World) CheckinAttack(obj *model.Object) bool {
	return w.pools.Checkin(obj)
}

// AttackOrder asks for one attack to be fired.
type AttackOrder struct {
	Kind      model.AttackKind
	Owner     model.ObjectID
	Hostile   bool
	Bonus     int32
	At        fixed.Position
	Direction fixed.Position
}

// SpawnAttacks checks out one attack per order and inserts them in one batch.
// Orders whose pool is exhausted are dropped and counted in dropped.
func (w *World) SpawnAttacks(orders []AttackOrder) (ids []model.ObjectID, dropped int, err error) {
	if len(orders) == 0 {
		return nil, 0, nil
	}

	objs := make([]*model.Object, 0, len(orders))
	at := make([]fixed.Position, 0, len(orders))
	for _, o := range orders {
		if !w.pools.Has(o.Kind) {
			w.checkinAll(objs)
			return nil, 0, fmt.Errorf("spawning %s: %w", o.Kind, ErrUnknownAttackKind)
		}
		obj, ok := w.pools.Checkout(o.Kind)
		if !ok {
			dropped++
			continue
		}
		obj.Parent = o.Owner
		obj.Attack.Direction = o.Direction
		obj.Attack.Hostile = o.Hostile
		obj.Attack.Bonus = o.Bonus
		objs = append(objs, obj)
		at = append(at, o.At)
	}

	ids, err = w.InsertBatch(objs, at)
	if err != nil {
		w.checkinAll(objs)
		return nil, dropped, fmt.Errorf("spawning attacks: %w", err)
	}
	return ids, dropped, nil
}

func (w *World) checkinAll(objs []*model.Object) {
	for _, obj := range objs {
		w.pools.Checkin(obj)
	}
}
