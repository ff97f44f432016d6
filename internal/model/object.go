package model

import (
	"time"

	"github.com/udisondev/idlecore/internal/fixed"
)

// ObjectID is the index of an object in the world slot table.
type ObjectID int32

// Unassigned is the id of an object that has not been inserted yet.
const Unassigned ObjectID = -1

// Kind tags what an object represents in the simulation.
type Kind uint8

const (
	KindPlayer Kind = iota
	KindEnemy
	KindAttack
	KindCollectable
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindEnemy:
		return "enemy"
	case KindAttack:
		return "attack"
	case KindCollectable:
		return "collectable"
	default:
		return "unknown"
	}
}

// Blocking reports whether objects of this kind stop other blocking objects
// from moving into them. Attacks and collectables pass through everything.
func (k Kind) Blocking() bool {
	return k == KindPlayer || k == KindEnemy
}

// Health holds current and maximum hit points.
type Health struct {
	Current int32
	Max     int32
}

// AnimationState is the renderer-facing animation cursor.
type AnimationState struct {
	Name    string
	Frame   int
	Elapsed time.Duration
}

// DeathEffects are played by the effect sink when an object is removed.
type DeathEffects struct {
	Sound     string
	Animation string
}

// Upgrade is a permanent modifier bought with progress currency.
type Upgrade struct {
	Name  string `msgpack:"name"`
	Level int32  `msgpack:"level"`
}

// Loot is dropped by enemies and carried by collectables.
type Loot struct {
	Gold       int64
	Experience int64
}

// Object is any simulated entity: player, enemy, attack or collectable.
//
// Objects are mutated in place by the game loop while their slot is occupied;
// ID always equals the slot index once inserted.
type Object struct {
	ID    ObjectID
	Kind  Kind
	Shape Shape
	Speed int32 // fixed units per second

	Health    Health
	Animation *AnimationState
	Cooldowns map[AttackKind]time.Duration
	Upgrades  []Upgrade

	PickupRadius int32 // fixed units, 0 = does not pick up
	Loot         *Loot
	OnDeath      DeathEffects

	Parent ObjectID // owner of an attack, Unassigned otherwise
	Attack *AttackStats
}

// Alive reports whether the object still has hit points.
// Attacks and collectables have no health and are always alive.
func (o *Object) Alive() bool {
	if o.Health.Max == 0 {
		return true
	}
	return o.Health.Current > 0
}

// Damage subtracts n hit points. Returns true if this call killed the object.
func (o *Object) Damage(n int32) bool {
	if n <= 0 || o.Health.Max == 0 || o.Health.Current <= 0 {
		return false
	}
	o.Health.Current -= n
	if o.Health.Current <= 0 {
		o.Health.Current = 0
		return true
	}
	return false
}

// Heal restores up to n hit points without exceeding Max.
func (o *Object) Heal(n int32) {
	if n <= 0 || o.Health.Current <= 0 {
		return
	}
	o.Health.Current = min(o.Health.Current+n, o.Health.Max)
}

// Bounds returns the object's rectangle when placed at p.
func (o *Object) Bounds(p fixed.Position) Rect {
	return o.Shape.Bounds(p)
}

// ReadyToFire advances the cooldown of kind by dt and reports whether the
// attack may fire now. When it may, the cooldown is re-armed with period.
func (o *Object) ReadyToFire(kind AttackKind, dt, period time.Duration) bool {
	if o.Cooldowns == nil {
		o.Cooldowns = make(map[AttackKind]time.Duration)
	}
	left := o.Cooldowns[kind] - dt
	if left > 0 {
		o.Cooldowns[kind] = left
		return false
	}
	o.Cooldowns[kind] = period + left
	if o.Cooldowns[kind] < 0 {
		o.Cooldowns[kind] = 0
	}
	return true
}

// Cool advances the cooldown of kind by dt without re-arming it.
func (o *Object) Cool(kind AttackKind, dt time.Duration) {
	if left, ok := o.Cooldowns[kind]; ok {
		o.Cooldowns[kind] = max(left-dt, 0)
	}
}

// UpgradeLevel returns the level of the named upgrade, 0 if absent.
func (o *Object) UpgradeLevel(name string) int32 {
	for _, u := range o.Upgrades {
		if u.Name == name {
			return u.Level
		}
	}
	return 0
}
