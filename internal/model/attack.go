package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/udisondev/idlecore/internal/fixed"
)

// AttackKind identifies an attack type and its pool.
type AttackKind uint8

const (
	AttackSlash AttackKind = iota + 1 // short melee arc in front of the owner
	AttackBolt                        // single fast projectile
	AttackNova                        // burst of projectiles in all directions
)

// AttackKinds lists every known kind in pool order.
var AttackKinds = []AttackKind{AttackSlash, AttackBolt, AttackNova}

func (k AttackKind) String() string {
	switch k {
	case AttackSlash:
		return "slash"
	case AttackBolt:
		return "bolt"
	case AttackNova:
		return "nova"
	default:
		return fmt.Sprintf("attack(%d)", uint8(k))
	}
}

// ParseAttackKind resolves a config name to an AttackKind.
func ParseAttackKind(name string) (AttackKind, error) {
	for _, k := range AttackKinds {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown attack kind %q", name)
}

// AttackStats are the attack-specific fields of an Object.
type AttackStats struct {
	Kind    AttackKind
	Enabled bool

	Damage    int32
	Range     int32 // fixed units
	Cooldown  time.Duration
	Direction fixed.Position // unit vector scaled by fixed.Scale
	Speed     int32          // fixed units per second
	Area      int32          // side of the hit box, fixed units

	Lifetime time.Duration
	Elapsed  time.Duration

	Projectiles int
	BurstCount  int
	BurstDelay  time.Duration

	Hit        []ObjectID
	MaxTargets int // 0 = unlimited

	Hostile bool  // fired by an enemy, hits the player only
	Bonus   int32 // extra damage from the owner's upgrades
}

// HitDamage returns the damage dealt per hit.
func (a *AttackStats) HitDamage() int32 {
	return a.Damage + a.Bonus
}

// Reset clears per-flight state so a pooled attack can fly again.
func (a *AttackStats) Reset() {
	a.Elapsed = 0
	a.Direction = fixed.Zero
	a.Hit = a.Hit[:0]
	a.Hostile = false
	a.Bonus = 0
}

// Expired reports whether the attack outlived its lifetime or used all targets.
func (a *AttackStats) Expired() bool {
	if a.Lifetime > 0 && a.Elapsed >= a.Lifetime {
		return true
	}
	return a.MaxTargets > 0 && len(a.Hit) >= a.MaxTargets
}

// RegisterHit records a hit on id. Returns false if id was already hit or
// the attack has no targets left.
func (a *AttackStats) RegisterHit(id ObjectID) bool {
	if a.MaxTargets > 0 && len(a.Hit) >= a.MaxTargets {
		return false
	}
	if slices.Contains(a.Hit, id) {
		return false
	}
	a.Hit = append(a.Hit, id)
	return true
}

// AttackTemplate describes how to build an attack of a given kind.
type AttackTemplate struct {
	Kind        AttackKind
	Damage      int32
	Range       int32
	Cooldown    time.Duration
	Speed       int32
	Area        int32
	Lifetime    time.Duration
	Projectiles int
	BurstCount  int
	BurstDelay  time.Duration
	MaxTargets  int
	Sound       string
}

// attackTemplates is the built-in attack catalogue.
var attackTemplates = map[AttackKind]AttackTemplate{
	AttackSlash: {
		Kind:        AttackSlash,
		Damage:      12,
		Range:       3 * fixed.Scale,
		Cooldown:    700 * time.Millisecond,
		Speed:       0,
		Area:        4 * fixed.Scale,
		Lifetime:    150 * time.Millisecond,
		Projectiles: 1,
		BurstCount:  1,
		MaxTargets:  0,
		Sound:       "slash",
	},
	AttackBolt: {
		Kind:        AttackBolt,
		Damage:      8,
		Range:       40 * fixed.Scale,
		Cooldown:    1200 * time.Millisecond,
		Speed:       60 * fixed.Scale,
		Area:        1 * fixed.Scale,
		Lifetime:    2 * time.Second,
		Projectiles: 1,
		BurstCount:  3,
		BurstDelay:  100 * time.Millisecond,
		MaxTargets:  1,
		Sound:       "bolt",
	},
	AttackNova: {
		Kind:        AttackNova,
		Damage:      5,
		Range:       12 * fixed.Scale,
		Cooldown:    3 * time.Second,
		Speed:       20 * fixed.Scale,
		Area:        2 * fixed.Scale,
		Lifetime:    600 * time.Millisecond,
		Projectiles: 8,
		BurstCount:  1,
		MaxTargets:  3,
		Sound:       "nova",
	},
}

// AttackTemplateFor returns the template for kind.
func AttackTemplateFor(kind AttackKind) (AttackTemplate, bool) {
	t, ok := attackTemplates[kind]
	return t, ok
}

// NewAttack builds a disabled attack object from t, ready to be pooled.
func NewAttack(t AttackTemplate) *Object {
	return &Object{
		ID:     Unassigned,
		Kind:   KindAttack,
		Shape:  Shape{W: t.Area, H: t.Area},
		Speed:  t.Speed,
		Parent: Unassigned,
		Attack: &AttackStats{
			Kind:        t.Kind,
			Damage:      t.Damage,
			Range:       t.Range,
			Cooldown:    t.Cooldown,
			Speed:       t.Speed,
			Area:        t.Area,
			Lifetime:    t.Lifetime,
			Projectiles: t.Projectiles,
			BurstCount:  t.BurstCount,
			BurstDelay:  t.BurstDelay,
			MaxTargets:  t.MaxTargets,
			Hit:         make([]ObjectID, 0, max(t.MaxTargets, 4)),
		},
	}
}
