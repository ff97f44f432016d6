package model

import (
	"time"

	"github.com/udisondev/idlecore/internal/fixed"
)

// EnemyTemplate describes an enemy archetype.
type EnemyTemplate struct {
	Name   string
	Size   int // world units, square
	Speed  int32
	Health int32
	Loot   Loot
	Sound  string
}

// Built-in enemy archetypes used by the spawner.
var (
	EnemyGrunt = EnemyTemplate{
		Name:   "grunt",
		Size:   2,
		Speed:  6 * fixed.Scale,
		Health: 20,
		Loot:   Loot{Gold: 1, Experience: 2},
		Sound:  "grunt_death",
	}
	EnemyRunner = EnemyTemplate{
		Name:   "runner",
		Size:   1,
		Speed:  11 * fixed.Scale,
		Health: 8,
		Loot:   Loot{Gold: 1, Experience: 1},
		Sound:  "runner_death",
	}
	EnemyBrute = EnemyTemplate{
		Name:   "brute",
		Size:   3,
		Speed:  3 * fixed.Scale,
		Health: 90,
		Loot:   Loot{Gold: 6, Experience: 10},
		Sound:  "brute_death",
	}
)

// EnemyTemplates lists archetypes in spawn-weight order.
var EnemyTemplates = []EnemyTemplate{EnemyGrunt, EnemyRunner, EnemyBrute}

// Player defaults.
const (
	PlayerSize         = 2
	PlayerSpeed        = 9 * fixed.Scale
	PlayerHealth       = 100
	PlayerPickupRadius = 4 * fixed.Scale
)

// NewPlayer builds the player object with the given upgrades applied.
func NewPlayer(upgrades []Upgrade) *Object {
	p := &Object{
		ID:           Unassigned,
		Kind:         KindPlayer,
		Shape:        Square(PlayerSize),
		Speed:        PlayerSpeed,
		Health:       Health{Current: PlayerHealth, Max: PlayerHealth},
		Animation:    &AnimationState{Name: "idle"},
		Cooldowns:    make(map[AttackKind]time.Duration, len(AttackKinds)),
		Upgrades:     append([]Upgrade(nil), upgrades...),
		PickupRadius: PlayerPickupRadius,
		Parent:       Unassigned,
		OnDeath:      DeathEffects{Sound: "player_death", Animation: "player_death"},
	}
	vitality := p.UpgradeLevel(UpgradeVitality)
	p.Health.Max += vitality * 10
	p.Health.Current = p.Health.Max
	p.Speed += p.UpgradeLevel(UpgradeSwiftness) * fixed.Scale / 2
	p.PickupRadius += p.UpgradeLevel(UpgradeMagnet) * fixed.Scale
	return p
}

// NewEnemy builds an enemy from t. Every enemy carries its loot.
func NewEnemy(t EnemyTemplate) *Object {
	loot := t.Loot
	return &Object{
		ID:        Unassigned,
		Kind:      KindEnemy,
		Shape:     Square(t.Size),
		Speed:     t.Speed,
		Health:    Health{Current: t.Health, Max: t.Health},
		Animation: &AnimationState{Name: t.Name + "_walk"},
		Loot:      &loot,
		Parent:    Unassigned,
		OnDeath:   DeathEffects{Sound: t.Sound, Animation: t.Name + "_death"},
	}
}

// NewCollectable builds a pickup carrying loot.
func NewCollectable(loot Loot) *Object {
	return &Object{
		ID:        Unassigned,
		Kind:      KindCollectable,
		Shape:     Square(1),
		Loot:      &loot,
		Parent:    Unassigned,
		Animation: &AnimationState{Name: "coin"},
		OnDeath:   DeathEffects{Sound: "pickup"},
	}
}
