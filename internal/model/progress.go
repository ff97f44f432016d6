package model

import "slices"

// Upgrade names known to the player factory.
const (
	UpgradeVitality  = "vitality"
	UpgradeSwiftness = "swiftness"
	UpgradeMagnet    = "magnet"
	UpgradeMight     = "might"
)

// Tab is the UI tab the player has open. Only adventure ticks the simulation.
type Tab uint8

const (
	TabTown Tab = iota
	TabAdventure
	TabUpgrades
)

func (t Tab) String() string {
	switch t {
	case TabTown:
		return "town"
	case TabAdventure:
		return "adventure"
	case TabUpgrades:
		return "upgrades"
	default:
		return "unknown"
	}
}

// Progress is the save-worthy, player-owned part of the game state.
// Positions and the spatial grid are never part of it.
type Progress struct {
	Gold       int64
	Experience int64
	Kills      int64
	BestWave   int32
	Tab        Tab
	Upgrades   []Upgrade
}

// Clone returns a deep copy.
func (p Progress) Clone() Progress {
	p.Upgrades = slices.Clone(p.Upgrades)
	return p
}

// AddLoot credits a pickup.
func (p *Progress) AddLoot(l Loot) {
	p.Gold += l.Gold
	p.Experience += l.Experience
}

// SetUpgrade sets the level of the named upgrade, adding it if missing.
func (p *Progress) SetUpgrade(name string, level int32) {
	for i := range p.Upgrades {
		if p.Upgrades[i].Name == name {
			p.Upgrades[i].Level = level
			return
		}
	}
	p.Upgrades = append(p.Upgrades, Upgrade{Name: name, Level: level})
}
