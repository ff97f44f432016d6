package game

import (
	"fmt"

	"github.com/udisondev/idlecore/internal/model"
	"github.com/udisondev/idlecore/internal/world"
)

// Pickup consumes collectables inside the player's pickup radius and credits
// their loot to progress.
type Pickup struct {
	buf    []model.ObjectID
	picked []*model.Object
}

// PickupResult reports one pickup pass.
type PickupResult struct {
	Collected int
	Loot      model.Loot
}

// Tick runs one pickup pass.
func (p *Pickup) Tick(w *world.World) (PickupResult, error) {
	var res PickupResult
	playerID := w.State().PlayerID
	p.picked = p.picked[:0]

	w.View(func(tx *world.Tx) {
		player, ok := tx.Object(playerID)
		if !ok || player.PickupRadius <= 0 {
			return
		}
		center := tx.Positions[playerID]
		radius := player.PickupRadius

		consider := func(id model.ObjectID) {
			obj, ok := tx.Object(id)
			if !ok || obj.Kind != model.KindCollectable {
				return
			}
			if !center.Within(tx.Positions[id], radius) {
				return
			}
			p.picked = append(p.picked, obj)
			if obj.Loot != nil {
				res.Loot.Gold += obj.Loot.Gold
				res.Loot.Experience += obj.Loot.Experience
			}
		}

		// The 3x3 neighbourhood covers radii up to one cell.
		if radius <= tx.CellSize() {
			p.buf = tx.Nearby(center, p.buf[:0])
			for _, id := range p.buf {
				consider(id)
			}
			return
		}
		for i := range tx.Objects {
			consider(model.ObjectID(i))
		}
	})

	if len(p.picked) == 0 {
		return res, nil
	}

	r, err := w.DespawnObjects(p.picked)
	if err != nil {
		return res, fmt.Errorf("despawning pickups: %w", err)
	}
	res.Collected = len(r.Removed)
	if res.Collected != len(p.picked) {
		// Something else removed a pickup first; credit only what was taken.
		res.Loot = lootOf(p.picked, r.Removed)
	}

	w.UpdateProgress(func(pr *model.Progress) {
		pr.AddLoot(res.Loot)
	})
	return res, nil
}

func lootOf(objs []*model.Object, removed []model.ObjectID) model.Loot {
	var l model.Loot
	taken := make(map[model.ObjectID]struct{}, len(removed))
	for _, id := range removed {
		taken[id] = struct{}{}
	}
	for _, obj := range objs {
		if _, ok := taken[obj.ID]; ok && obj.Loot != nil {
			l.Gold += obj.Loot.Gold
			l.Experience += obj.Loot.Experience
		}
	}
	return l
}
