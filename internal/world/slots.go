package world

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/idlecore/internal/fixed"
	"github.com/udisondev/idlecore/internal/model"
)

// InsertBatch stores objects at positions and returns their new ids.
//
// Each object takes a recycled slot if one is free, otherwise the table grows.
// Objects, positions, free-list and grid are write-locked together so the
// grid never disagrees with the tables.
func (w *World) InsertBatch(objects []*model.Object, positions []fixed.Position) ([]model.ObjectID, error) {
	if len(objects) != len(positions) {
		return nil, fmt.Errorf("inserting %d objects at %d positions: %w", len(objects), len(positions), ErrBatchMismatch)
	}
	seen := make(map[*model.Object]struct{}, len(objects))
	for i, obj := range objects {
		if obj == nil {
			return nil, fmt.Errorf("inserting object #%d: %w", i, ErrNilObject)
		}
		if _, dup := seen[obj]; dup {
			return nil, fmt.Errorf("inserting %s object #%d: %w", obj.Kind, i, ErrDuplicateObject)
		}
		seen[obj] = struct{}{}
		if obj.ID != model.Unassigned {
			return nil, fmt.Errorf("inserting object %d: %w", obj.ID, ErrAlreadyInserted)
		}
		if !positions[i].IsValid() {
			return nil, fmt.Errorf("inserting %s object: %w", obj.Kind, ErrInvalidPosition)
		}
	}
	if len(objects) == 0 {
		return nil, nil
	}

	w.objectsMu.Lock()
	defer w.objectsMu.Unlock()
	w.positionsMu.Lock()
	defer w.positionsMu.Unlock()
	w.freeMu.Lock()
	defer w.freeMu.Unlock()
	w.gridMu.Lock()
	defer w.gridMu.Unlock()

	ids := make([]model.ObjectID, len(objects))
	for i, obj := range objects {
		var id model.ObjectID
		if n := len(w.free); n > 0 {
			id = w.free[n-1]
			w.free = w.free[:n-1]
			w.objects[id] = obj
			w.positions[id] = positions[i]
		} else {
			id = model.ObjectID(len(w.objects))
			w.objects = append(w.objects, obj)
			w.positions = append(w.positions, positions[i])
		}
		obj.ID = id
		w.grid.Insert(id, positions[i])
		ids[i] = id
	}
	w.snapshot.invalidate()

	return ids, nil
}

// Drop is loot left behind by a removed enemy.
type Drop struct {
	Loot model.Loot
	At   fixed.Position
}

// Removal collects the side effects of a RemoveBatch call. They are
// dispatched after the locks are released.
type Removal struct {
	Removed    []model.ObjectID
	Effects    []Effect
	Drops      []Drop
	Attacks    []*model.Object
	Kills      int
	PlayerDied bool
}

// RemoveBatch clears the slots of ids, recycles the ids and removes them from
// the grid using their pre-removal positions. Empty or out-of-range ids are
// skipped.
func (w *World) RemoveBatch(ids []model.ObjectID) Removal {
	return w.removeBatch(ids, nil)
}

// removeBatch removes ids, or the slots of expect when ids is nil. A slot
// named through expect is only cleared while it still holds that object.
func (w *World) removeBatch(ids []model.ObjectID, expect []*model.Object) Removal {
	var r Removal
	n := len(ids)
	if ids == nil {
		n = len(expect)
	}
	if n == 0 {
		return r
	}

	w.objectsMu.Lock()
	defer w.objectsMu.Unlock()
	w.positionsMu.Lock()
	defer w.positionsMu.Unlock()
	w.freeMu.Lock()
	defer w.freeMu.Unlock()
	w.gridMu.Lock()
	defer w.gridMu.Unlock()

	for i := range n {
		var id model.ObjectID
		if ids != nil {
			id = ids[i]
		} else {
			id = expect[i].ID
		}
		if id < 0 || int(id) >= len(w.objects) || w.objects[id] == nil {
			continue
		}
		obj := w.objects[id]
		if ids == nil && expect[i] != obj {
			continue
		}
		pos := w.positions[id]

		w.objects[id] = nil
		w.positions[id] = fixed.Invalid
		w.free = append(w.free, id)
		w.grid.Remove(id, pos)
		r.Removed = append(r.Removed, id)

		if obj.OnDeath.Sound != "" || obj.OnDeath.Animation != "" {
			r.Effects = append(r.Effects, Effect{Sound: obj.OnDeath.Sound, Animation: obj.OnDeath.Animation, At: pos})
		}

		switch obj.Kind {
		case model.KindEnemy:
			if !obj.Alive() {
				r.Kills++
			}
			if obj.Loot != nil {
				r.Drops = append(r.Drops, Drop{Loot: *obj.Loot, At: pos})
			}
		case model.KindPlayer:
			r.PlayerDied = true
		case model.KindAttack:
			r.Attacks = append(r.Attacks, obj)
		}
	}
	if len(r.Removed) > 0 {
		w.snapshot.invalidate()
	}

	return r
}

// Despawn removes ids and then dispatches the collected side effects:
// attacks go back to their pools, enemy loot becomes collectables at the
// vacated positions, player death flips the state flags and effects are sent
// to the effect sink.
func (w *World) Despawn(ids []model.ObjectID) (Removal, error) {
	return w.settle(w.RemoveBatch(ids))
}

// DespawnObjects is Despawn for callers holding object pointers collected
// under an earlier lock: a slot recycled since then is left alone.
func (w *World) DespawnObjects(objs []*model.Object) (Removal, error) {
	return w.settle(w.removeBatch(nil, objs))
}

func (w *World) settle(r Removal) (Removal, error) {
	for _, a := range r.Attacks {
		w.pools.Checkin(a)
	}

	if len(r.Drops) > 0 {
		objs := make([]*model.Object, len(r.Drops))
		at := make([]fixed.Position, len(r.Drops))
		for i, d := range r.Drops {
			objs[i] = model.NewCollectable(d.Loot)
			at[i] = d.At
		}
		if _, err := w.InsertBatch(objs, at); err != nil {
			return r, fmt.Errorf("spawning loot drops: %w", err)
		}
	}

	if r.Kills > 0 {
		w.UpdateProgress(func(p *model.Progress) {
			p.Kills += int64(r.Kills)
		})
	}

	if r.PlayerDied {
		w.stateMu.Lock()
		w.state.PlayerDead = true
		w.state.Active = false
		w.state.PlayerID = model.Unassigned
		w.stateMu.Unlock()
		slog.Info("player died")
	}

	for _, e := range r.Effects {
		e.dispatch(w.effects)
	}

	return r, nil
}

// SpawnPlayer inserts the player built from the saved upgrades at p, records
// its id in the state flags and snaps the camera onto it.
func (w *World) SpawnPlayer(p fixed.Position) (model.ObjectID, error) {
	player := model.NewPlayer(w.Progress().Upgrades)
	ids, err := w.InsertBatch([]*model.Object{player}, []fixed.Position{p})
	if err != nil {
		return model.Unassigned, fmt.Errorf("spawning player: %w", err)
	}

	w.cameraMu.Lock()
	w.camera.Snap(p)
	w.cameraMu.Unlock()
	w.snapshot.invalidate()

	w.stateMu.Lock()
	w.state.PlayerID = ids[0]
	w.state.PlayerDead = false
	w.state.Active = true
	w.stateMu.Unlock()

	slog.Info("player spawned", "id", ids[0], "at", p)
	return ids[0], nil
}
