package world

import (
	"context"
	"fmt"
	"time"

	"github.com/udisondev/idlecore/internal/collision"
	"github.com/udisondev/idlecore/internal/fixed"
	"github.com/udisondev/idlecore/internal/model"
	"github.com/udisondev/idlecore/internal/spatial"
)

// ResolveCollisions runs the parallel collision pass over moves, reverting
// candidates that would overlap. Objects, positions and grid stay read-locked
// for the whole pass, so the workers see one consistent tick.
func (w *World) ResolveCollisions(ctx context.Context, moves []collision.Move) (collision.Stats, error) {
	var (
		stats collision.Stats
		err   error
	)
	w.View(func(tx *Tx) {
		stats, err = w.resolver.Resolve(ctx, moves, tx)
	})
	if err != nil {
		return stats, fmt.Errorf("resolving collisions: %w", err)
	}
	return stats, nil
}

// ApplyResult reports what ApplyMoves committed.
type ApplyResult struct {
	Applied int
	Stale   int
}

// ApplyMoves commits resolved moves in one exclusive batch on positions and
// grid, so readers see either the previous tick or this one.
//
// A move is applied only if its slot still records Old; moves for freed or
// recycled slots, or for objects moved by someone else since the move list
// was built, are counted as stale and dropped. Objects missing from moves keep
// their position. If the player moved, the camera retargets and eases by dt.
func (w *World) ApplyMoves(moves []collision.Move, dt time.Duration) ApplyResult {
	playerID := w.State().PlayerID

	var res ApplyResult
	var playerPos fixed.Position
	playerMoved := false

	w.positionsMu.Lock()
	w.gridMu.Lock()

	updates := make([]spatial.Update, 0, len(moves))
	for _, m := range moves {
		if m.ID < 0 || int(m.ID) >= len(w.positions) {
			res.Stale++
			continue
		}
		cur := w.positions[m.ID]
		if !cur.IsValid() || cur != m.Old {
			res.Stale++
			continue
		}
		w.positions[m.ID] = m.New
		updates = append(updates, spatial.Update{ID: m.ID, Old: cur, New: m.New})
		res.Applied++

		if m.ID == playerID {
			playerPos = m.New
			playerMoved = true
		}
	}
	w.grid.UpdateBatch(updates)

	if playerMoved {
		w.cameraMu.Lock()
		w.camera.Follow(playerPos)
		w.camera.Advance(dt)
		w.cameraMu.Unlock()
	}

	w.gridMu.Unlock()
	w.positionsMu.Unlock()

	w.tick.Add(1)
	w.snapshot.invalidate()
	return res
}

// Step is the movement layer's write path for one tick: resolve collisions
// on moves, then commit them.
func (w *World) Step(ctx context.Context, moves []collision.Move, dt time.Duration) (ApplyResult, error) {
	if _, err := w.ResolveCollisions(ctx, moves); err != nil {
		return ApplyResult{}, err
	}
	return w.ApplyMoves(moves, dt), nil
}

// Teleport places a live object at p outside the movement batch (spawn
// placement, knockback). Returns false for stale ids.
func (w *World) Teleport(id model.ObjectID, p fixed.Position) bool {
	if !p.IsValid() {
		return false
	}
	w.positionsMu.Lock()
	defer w.positionsMu.Unlock()
	w.gridMu.Lock()
	defer w.gridMu.Unlock()

	if id < 0 || int(id) >= len(w.positions) || !w.positions[id].IsValid() {
		return false
	}
	w.grid.UpdatePosition(id, w.positions[id], p)
	w.positions[id] = p
	w.snapshot.invalidate()
	return true
}
