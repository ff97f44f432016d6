// Package collision implements the per-tick parallel collision pass.
//
// The pass takes proposed moves and reverts every move whose candidate
// position would overlap another blocking object. It only reads shared state;
// applying the resulting moves is the caller's job.
package collision

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/idlecore/internal/fixed"
	"github.com/udisondev/idlecore/internal/model"
)

// DefaultSequentialThreshold is the move count below which the pass runs on
// the calling goroutine. Below it goroutine fan-out costs more than it saves.
const DefaultSequentialThreshold = 256

// Move is a proposed position change for one object.
type Move struct {
	ID  model.ObjectID
	Old fixed.Position
	New fixed.Position
}

// Reverted reports whether the move ends where it started.
func (m Move) Reverted() bool {
	return m.New == m.Old
}

// View is read-only access to the world for the duration of a pass.
// Implementations must be safe for concurrent readers.
type View interface {
	// Shape returns the shape and kind of id, false if the slot is empty.
	Shape(id model.ObjectID) (model.Shape, model.Kind, bool)
	// Position returns the recorded position of id, false if the slot is empty.
	Position(id model.ObjectID) (fixed.Position, bool)
	// Nearby appends ids in the grid neighbourhood of p to buf.
	Nearby(p fixed.Position, buf []model.ObjectID) []model.ObjectID
}

// Resolver runs the collision pass. The zero value uses NumCPU workers.
type Resolver struct {
	Workers             int
	SequentialThreshold int
}

// NewResolver creates a resolver with the given worker count (<=0 means NumCPU).
func NewResolver(workers, sequentialThreshold int) *Resolver {
	return &Resolver{Workers: workers, SequentialThreshold: sequentialThreshold}
}

// Stats summarizes one pass.
type Stats struct {
	Moves    int
	Reverted int
	Skipped  int
	Chunks   int
}

// Resolve mutates moves in place: a candidate that overlaps another blocking
// object is reset to its old position, others keep the proposed one.
//
// A candidate is tested against each neighbour's recorded position and, if the
// neighbour moves this tick too, against the neighbour's candidate. The first
// overlap wins; there is no push-back response. Decisions only depend on the
// input, so the result does not depend on the worker count.
//
// Ids missing from the view (despawned concurrently) are skipped.
func (r *Resolver) Resolve(ctx context.Context, moves []Move, view View) (Stats, error) {
	stats := Stats{Moves: len(moves)}
	if len(moves) == 0 {
		return stats, nil
	}

	// Immutable candidate index; workers only write to their own chunk.
	proposed := make(map[model.ObjectID]fixed.Position, len(moves))
	for _, m := range moves {
		proposed[m.ID] = m.New
	}

	var reverted, skipped atomic.Int32
	scan := func(chunk []Move) {
		buf := make([]model.ObjectID, 0, 32)
		for i := range chunk {
			switch resolveOne(&chunk[i], view, proposed, buf[:0]) {
			case outcomeReverted:
				reverted.Add(1)
			case outcomeSkipped:
				skipped.Add(1)
			}
		}
	}

	threshold := r.SequentialThreshold
	if threshold <= 0 {
		threshold = DefaultSequentialThreshold
	}

	if len(moves) < threshold {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		scan(moves)
		stats.Chunks = 1
	} else {
		chunks, err := r.resolveParallel(ctx, moves, scan)
		stats.Chunks = chunks
		if err != nil {
			return stats, err
		}
	}

	stats.Reverted = int(reverted.Load())
	stats.Skipped = int(skipped.Load())

	slog.Debug("collision pass completed",
		"moves", stats.Moves,
		"reverted", stats.Reverted,
		"skipped", stats.Skipped,
		"chunks", stats.Chunks)

	return stats, nil
}

// resolveParallel splits moves into contiguous chunks, one per worker, and
// blocks until all of them are scanned.
func (r *Resolver) resolveParallel(ctx context.Context, moves []Move, scan func([]Move)) (int, error) {
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(moves) {
		workers = len(moves)
	}
	chunkSize := max(len(moves)/workers, 1)

	g, gctx := errgroup.WithContext(ctx)
	for i := range workers {
		start := i * chunkSize
		end := start + chunkSize
		// Last worker takes the division remainder.
		if i == workers-1 {
			end = len(moves)
		}
		chunk := moves[start:end]

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scan(chunk)
			return nil
		})
	}

	return workers, g.Wait()
}

type outcome uint8

const (
	outcomeMoved outcome = iota
	outcomeReverted
	outcomeSkipped
)

func resolveOne(m *Move, view View, proposed map[model.ObjectID]fixed.Position, buf []model.ObjectID) outcome {
	if m.New == m.Old {
		return outcomeMoved
	}
	shape, kind, ok := view.Shape(m.ID)
	if !ok {
		return outcomeSkipped
	}
	if !kind.Blocking() {
		return outcomeMoved
	}

	box := shape.Bounds(m.New)
	for _, other := range view.Nearby(m.New, buf) {
		if other == m.ID {
			continue
		}
		otherShape, otherKind, ok := view.Shape(other)
		if !ok || !otherKind.Blocking() {
			continue
		}
		if pos, ok := view.Position(other); ok && pos.IsValid() && box.Overlaps(otherShape.Bounds(pos)) {
			m.New = m.Old
			return outcomeReverted
		}
		if cand, ok := proposed[other]; ok && box.Overlaps(otherShape.Bounds(cand)) {
			m.New = m.Old
			return outcomeReverted
		}
	}
	return outcomeMoved
}
