// Package spatial implements the spatial hash grid used for neighbour queries.
//
// The grid buckets object ids by the cell their position falls into. A 3×3
// neighbourhood query returns every object that can overlap a shape placed at
// the query point, as long as the cell size is at least the largest object
// size plus the largest per-tick displacement.
//
// Grid is not safe for concurrent mutation; the world coordinator owns its lock.
// Concurrent readers are fine while nobody writes.
package spatial

import (
	"slices"

	"github.com/udisondev/idlecore/internal/fixed"
	"github.com/udisondev/idlecore/internal/model"
)

// DefaultCellSize is used when a non-positive cell size is requested (8 world units).
const DefaultCellSize = 8 * fixed.Scale

// Cell is a discretized grid coordinate.
type Cell struct {
	X int32
	Y int32
}

// Grid maps cells to the ids of the objects inside them.
type Grid struct {
	cellSize int32
	buckets  map[Cell][]model.ObjectID
}

// New creates an empty grid. cellSize is in raw fixed units.
func New(cellSize int32) *Grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Grid{
		cellSize: cellSize,
		buckets:  make(map[Cell][]model.ObjectID, 256),
	}
}

// CellSize returns the cell side in raw fixed units.
func (g *Grid) CellSize() int32 {
	return g.cellSize
}

// CellOf returns the cell containing p (floor division on both axes).
func (g *Grid) CellOf(p fixed.Position) Cell {
	return Cell{X: floorDiv(p.X, g.cellSize), Y: floorDiv(p.Y, g.cellSize)}
}

// Insert appends id to the bucket of p's cell.
func (g *Grid) Insert(id model.ObjectID, p fixed.Position) {
	c := g.CellOf(p)
	g.buckets[c] = append(g.buckets[c], id)
}

// Remove deletes id from the bucket of p's cell. Empty buckets are pruned.
// Returns false if id was not found there.
func (g *Grid) Remove(id model.ObjectID, p fixed.Position) bool {
	return g.removeFrom(id, g.CellOf(p))
}

func (g *Grid) removeFrom(id model.ObjectID, c Cell) bool {
	bucket, ok := g.buckets[c]
	if !ok {
		return false
	}
	i := slices.Index(bucket, id)
	if i < 0 {
		return false
	}
	bucket = slices.Delete(bucket, i, i+1)
	if len(bucket) == 0 {
		delete(g.buckets, c)
		return true
	}
	g.buckets[c] = bucket
	return true
}

// UpdatePosition moves id from old's cell to new's cell.
// Does nothing when both positions share a cell (the common sub-cell move).
func (g *Grid) UpdatePosition(id model.ObjectID, old, new fixed.Position) {
	oc, nc := g.CellOf(old), g.CellOf(new)
	if oc == nc {
		return
	}
	g.removeFrom(id, oc)
	g.buckets[nc] = append(g.buckets[nc], id)
}

// Update is one entry of a bulk grid update.
type Update struct {
	ID  model.ObjectID
	Old fixed.Position
	New fixed.Position
}

// UpdateBatch applies UpdatePosition for every entry in order.
func (g *Grid) UpdateBatch(updates []Update) {
	for _, u := range updates {
		g.UpdatePosition(u.ID, u.Old, u.New)
	}
}

// QueryNearby returns the ids in the 3×3 block of cells around p's cell.
func (g *Grid) QueryNearby(p fixed.Position) []model.ObjectID {
	return g.QueryNearbyBuf(p, nil)
}

// QueryNearbyBuf appends the 3×3 neighbourhood of p to buf and returns it.
// The centre cell comes first, then rows top to bottom.
func (g *Grid) QueryNearbyBuf(p fixed.Position, buf []model.ObjectID) []model.ObjectID {
	c := g.CellOf(p)
	buf = append(buf, g.buckets[c]...)
	for dy := int32(-1); dy <= 1; dy++ {
		for dx := int32(-1); dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			buf = append(buf, g.buckets[Cell{X: c.X + dx, Y: c.Y + dy}]...)
		}
	}
	return buf
}

// Bucket returns the ids stored in cell c.
// The returned slice is owned by the grid - DO NOT modify.
func (g *Grid) Bucket(c Cell) []model.ObjectID {
	return g.buckets[c]
}

// Cells calls fn for every non-empty bucket until fn returns false.
func (g *Grid) Cells(fn func(Cell, []model.ObjectID) bool) {
	for c, ids := range g.buckets {
		if !fn(c, ids) {
			return
		}
	}
}

// Len returns the number of non-empty buckets.
func (g *Grid) Len() int {
	return len(g.buckets)
}

// Count returns the total number of ids stored (O(buckets)).
func (g *Grid) Count() int {
	n := 0
	for _, ids := range g.buckets {
		n += len(ids)
	}
	return n
}

// Clear drops all buckets.
func (g *Grid) Clear() {
	clear(g.buckets)
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
