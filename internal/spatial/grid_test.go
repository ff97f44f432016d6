package spatial

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/idlecore/internal/fixed"
	"github.com/udisondev/idlecore/internal/model"
)

func TestCellOf(t *testing.T) {
	g := New(20 * fixed.Scale)

	tests := []struct {
		name string
		pos  fixed.Position
		want Cell
	}{
		{"origin", fixed.FromInt(0, 0), Cell{0, 0}},
		{"inside first cell", fixed.FromInt(19, 5), Cell{0, 0}},
		{"boundary", fixed.FromInt(20, 40), Cell{1, 2}},
		{"negative floors down", fixed.FromFloat(-0.5, -20), Cell{-1, -1}},
		{"negative beyond", fixed.FromInt(-21, -41), Cell{-2, -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.CellOf(tt.pos))
		})
	}
}

func TestNew_NonPositiveCellSize(t *testing.T) {
	assert.Equal(t, int32(DefaultCellSize), New(0).CellSize())
	assert.Equal(t, int32(DefaultCellSize), New(-5).CellSize())
}

// Cell size 20: ids 1 and 2 share cell (0,0); moving 2 to (100,100) splits them.
func TestGrid_Scenario(t *testing.T) {
	g := New(20 * fixed.Scale)
	g.Insert(1, fixed.FromInt(5, 5))
	g.Insert(2, fixed.FromInt(15, 15))

	assert.ElementsMatch(t, []model.ObjectID{1, 2}, g.QueryNearby(fixed.FromInt(5, 5)))

	g.UpdatePosition(2, fixed.FromInt(15, 15), fixed.FromInt(100, 100))

	assert.ElementsMatch(t, []model.ObjectID{1}, g.QueryNearby(fixed.FromInt(5, 5)))
	assert.ElementsMatch(t, []model.ObjectID{2}, g.QueryNearby(fixed.FromInt(100, 100)))
	assert.Equal(t, []model.ObjectID{1}, g.Bucket(Cell{0, 0}))
	assert.Equal(t, []model.ObjectID{2}, g.Bucket(Cell{5, 5}))
	assert.Equal(t, 2, g.Len())
}

func TestGrid_QueryNearby_Neighbourhood(t *testing.T) {
	g := New(10 * fixed.Scale)

	// one id in each cell of a 5×5 block centred on (0,0)
	id := model.ObjectID(0)
	want := []model.ObjectID{}
	for cy := -2; cy <= 2; cy++ {
		for cx := -2; cx <= 2; cx++ {
			g.Insert(id, fixed.FromInt(cx*10+5, cy*10+5))
			if cx >= -1 && cx <= 1 && cy >= -1 && cy <= 1 {
				want = append(want, id)
			}
			id++
		}
	}

	got := g.QueryNearby(fixed.FromInt(5, 5))
	assert.ElementsMatch(t, want, got)
	assert.Len(t, got, 9)
}

func TestGrid_RemovePrunesEmptyBucket(t *testing.T) {
	g := New(20 * fixed.Scale)
	p := fixed.FromInt(1, 1)

	g.Insert(7, p)
	g.Insert(8, p)
	require.Equal(t, 1, g.Len())

	assert.True(t, g.Remove(7, p))
	assert.Equal(t, []model.ObjectID{8}, g.Bucket(Cell{0, 0}))

	assert.True(t, g.Remove(8, p))
	assert.Equal(t, 0, g.Len(), "empty bucket must be deleted")
	assert.Nil(t, g.Bucket(Cell{0, 0}))

	assert.False(t, g.Remove(8, p), "second remove is a no-op")
}

func TestGrid_UpdatePosition_SameCellShortCircuit(t *testing.T) {
	g := New(20 * fixed.Scale)
	g.Insert(1, fixed.FromInt(2, 2))
	g.Insert(2, fixed.FromInt(3, 3))
	g.Insert(3, fixed.FromInt(4, 4))

	before := g.Bucket(Cell{0, 0})
	require.Len(t, before, 3)

	// 1 moves inside the same cell: order and backing array must be untouched.
	g.UpdatePosition(1, fixed.FromInt(2, 2), fixed.FromInt(18, 18))

	after := g.Bucket(Cell{0, 0})
	assert.Equal(t, []model.ObjectID{1, 2, 3}, after)
	assert.Same(t, &before[0], &after[0])
}

func TestGrid_UpdateBatch(t *testing.T) {
	g := New(20 * fixed.Scale)
	g.Insert(1, fixed.FromInt(0, 0))
	g.Insert(2, fixed.FromInt(0, 0))

	g.UpdateBatch([]Update{
		{ID: 1, Old: fixed.FromInt(0, 0), New: fixed.FromInt(45, 0)},
		{ID: 2, Old: fixed.FromInt(0, 0), New: fixed.FromInt(1, 1)},
	})

	assert.Equal(t, []model.ObjectID{2}, g.Bucket(Cell{0, 0}))
	assert.Equal(t, []model.ObjectID{1}, g.Bucket(Cell{2, 0}))
}

func TestGrid_Clear(t *testing.T) {
	g := New(20 * fixed.Scale)
	for i := range 50 {
		g.Insert(model.ObjectID(i), fixed.FromInt(i*7, -i*3))
	}
	require.Equal(t, 50, g.Count())

	g.Clear()
	assert.Equal(t, 0, g.Len())
	assert.Empty(t, g.QueryNearby(fixed.FromInt(0, 0)))
}

// Random insert/remove/update sequences keep every id in exactly the bucket
// matching its recorded position.
func TestGrid_Consistency(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	g := New(16 * fixed.Scale)
	positions := map[model.ObjectID]fixed.Position{}

	randPos := func() fixed.Position {
		return fixed.FromFloat(rng.Float64()*400-200, rng.Float64()*400-200)
	}

	next := model.ObjectID(0)
	for range 5000 {
		switch op := rng.IntN(3); {
		case op == 0 || len(positions) == 0:
			p := randPos()
			g.Insert(next, p)
			positions[next] = p
			next++
		case op == 1:
			for id, p := range positions {
				require.True(t, g.Remove(id, p))
				delete(positions, id)
				break
			}
		default:
			for id, p := range positions {
				np := p.Add(fixed.FromFloat(rng.Float64()*40-20, rng.Float64()*40-20))
				g.UpdatePosition(id, p, np)
				positions[id] = np
				break
			}
		}
	}

	assert.Equal(t, len(positions), g.Count())
	seen := map[model.ObjectID]Cell{}
	g.Cells(func(c Cell, ids []model.ObjectID) bool {
		assert.NotEmpty(t, ids)
		for _, id := range ids {
			_, dup := seen[id]
			assert.False(t, dup, "id %d present in two buckets", id)
			seen[id] = c
		}
		return true
	})
	for id, p := range positions {
		assert.Equal(t, g.CellOf(p), seen[id], "id %d in wrong bucket", id)
	}
}

func BenchmarkGrid_QueryNearbyBuf(b *testing.B) {
	rng := rand.New(rand.NewPCG(3, 4))
	g := New(8 * fixed.Scale)
	for i := range 10000 {
		g.Insert(model.ObjectID(i), fixed.FromFloat(rng.Float64()*1000, rng.Float64()*1000))
	}
	buf := make([]model.ObjectID, 0, 128)
	p := fixed.FromInt(500, 500)

	b.ResetTimer()
	b.ReportAllocs()

	for range b.N {
		buf = g.QueryNearbyBuf(p, buf[:0])
	}
}

func BenchmarkGrid_UpdatePosition_SameCell(b *testing.B) {
	g := New(8 * fixed.Scale)
	g.Insert(1, fixed.FromInt(1, 1))
	old, moved := fixed.FromInt(1, 1), fixed.FromInt(2, 2)

	b.ResetTimer()
	b.ReportAllocs()

	for range b.N {
		g.UpdatePosition(1, old, moved)
	}
}
