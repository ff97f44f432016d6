package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/idlecore/internal/fixed"
	"github.com/udisondev/idlecore/internal/model"
	"github.com/udisondev/idlecore/internal/world"
)

func TestPickup_Tick(t *testing.T) {
	sink := &soundSink{}
	w := newTestWorld(t, world.WithEffectSink(sink))
	_, err := w.SpawnPlayer(fixed.Zero)
	require.NoError(t, err)

	near := insert(t, w, model.NewCollectable(model.Loot{Gold: 3, Experience: 1}), fixed.FromInt(2, 1))
	far := insert(t, w, model.NewCollectable(model.Loot{Gold: 50}), fixed.FromInt(30, 0))
	enemy := insert(t, w, model.NewEnemy(model.EnemyGrunt), fixed.FromInt(1, -2))

	var p Pickup
	res, err := p.Tick(w)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Collected)
	assert.Equal(t, model.Loot{Gold: 3, Experience: 1}, res.Loot)

	_, ok := w.Position(near)
	assert.False(t, ok)
	_, ok = w.Position(far)
	assert.True(t, ok)
	_, ok = w.Position(enemy)
	assert.True(t, ok, "only collectables are picked up")

	prog := w.Progress()
	assert.Equal(t, int64(3), prog.Gold)
	assert.Equal(t, int64(1), prog.Experience)
	assert.Contains(t, sink.sounds, "pickup")

	res, err = p.Tick(w)
	require.NoError(t, err)
	assert.Zero(t, res.Collected)
	assert.Equal(t, int64(3), w.Progress().Gold, "loot is credited once")
}

func TestPickup_LargeRadiusScansAll(t *testing.T) {
	w := newTestWorld(t)
	w.UpdateProgress(func(p *model.Progress) {
		p.SetUpgrade(model.UpgradeMagnet, 12) // radius 16 units, two cells
	})
	_, err := w.SpawnPlayer(fixed.Zero)
	require.NoError(t, err)

	insert(t, w, model.NewCollectable(model.Loot{Gold: 1}), fixed.FromInt(15, 0))
	insert(t, w, model.NewCollectable(model.Loot{Gold: 1}), fixed.FromInt(0, -14))
	insert(t, w, model.NewCollectable(model.Loot{Gold: 1}), fixed.FromInt(17, 0))

	var p Pickup
	res, err := p.Tick(w)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Collected)
	assert.Equal(t, int64(2), w.Progress().Gold)
}

func TestPickup_NoPlayer(t *testing.T) {
	w := newTestWorld(t)
	insert(t, w, model.NewCollectable(model.Loot{Gold: 1}), fixed.Zero)

	var p Pickup
	res, err := p.Tick(w)
	require.NoError(t, err)
	assert.Zero(t, res.Collected)
	assert.Equal(t, 1, w.Count())
}
