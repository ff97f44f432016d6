package combat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/idlecore/internal/fixed"
	"github.com/udisondev/idlecore/internal/model"
	"github.com/udisondev/idlecore/internal/world"
)

func newTestWorld(t *testing.T, poolSize int) *world.World {
	t.Helper()
	cfg := world.DefaultConfig()
	cfg.Workers = 2
	cfg.ReserveSlots = 64
	cfg.PoolSizes = map[model.AttackKind]int{
		model.AttackSlash: poolSize,
		model.AttackBolt:  poolSize,
		model.AttackNova:  poolSize,
	}
	return world.New(cfg)
}

func insert(t *testing.T, w *world.World, obj *model.Object, at fixed.Position) model.ObjectID {
	t.Helper()
	ids, err := w.InsertBatch([]*model.Object{obj}, []fixed.Position{at})
	require.NoError(t, err)
	return ids[0]
}

func health(t *testing.T, w *world.World, id model.ObjectID) int32 {
	t.Helper()
	var hp int32
	w.View(func(tx *world.Tx) {
		obj, ok := tx.Object(id)
		require.True(t, ok, "object %d is gone", id)
		hp = obj.Health.Current
	})
	return hp
}

func countKind(w *world.World, kind model.Kind) int {
	n := 0
	w.View(func(tx *world.Tx) {
		for _, o := range tx.Objects {
			if o != nil && o.Kind == kind {
				n++
			}
		}
	})
	return n
}

func TestManager_SlashKillsEnemy(t *testing.T) {
	w := newTestWorld(t, 8)
	_, err := w.SpawnPlayer(fixed.Zero)
	require.NoError(t, err)
	enemy := insert(t, w, model.NewEnemy(model.EnemyGrunt), fixed.FromInt(2, 0))

	m := NewManager(Config{PlayerAttacks: []model.AttackKind{model.AttackSlash}})
	dt := 50 * time.Millisecond

	res, err := m.Tick(w, dt)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Fired)
	assert.Empty(t, res.Hits, "a new attack hits from the next tick")

	res, err = m.Tick(w, dt)
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, enemy, res.Hits[0].Target)
	assert.Equal(t, int32(12), res.Hits[0].Damage)
	assert.False(t, res.Hits[0].Killed)
	assert.Equal(t, model.EnemyGrunt.Health-12, health(t, w, enemy))

	res, err = m.Tick(w, dt)
	require.NoError(t, err)
	assert.Empty(t, res.Hits, "an attack hits each target once")

	var killed bool
	for range 20 {
		res, err = m.Tick(w, dt)
		require.NoError(t, err)
		for _, h := range res.Hits {
			killed = killed || h.Killed
		}
	}
	require.True(t, killed)

	_, ok := w.Position(enemy)
	assert.False(t, ok, "dead enemy is despawned")
	assert.Equal(t, int64(1), w.Progress().Kills)
	assert.Equal(t, 1, countKind(w, model.KindCollectable), "loot dropped")
	assert.Zero(t, countKind(w, model.KindAttack), "expired slashes are despawned")
	assert.Equal(t, 8, w.Pools().Available(model.AttackSlash), "slashes went back to the pool")
}

func TestManager_NoTargetNoFire(t *testing.T) {
	w := newTestWorld(t, 8)
	_, err := w.SpawnPlayer(fixed.Zero)
	require.NoError(t, err)
	insert(t, w, model.NewEnemy(model.EnemyGrunt), fixed.FromInt(100, 0))

	m := NewManager(DefaultConfig())
	res, err := m.Tick(w, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Zero(t, res.Fired)
}

func TestManager_HostileAttacksHitOnlyPlayer(t *testing.T) {
	w := newTestWorld(t, 8)
	player, err := w.SpawnPlayer(fixed.Zero)
	require.NoError(t, err)
	a := insert(t, w, model.NewEnemy(model.EnemyGrunt), fixed.FromInt(2, 0))
	b := insert(t, w, model.NewEnemy(model.EnemyGrunt), fixed.FromInt(2, 2))

	m := NewManager(Config{EnemyAttack: model.AttackSlash})
	dt := 16 * time.Millisecond

	res, err := m.Tick(w, dt)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Fired)

	res, err = m.Tick(w, dt)
	require.NoError(t, err)
	require.Len(t, res.Hits, 2)
	for _, h := range res.Hits {
		assert.Equal(t, player, h.Target)
	}
	assert.Equal(t, int32(model.PlayerHealth-24), health(t, w, player))
	assert.Equal(t, model.EnemyGrunt.Health, health(t, w, a))
	assert.Equal(t, model.EnemyGrunt.Health, health(t, w, b))
}

func TestManager_PlayerDeath(t *testing.T) {
	w := newTestWorld(t, 8)
	player, err := w.SpawnPlayer(fixed.Zero)
	require.NoError(t, err)
	w.Update(func(tx *world.Tx) {
		obj, _ := tx.Object(player)
		obj.Health.Current = 5
	})
	insert(t, w, model.NewEnemy(model.EnemyGrunt), fixed.FromInt(2, 0))

	m := NewManager(Config{EnemyAttack: model.AttackSlash})
	for range 2 {
		_, err := m.Tick(w, 16*time.Millisecond)
		require.NoError(t, err)
	}

	st := w.State()
	assert.True(t, st.PlayerDead)
	assert.False(t, st.Active)
	_, ok := w.Position(player)
	assert.False(t, ok)
}

func TestManager_MightBonus(t *testing.T) {
	w := newTestWorld(t, 8)
	w.UpdateProgress(func(p *model.Progress) { p.SetUpgrade(model.UpgradeMight, 2) })
	_, err := w.SpawnPlayer(fixed.Zero)
	require.NoError(t, err)
	insert(t, w, model.NewEnemy(model.EnemyBrute), fixed.FromInt(0, 2))

	m := NewManager(Config{PlayerAttacks: []model.AttackKind{model.AttackSlash}, MightBonus: 3})
	_, err = m.Tick(w, 16*time.Millisecond)
	require.NoError(t, err)
	res, err := m.Tick(w, 16*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, int32(12+6), res.Hits[0].Damage)
}

func TestManager_BoltBurst(t *testing.T) {
	w := newTestWorld(t, 8)
	_, err := w.SpawnPlayer(fixed.Zero)
	require.NoError(t, err)
	insert(t, w, model.NewEnemy(model.EnemyGrunt), fixed.FromInt(30, 0))

	m := NewManager(Config{PlayerAttacks: []model.AttackKind{model.AttackBolt}})
	dt := 100 * time.Millisecond

	res, err := m.Tick(w, dt)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Fired)
	assert.Equal(t, 2, m.Pending())

	res, err = m.Tick(w, dt)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Fired)
	assert.Equal(t, 1, m.Pending())

	res, err = m.Tick(w, dt)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Fired)
	assert.Zero(t, m.Pending())
	assert.Equal(t, 3, countKind(w, model.KindAttack))
}

func TestManager_BurstDroppedWithOwner(t *testing.T) {
	w := newTestWorld(t, 8)
	player, err := w.SpawnPlayer(fixed.Zero)
	require.NoError(t, err)
	insert(t, w, model.NewEnemy(model.EnemyGrunt), fixed.FromInt(30, 0))

	m := NewManager(Config{PlayerAttacks: []model.AttackKind{model.AttackBolt}})
	_, err = m.Tick(w, 100*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 2, m.Pending())

	w.RemoveBatch([]model.ObjectID{player})

	res, err := m.Tick(w, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Zero(t, res.Fired)
	assert.Equal(t, 1, m.Pending())
}

func TestManager_NovaFansOut(t *testing.T) {
	w := newTestWorld(t, 16)
	_, err := w.SpawnPlayer(fixed.Zero)
	require.NoError(t, err)
	insert(t, w, model.NewEnemy(model.EnemyGrunt), fixed.FromInt(6, 0))

	m := NewManager(Config{PlayerAttacks: []model.AttackKind{model.AttackNova}})
	res, err := m.Tick(w, 16*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 8, res.Fired)

	dirs := make(map[fixed.Position]struct{})
	w.View(func(tx *world.Tx) {
		for _, o := range tx.Objects {
			if o == nil || o.Kind != model.KindAttack {
				continue
			}
			dirs[o.Attack.Direction] = struct{}{}
			x, y := o.Attack.Direction.ToFloat()
			assert.InDelta(t, 1, x*x+y*y, 0.01, "directions are unit vectors")
		}
	})
	assert.Len(t, dirs, 8)
}

func TestManager_PoolExhaustion(t *testing.T) {
	w := newTestWorld(t, 4)
	_, err := w.SpawnPlayer(fixed.Zero)
	require.NoError(t, err)
	insert(t, w, model.NewEnemy(model.EnemyGrunt), fixed.FromInt(6, 0))

	m := NewManager(Config{PlayerAttacks: []model.AttackKind{model.AttackNova}})
	res, err := m.Tick(w, 16*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Fired)
	assert.Equal(t, 4, res.Dropped)
	assert.Equal(t, int64(4), w.Pools().Dropped(model.AttackNova))
}

func TestOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		a    model.AttackStats
		want bool
	}{
		{"stationary", model.AttackStats{Range: fixed.Scale, Elapsed: time.Hour}, false},
		{"short flight", model.AttackStats{Speed: 10 * fixed.Scale, Range: 5 * fixed.Scale, Elapsed: 400 * time.Millisecond}, false},
		{"past range", model.AttackStats{Speed: 10 * fixed.Scale, Range: 5 * fixed.Scale, Elapsed: 500 * time.Millisecond}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, outOfRange(&tt.a))
		})
	}
}
