package game

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/idlecore/internal/fixed"
	"github.com/udisondev/idlecore/internal/model"
	"github.com/udisondev/idlecore/internal/world"
)

func newTestWorld(t *testing.T, opts ...world.Option) *world.World {
	t.Helper()
	cfg := world.DefaultConfig()
	cfg.Workers = 2
	cfg.ReserveSlots = 64
	cfg.Camera.Smoothing = 0
	cfg.PoolSizes = map[model.AttackKind]int{
		model.AttackSlash: 16,
		model.AttackBolt:  16,
		model.AttackNova:  16,
	}
	return world.New(cfg, opts...)
}

func insert(t *testing.T, w *world.World, obj *model.Object, at fixed.Position) model.ObjectID {
	t.Helper()
	ids, err := w.InsertBatch([]*model.Object{obj}, []fixed.Position{at})
	require.NoError(t, err)
	return ids[0]
}

func position(t *testing.T, w *world.World, id model.ObjectID) fixed.Position {
	t.Helper()
	p, ok := w.Position(id)
	require.True(t, ok, "object %d is gone", id)
	return p
}

type soundSink struct {
	mu     sync.Mutex
	sounds []string
}

func (s *soundSink) PlaySound(name string, _ fixed.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sounds = append(s.sounds, name)
}

func (s *soundSink) PlayAnimation(string, fixed.Position) {}
