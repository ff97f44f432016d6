package world

import (
	"sync/atomic"

	"github.com/udisondev/idlecore/internal/fixed"
	"github.com/udisondev/idlecore/internal/model"
)

// ObjectView is the renderer-facing copy of one object.
type ObjectView struct {
	ID        model.ObjectID
	Kind      model.Kind
	Shape     model.Shape
	Health    model.Health
	Animation model.AnimationState
	Parent    model.ObjectID
}

// Snapshot is a consistent copy of one tick for rendering.
// Objects and Positions are index-aligned; a nil entry marks a free slot.
type Snapshot struct {
	Tick      uint64
	Objects   []*ObjectView
	Positions []fixed.Position
	Camera    Camera
}

// Live calls fn for every occupied slot.
func (s *Snapshot) Live(fn func(o *ObjectView, p fixed.Position)) {
	for i, o := range s.Objects {
		if o != nil {
			fn(o, s.Positions[i])
		}
	}
}

// snapshotCache keeps the last built snapshot until the world changes.
// Rebuild is lazy: readers on an unchanged world share one immutable copy.
type snapshotCache struct {
	cache atomic.Pointer[Snapshot]
	dirty atomic.Bool
}

func (c *snapshotCache) invalidate() {
	c.dirty.Store(true)
}

// Snapshot returns a consistent copy of objects, positions and camera.
// The returned value is shared between callers - DO NOT modify.
func (w *World) Snapshot() *Snapshot {
	// Fast path: nothing changed since the last build.
	if !w.snapshot.dirty.Load() {
		if s := w.snapshot.cache.Load(); s != nil {
			return s
		}
	}
	return w.rebuildSnapshot()
}

func (w *World) rebuildSnapshot() *Snapshot {
	w.objectsMu.RLock()
	defer w.objectsMu.RUnlock()
	w.positionsMu.RLock()
	defer w.positionsMu.RUnlock()
	w.cameraMu.RLock()
	defer w.cameraMu.RUnlock()

	// Cleared before copying: a write racing with this rebuild marks it dirty again.
	w.snapshot.dirty.Store(false)

	s := &Snapshot{
		Tick:      w.tick.Load(),
		Objects:   make([]*ObjectView, len(w.objects)),
		Positions: make([]fixed.Position, len(w.positions)),
		Camera:    w.camera,
	}
	copy(s.Positions, w.positions)

	views := make([]ObjectView, 0, len(w.objects))
	for i, obj := range w.objects {
		if obj == nil {
			continue
		}
		v := ObjectView{
			ID:     obj.ID,
			Kind:   obj.Kind,
			Shape:  obj.Shape,
			Health: obj.Health,
			Parent: obj.Parent,
		}
		if obj.Animation != nil {
			v.Animation = *obj.Animation
		}
		views = append(views, v)
		s.Objects[i] = &views[len(views)-1]
	}

	w.snapshot.cache.Store(s)
	return s
}
