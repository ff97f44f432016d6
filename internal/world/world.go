// Package world is the concurrent world state coordinator.
//
// World owns the object slot table, the index-aligned position table, the
// free-index stack, the spatial grid, the camera, the game state flags and the
// save-worthy progress, each behind its own RW lock. Every accessor takes only
// the locks it needs, always in this order:
//
//	objects -> positions -> free -> grid -> camera -> state -> progress
//
// Attack pools carry their own leaf lock. Lock waits are bounded by the
// watchdog set with ConfigureLocks.
package world

import (
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/sasha-s/go-deadlock"

	"github.com/udisondev/idlecore/internal/collision"
	"github.com/udisondev/idlecore/internal/fixed"
	"github.com/udisondev/idlecore/internal/model"
	"github.com/udisondev/idlecore/internal/spatial"
)

// Config configures a World.
type Config struct {
	CellSize            int32 // raw fixed units
	Workers             int   // collision workers, <=0 means NumCPU
	SequentialThreshold int
	ReserveSlots        int
	Camera              CameraConfig
	PoolSizes           map[model.AttackKind]int
}

// DefaultConfig returns a Config with 8-unit cells and default pools.
func DefaultConfig() Config {
	return Config{
		CellSize:            spatial.DefaultCellSize,
		Workers:             runtime.NumCPU(),
		SequentialThreshold: collision.DefaultSequentialThreshold,
		ReserveSlots:        4096,
		Camera:              DefaultCameraConfig(),
		PoolSizes:           DefaultPoolSizes(),
	}
}

// State is the typed set of game flags shared between threads.
type State struct {
	PlayerID   model.ObjectID
	PlayerDead bool
	Tab        model.Tab
	Active     bool
}

// World is the shared simulation state. Create with New; safe for concurrent use.
type World struct {
	objectsMu deadlock.RWMutex
	objects   []*model.Object

	positionsMu deadlock.RWMutex
	positions   []fixed.Position

	freeMu deadlock.RWMutex
	free   []model.ObjectID

	gridMu deadlock.RWMutex
	grid   *spatial.Grid

	cameraMu deadlock.RWMutex
	camera   Camera

	stateMu deadlock.RWMutex
	state   State

	progressMu deadlock.RWMutex
	progress   model.Progress

	pools    *AttackPools
	resolver *collision.Resolver
	effects  EffectSink

	tick     atomic.Uint64
	snapshot snapshotCache
}

// Option customizes a World.
type Option func(*World)

// WithEffectSink routes sounds and animations to sink.
func WithEffectSink(sink EffectSink) Option {
	return func(w *World) {
		if sink != nil {
			w.effects = sink
		}
	}
}

// New creates an empty world.
func New(cfg Config, opts ...Option) *World {
	w := &World{
		grid:     spatial.New(cfg.CellSize),
		camera:   NewCamera(cfg.Camera),
		state:    State{PlayerID: model.Unassigned},
		pools:    NewAttackPools(cfg.PoolSizes),
		resolver: collision.NewResolver(cfg.Workers, cfg.SequentialThreshold),
		effects:  logSink{},
	}
	for _, opt := range opts {
		opt(w)
	}
	if cfg.ReserveSlots > 0 {
		w.Reserve(cfg.ReserveSlots)
	}

	slog.Info("world initialized",
		"cell_size", w.grid.CellSize(),
		"workers", cfg.Workers,
		"reserved", cfg.ReserveSlots)
	return w
}

// Pools returns the attack pools.
func (w *World) Pools() *AttackPools {
	return w.pools
}

// Tick returns the number of applied movement batches.
func (w *World) Tick() uint64 {
	return w.tick.Load()
}

// Reserve grows table capacity so the next n inserts do not reallocate.
func (w *World) Reserve(n int) {
	w.objectsMu.Lock()
	defer w.objectsMu.Unlock()
	w.positionsMu.Lock()
	defer w.positionsMu.Unlock()

	if free := cap(w.objects) - len(w.objects); free < n {
		objects := make([]*model.Object, len(w.objects), len(w.objects)+n)
		copy(objects, w.objects)
		w.objects = objects

		positions := make([]fixed.Position, len(w.positions), len(w.positions)+n)
		copy(positions, w.positions)
		w.positions = positions
	}
}

// Len returns the slot table length (occupied and free slots).
func (w *World) Len() int {
	w.objectsMu.RLock()
	defer w.objectsMu.RUnlock()
	return len(w.objects)
}

// Count returns the number of live objects.
func (w *World) Count() int {
	w.objectsMu.RLock()
	defer w.objectsMu.RUnlock()
	w.freeMu.RLock()
	defer w.freeMu.RUnlock()
	return len(w.objects) - len(w.free)
}

// Position returns the recorded position of id.
func (w *World) Position(id model.ObjectID) (fixed.Position, bool) {
	w.positionsMu.RLock()
	defer w.positionsMu.RUnlock()
	if id < 0 || int(id) >= len(w.positions) || !w.positions[id].IsValid() {
		return fixed.Invalid, false
	}
	return w.positions[id], true
}

// Nearby returns ids in the grid neighbourhood of p.
func (w *World) Nearby(p fixed.Position) []model.ObjectID {
	w.gridMu.RLock()
	defer w.gridMu.RUnlock()
	return w.grid.QueryNearby(p)
}

// Camera returns a copy of the camera.
func (w *World) Camera() Camera {
	w.cameraMu.RLock()
	defer w.cameraMu.RUnlock()
	return w.camera
}

// SetZoom sets the camera zoom (clamped).
func (w *World) SetZoom(z float64) {
	w.cameraMu.Lock()
	defer w.cameraMu.Unlock()
	w.camera.SetZoom(z)
	w.snapshot.invalidate()
}

// State returns a copy of the game flags.
func (w *World) State() State {
	w.stateMu.RLock()
	defer w.stateMu.RUnlock()
	return w.state
}

// SetActive starts or pauses the simulation.
func (w *World) SetActive(active bool) {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	w.state.Active = active
}

// SetTab records the UI tab the player is on.
func (w *World) SetTab(tab model.Tab) {
	w.stateMu.Lock()
	w.state.Tab = tab
	w.stateMu.Unlock()

	w.progressMu.Lock()
	w.progress.Tab = tab
	w.progressMu.Unlock()
}

// Progress returns a deep copy of the save-worthy player data.
func (w *World) Progress() model.Progress {
	w.progressMu.RLock()
	defer w.progressMu.RUnlock()
	return w.progress.Clone()
}

// SetProgress replaces the save-worthy player data (used after load).
func (w *World) SetProgress(p model.Progress) {
	w.progressMu.Lock()
	defer w.progressMu.Unlock()
	w.progress = p.Clone()
}

// UpdateProgress mutates progress under its write lock.
func (w *World) UpdateProgress(fn func(*model.Progress)) {
	w.progressMu.Lock()
	defer w.progressMu.Unlock()
	fn(&w.progress)
}

// Tx is locked access to the object and position tables and the grid,
// valid only inside the Update/View callback that produced it.
type Tx struct {
	Objects   []*model.Object
	Positions []fixed.Position
	grid      *spatial.Grid
}

// Object returns the live object in slot id.
func (tx *Tx) Object(id model.ObjectID) (*model.Object, bool) {
	if id < 0 || int(id) >= len(tx.Objects) || tx.Objects[id] == nil {
		return nil, false
	}
	return tx.Objects[id], true
}

// Position returns the recorded position of a live object.
func (tx *Tx) Position(id model.ObjectID) (fixed.Position, bool) {
	if id < 0 || int(id) >= len(tx.Positions) || !tx.Positions[id].IsValid() {
		return fixed.Invalid, false
	}
	return tx.Positions[id], true
}

// Shape returns the shape and kind of a live object.
func (tx *Tx) Shape(id model.ObjectID) (model.Shape, model.Kind, bool) {
	obj, ok := tx.Object(id)
	if !ok {
		return model.Shape{}, 0, false
	}
	return obj.Shape, obj.Kind, true
}

// CellSize returns the grid cell size in raw fixed units.
func (tx *Tx) CellSize() int32 {
	return tx.grid.CellSize()
}

// Nearby appends ids in the grid neighbourhood of p to buf.
func (tx *Tx) Nearby(p fixed.Position, buf []model.ObjectID) []model.ObjectID {
	return tx.grid.QueryNearbyBuf(p, buf)
}

// Update runs fn with objects write-locked and positions and grid read-locked.
// fn may mutate objects in place but must not move or remove them.
func (w *World) Update(fn func(tx *Tx)) {
	w.objectsMu.Lock()
	defer w.objectsMu.Unlock()
	w.positionsMu.RLock()
	defer w.positionsMu.RUnlock()
	w.gridMu.RLock()
	defer w.gridMu.RUnlock()

	fn(&Tx{Objects: w.objects, Positions: w.positions, grid: w.grid})
	w.snapshot.invalidate()
}

// View runs fn with objects, positions and grid read-locked.
func (w *World) View(fn func(tx *Tx)) {
	w.objectsMu.RLock()
	defer w.objectsMu.RUnlock()
	w.positionsMu.RLock()
	defer w.positionsMu.RUnlock()
	w.gridMu.RLock()
	defer w.gridMu.RUnlock()

	fn(&Tx{Objects: w.objects, Positions: w.positions, grid: w.grid})
}

// Reset empties the world: tables, free-list, grid and state flags.
// Attacks still in the table go back to their pools. Progress is kept.
func (w *World) Reset() {
	w.objectsMu.Lock()
	defer w.objectsMu.Unlock()
	w.positionsMu.Lock()
	defer w.positionsMu.Unlock()
	w.freeMu.Lock()
	defer w.freeMu.Unlock()
	w.gridMu.Lock()
	defer w.gridMu.Unlock()
	w.cameraMu.Lock()
	defer w.cameraMu.Unlock()
	w.stateMu.Lock()
	defer w.stateMu.Unlock()

	returned := 0
	for _, obj := range w.objects {
		if obj != nil && obj.Kind == model.KindAttack && w.pools.Checkin(obj) {
			returned++
		}
	}

	clear(w.objects)
	w.objects = w.objects[:0]
	w.positions = w.positions[:0]
	w.free = w.free[:0]
	w.grid.Clear()
	w.camera.Snap(fixed.Zero)
	w.state = State{PlayerID: model.Unassigned, Tab: w.state.Tab}
	w.snapshot.invalidate()

	slog.Info("world reset", "attacks_returned", returned)
}
