// Package spawn places enemy waves around the player.
package spawn

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/udisondev/idlecore/internal/fixed"
	"github.com/udisondev/idlecore/internal/model"
	"github.com/udisondev/idlecore/internal/world"
)

// Config configures wave spawning.
type Config struct {
	Interval   time.Duration
	WaveSize   int
	MaxEnemies int
	Radius     int   // ring radius in world units
	Attempts   int   // placement retries per enemy
	Seed       int64 // 0 = random
}

// DefaultConfig spawns eight enemies every three seconds on a 24-unit ring.
func DefaultConfig() Config {
	return Config{
		Interval:   3 * time.Second,
		WaveSize:   8,
		MaxEnemies: 400,
		Radius:     24,
		Attempts:   4,
	}
}

// Spawner inserts enemy waves while an adventure is active.
type Spawner struct {
	world *world.World
	cfg   Config

	mu   sync.Mutex
	rng  *rand.Rand
	wave int32
}

// NewSpawner creates a spawner over w.
func NewSpawner(w *world.World, cfg Config) *Spawner {
	seed := uint64(cfg.Seed)
	if cfg.Seed == 0 {
		seed = rand.Uint64()
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}
	return &Spawner{
		world: w,
		cfg:   cfg,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Start spawns a wave every Interval until ctx is cancelled.
func (s *Spawner) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	slog.Info("spawner started", "interval", s.cfg.Interval, "wave_size", s.cfg.WaveSize, "max_enemies", s.cfg.MaxEnemies)

	for {
		select {
		case <-ctx.Done():
			slog.Info("spawner stopping", "wave", s.Wave())
			return ctx.Err()

		case <-ticker.C:
			if _, err := s.SpawnWave(); err != nil {
				return fmt.Errorf("spawning wave: %w", err)
			}
		}
	}
}

// Wave returns the number of the last spawned wave.
func (s *Spawner) Wave() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wave
}

// ResetWaves starts counting waves from zero (new adventure).
func (s *Spawner) ResetWaves() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wave = 0
}

// SpawnWave places up to WaveSize enemies on a ring around the player,
// keeping the live enemy count at or below MaxEnemies. Enemies that cannot
// be placed without overlapping a blocking object are skipped.
// Returns the number of enemies inserted.
func (s *Spawner) SpawnWave() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.world.State()
	if !st.Active || st.PlayerDead {
		return 0, nil
	}

	var (
		objs []*model.Object
		at   []fixed.Position
	)
	s.world.View(func(tx *world.Tx) {
		center, ok := tx.Position(st.PlayerID)
		if !ok {
			return
		}

		live := 0
		for _, obj := range tx.Objects {
			if obj != nil && obj.Kind == model.KindEnemy {
				live++
			}
		}
		n := min(s.cfg.WaveSize, s.cfg.MaxEnemies-live)
		if n <= 0 {
			return
		}

		wave := s.wave + 1
		var buf []model.ObjectID
		for range n {
			enemy := model.NewEnemy(s.pick(wave))
			for range s.cfg.Attempts {
				p := s.onRing(center)
				if !p.IsValid() {
					continue
				}
				buf = tx.Nearby(p, buf[:0])
				if blocked(tx, buf, enemy.Shape.Bounds(p)) || overlapsAny(objs, at, enemy.Shape.Bounds(p)) {
					continue
				}
				objs = append(objs, enemy)
				at = append(at, p)
				break
			}
		}
	})

	if len(objs) == 0 {
		return 0, nil
	}

	if _, err := s.world.InsertBatch(objs, at); err != nil {
		return 0, err
	}
	s.wave++
	wave := s.wave
	s.world.UpdateProgress(func(p *model.Progress) {
		p.BestWave = max(p.BestWave, wave)
	})

	slog.Debug("wave spawned", "wave", wave, "enemies", len(objs))
	return len(objs), nil
}

// pick draws an archetype; brutes join from the third wave.
func (s *Spawner) pick(wave int32) model.EnemyTemplate {
	weights := [...]int{6, 3, 0}
	if wave >= 3 {
		weights[2] = 1
	}
	total := 0
	for _, w := range weights {
		total += w
	}
	roll := s.rng.IntN(total)
	for i, w := range weights {
		if roll < w {
			return model.EnemyTemplates[i]
		}
		roll -= w
	}
	return model.EnemyGrunt
}

func (s *Spawner) onRing(center fixed.Position) fixed.Position {
	angle := s.rng.Float64() * 2 * math.Pi
	r := float64(s.cfg.Radius)
	return center.Add(fixed.FromFloat(r*math.Cos(angle), r*math.Sin(angle)))
}

func blocked(tx *world.Tx, ids []model.ObjectID, box model.Rect) bool {
	for _, id := range ids {
		shape, kind, ok := tx.Shape(id)
		if !ok || !kind.Blocking() {
			continue
		}
		if box.Overlaps(shape.Bounds(tx.Positions[id])) {
			return true
		}
	}
	return false
}

func overlapsAny(objs []*model.Object, at []fixed.Position, box model.Rect) bool {
	for i, o := range objs {
		if box.Overlaps(o.Shape.Bounds(at[i])) {
			return true
		}
	}
	return false
}
