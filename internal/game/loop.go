// Package game drives the simulation: a fixed-rate loop that plans movement,
// resolves and applies it, runs combat and pickups.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/udisondev/idlecore/internal/fixed"
	"github.com/udisondev/idlecore/internal/game/combat"
	"github.com/udisondev/idlecore/internal/world"
)

// Config configures the game loop.
type Config struct {
	TickRate time.Duration // interval between ticks
	MaxStep  time.Duration // dt is clamped to this after stalls
	Combat   combat.Config
}

// DefaultConfig returns a 60 Hz loop.
func DefaultConfig() Config {
	return Config{
		TickRate: time.Second / 60,
		MaxStep:  100 * time.Millisecond,
		Combat:   combat.DefaultConfig(),
	}
}

// Loop is the simulation thread. Create with NewLoop, run with Start.
type Loop struct {
	world *world.World
	input *Input
	cfg   Config

	movement Movement
	combat   *combat.Manager
	pickup   Pickup

	ticks atomic.Uint64
}

// NewLoop creates a loop over w steered by in.
func NewLoop(w *world.World, in *Input, cfg Config) *Loop {
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultConfig().TickRate
	}
	if cfg.MaxStep <= 0 {
		cfg.MaxStep = DefaultConfig().MaxStep
	}
	return &Loop{
		world:  w,
		input:  in,
		cfg:    cfg,
		combat: combat.NewManager(cfg.Combat),
	}
}

// Start runs ticks until ctx is cancelled. dt is measured on the wall clock.
func (l *Loop) Start(ctx context.Context) error {
	ticker := time.NewTicker(l.cfg.TickRate)
	defer ticker.Stop()

	slog.Info("game loop started", "tick_rate", l.cfg.TickRate)

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.Info("game loop stopping", "ticks", l.ticks.Load())
			return ctx.Err()

		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if err := l.Tick(ctx, dt); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("game tick: %w", err)
			}
		}
	}
}

// Tick advances the simulation by dt. Paused games and dead players are
// skipped.
func (l *Loop) Tick(ctx context.Context, dt time.Duration) error {
	st := l.world.State()
	if !st.Active || st.PlayerDead {
		return nil
	}
	dt = min(dt, l.cfg.MaxStep)

	dir := l.input.Direction()
	moves := l.movement.Plan(l.world, dir, dt)
	if _, err := l.world.Step(ctx, moves, dt); err != nil {
		return fmt.Errorf("moving: %w", err)
	}

	animate(l.world, dir != fixed.Zero, dt)

	if _, err := l.combat.Tick(l.world, dt); err != nil {
		return fmt.Errorf("combat: %w", err)
	}
	if _, err := l.pickup.Tick(l.world); err != nil {
		return fmt.Errorf("pickup: %w", err)
	}

	l.ticks.Add(1)
	return nil
}

// Ticks returns the number of simulated ticks.
func (l *Loop) Ticks() uint64 {
	return l.ticks.Load()
}
