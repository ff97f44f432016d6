package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/idlecore/internal/config"
	"github.com/udisondev/idlecore/internal/db"
	"github.com/udisondev/idlecore/internal/fixed"
	"github.com/udisondev/idlecore/internal/game"
	"github.com/udisondev/idlecore/internal/game/combat"
	"github.com/udisondev/idlecore/internal/model"
	"github.com/udisondev/idlecore/internal/spawn"
	"github.com/udisondev/idlecore/internal/world"
)

const ConfigPath = "config/simulation.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("IDLECORE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadSimulation(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level, _ := cfg.Level() // validated on load
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))
	slog.Info("idlecore simulation starting", "config", cfgPath, "log_level", cfg.LogLevel)

	world.ConfigureLocks(cfg.LockTimeout, nil)

	worldCfg, err := worldConfig(cfg)
	if err != nil {
		return err
	}
	w := world.New(worldCfg)

	var (
		repo     *db.ProgressRepository
		database *db.DB
	)
	if cfg.Autosave.Enabled {
		database, err = db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, database.Pool()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		repo = db.NewProgressRepository(database.Pool())
		saved, err := repo.Load(ctx, cfg.Autosave.Slot)
		if err != nil {
			return fmt.Errorf("loading progress: %w", err)
		}
		if saved != nil {
			w.SetProgress(*saved)
			slog.Info("progress loaded", "slot", cfg.Autosave.Slot, "gold", saved.Gold, "best_wave", saved.BestWave)
		}
	}

	if _, err := w.SpawnPlayer(fixed.Zero); err != nil {
		return err
	}
	w.SetTab(model.TabAdventure)

	gameCfg, err := gameConfig(cfg)
	if err != nil {
		return err
	}
	loop := game.NewLoop(w, &game.Input{}, gameCfg)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return loop.Start(gctx)
	})

	if cfg.Spawner.Enabled {
		spawner := spawn.NewSpawner(w, spawn.Config{
			Interval:   cfg.Spawner.Interval,
			WaveSize:   cfg.Spawner.WaveSize,
			MaxEnemies: cfg.Spawner.MaxEnemies,
			Radius:     cfg.Spawner.Radius,
			Attempts:   spawn.DefaultConfig().Attempts,
			Seed:       cfg.Spawner.Seed,
		})
		g.Go(func() error {
			return spawner.Start(gctx)
		})
	}

	if repo != nil {
		saver := db.NewAutosaver(w, repo, cfg.Autosave.Slot, cfg.Autosave.Interval)
		g.Go(func() error {
			return saver.Start(gctx)
		})
	}

	slog.Info("simulation running", "tick_rate", cfg.TickRate, "cell_size", cfg.CellSize)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	p := w.Progress()
	slog.Info("simulation stopped", "ticks", loop.Ticks(), "gold", p.Gold, "kills", p.Kills, "best_wave", p.BestWave)
	return nil
}

func worldConfig(cfg config.Simulation) (world.Config, error) {
	pools, err := cfg.AttackPools()
	if err != nil {
		return world.Config{}, err
	}
	return world.Config{
		CellSize:            int32(cfg.CellSize) * fixed.Scale,
		Workers:             cfg.Workers,
		SequentialThreshold: cfg.SequentialThreshold,
		ReserveSlots:        cfg.ReserveSlots,
		Camera: world.CameraConfig{
			Zoom:      cfg.Camera.Zoom,
			MinZoom:   cfg.Camera.MinZoom,
			MaxZoom:   cfg.Camera.MaxZoom,
			Smoothing: cfg.Camera.Smoothing,
		},
		PoolSizes: pools,
	}, nil
}

func gameConfig(cfg config.Simulation) (game.Config, error) {
	attacks, err := cfg.PlayerAttacks()
	if err != nil {
		return game.Config{}, err
	}
	enemy, err := cfg.EnemyAttack()
	if err != nil {
		return game.Config{}, err
	}
	return game.Config{
		TickRate: cfg.TickRate,
		MaxStep:  cfg.MaxStep,
		Combat: combat.Config{
			PlayerAttacks: attacks,
			EnemyAttack:   enemy,
			MightBonus:    cfg.Combat.MightBonus,
		},
	}, nil
}
