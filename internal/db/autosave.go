package db

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/udisondev/idlecore/internal/model"
)

// finalSaveTimeout bounds the save performed on shutdown.
const finalSaveTimeout = 5 * time.Second

// ProgressSource yields the current save-worthy state (World satisfies it).
type ProgressSource interface {
	Progress() model.Progress
}

// ProgressSaver persists progress into a slot.
type ProgressSaver interface {
	Save(ctx context.Context, slot int, p model.Progress) error
}

// Autosaver periodically saves progress. Unchanged progress is not re-saved.
type Autosaver struct {
	src      ProgressSource
	saver    ProgressSaver
	slot     int
	interval time.Duration

	mu    sync.Mutex
	last  model.Progress
	saved bool
}

// NewAutosaver creates an autosaver writing src into slot every interval.
func NewAutosaver(src ProgressSource, saver ProgressSaver, slot int, interval time.Duration) *Autosaver {
	return &Autosaver{
		src:      src,
		saver:    saver,
		slot:     slot,
		interval: interval,
	}
}

// Start saves every interval until ctx is cancelled, then saves once more
// with a detached context. Failed periodic saves are logged and retried on
// the next tick; a failed final save is returned.
func (a *Autosaver) Start(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	slog.Info("autosave started", "slot", a.slot, "interval", a.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("autosave stopping", "slot", a.slot)

			saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalSaveTimeout)
			defer cancel()
			if _, err := a.SaveNow(saveCtx); err != nil {
				return fmt.Errorf("final save: %w", err)
			}
			return ctx.Err()

		case <-ticker.C:
			if _, err := a.SaveNow(ctx); err != nil {
				slog.Error("autosave failed", "slot", a.slot, "error", err)
			}
		}
	}
}

// SaveNow saves the current progress unless it equals the last saved one.
// Reports whether a write happened.
func (a *Autosaver) SaveNow(ctx context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p := a.src.Progress()
	if a.saved && sameProgress(a.last, p) {
		return false, nil
	}
	if err := a.saver.Save(ctx, a.slot, p); err != nil {
		return false, err
	}
	a.last = p.Clone()
	a.saved = true

	slog.Debug("progress saved", "slot", a.slot, "gold", p.Gold, "kills", p.Kills)
	return true, nil
}

func sameProgress(a, b model.Progress) bool {
	return a.Gold == b.Gold &&
		a.Experience == b.Experience &&
		a.Kills == b.Kills &&
		a.BestWave == b.BestWave &&
		a.Tab == b.Tab &&
		slices.Equal(a.Upgrades, b.Upgrades)
}
