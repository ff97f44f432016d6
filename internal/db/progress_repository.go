package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/udisondev/idlecore/internal/model"
)

// ProgressRepository хранит сохранения игрока по слотам.
type ProgressRepository struct {
	db *pgxpool.Pool
}

// NewProgressRepository создаёт новый ProgressRepository.
func NewProgressRepository(db *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Load reads the progress saved in slot.
// Returns nil, nil if the slot is empty.
func (r *ProgressRepository) Load(ctx context.Context, slot int) (*model.Progress, error) {
	var (
		p        model.Progress
		tab      int16
		upgrades []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT gold, experience, kills, best_wave, tab, upgrades
		FROM progress
		WHERE slot = $1`, slot,
	).Scan(&p.Gold, &p.Experience, &p.Kills, &p.BestWave, &tab, &upgrades)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading progress slot %d: %w", slot, err)
	}

	p.Tab = model.Tab(tab)
	if len(upgrades) > 0 {
		if err := msgpack.Unmarshal(upgrades, &p.Upgrades); err != nil {
			return nil, fmt.Errorf("decoding upgrades of slot %d: %w", slot, err)
		}
	}
	return &p, nil
}

// Save writes p into slot, replacing what was there.
func (r *ProgressRepository) Save(ctx context.Context, slot int, p model.Progress) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for slot %d: %w", slot, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "slot", slot, "error", err)
		}
	}()

	if err := r.SaveTx(ctx, tx, slot, p); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction for slot %d: %w", slot, err)
	}
	return nil
}

// SaveTx writes p into slot inside an existing transaction.
func (r *ProgressRepository) SaveTx(ctx context.Context, tx pgx.Tx, slot int, p model.Progress) error {
	var upgrades []byte
	if len(p.Upgrades) > 0 {
		var err error
		upgrades, err = msgpack.Marshal(p.Upgrades)
		if err != nil {
			return fmt.Errorf("encoding upgrades of slot %d: %w", slot, err)
		}
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO progress (slot, gold, experience, kills, best_wave, tab, upgrades, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (slot) DO UPDATE SET
			gold       = EXCLUDED.gold,
			experience = EXCLUDED.experience,
			kills      = EXCLUDED.kills,
			best_wave  = EXCLUDED.best_wave,
			tab        = EXCLUDED.tab,
			upgrades   = EXCLUDED.upgrades,
			saved_at   = EXCLUDED.saved_at`,
		slot, p.Gold, p.Experience, p.Kills, p.BestWave, int16(p.Tab), upgrades, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("saving progress slot %d: %w", slot, err)
	}
	return nil
}

// Delete clears slot. Deleting an empty slot is not an error.
func (r *ProgressRepository) Delete(ctx context.Context, slot int) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM progress WHERE slot = $1`, slot); err != nil {
		return fmt.Errorf("deleting progress slot %d: %w", slot, err)
	}
	return nil
}
