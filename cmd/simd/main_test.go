package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/idlecore/internal/config"
	"github.com/udisondev/idlecore/internal/fixed"
	"github.com/udisondev/idlecore/internal/model"
)

func TestWorldConfig(t *testing.T) {
	cfg := config.DefaultSimulation()
	cfg.CellSize = 16
	cfg.PoolSizes = map[string]int{"bolt": 12}

	wc, err := worldConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(16*fixed.Scale), wc.CellSize)
	assert.Equal(t, map[model.AttackKind]int{model.AttackBolt: 12}, wc.PoolSizes)
	assert.Equal(t, cfg.Camera.Smoothing, wc.Camera.Smoothing)
}

func TestGameConfig(t *testing.T) {
	cfg := config.DefaultSimulation()
	cfg.Combat.PlayerAttacks = []string{"nova", "slash"}
	cfg.Combat.EnemyAttack = ""

	gc, err := gameConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.TickRate, gc.TickRate)
	assert.Equal(t, []model.AttackKind{model.AttackNova, model.AttackSlash}, gc.Combat.PlayerAttacks)
	assert.Zero(t, gc.Combat.EnemyAttack)
}

func TestGameConfig_UnknownAttack(t *testing.T) {
	cfg := config.DefaultSimulation()
	cfg.Combat.PlayerAttacks = []string{"laser"}

	_, err := gameConfig(cfg)
	require.Error(t, err)
}
