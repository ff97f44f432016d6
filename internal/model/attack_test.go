package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/idlecore/internal/fixed"
)

func TestParseAttackKind(t *testing.T) {
	for _, k := range AttackKinds {
		got, err := ParseAttackKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseAttackKind("fireball")
	assert.Error(t, err)
	assert.Equal(t, "attack(9)", AttackKind(9).String())
}

func TestAttackTemplates_Complete(t *testing.T) {
	for _, k := range AttackKinds {
		tmpl, ok := AttackTemplateFor(k)
		require.True(t, ok, "no template for %s", k)
		assert.Equal(t, k, tmpl.Kind)
		assert.Positive(t, tmpl.Damage)
		assert.Positive(t, tmpl.Lifetime)
		assert.Positive(t, tmpl.Projectiles)
	}
	_, ok := AttackTemplateFor(AttackKind(0))
	assert.False(t, ok)
}

func TestNewAttack(t *testing.T) {
	tmpl, _ := AttackTemplateFor(AttackNova)
	a := NewAttack(tmpl)

	assert.Equal(t, KindAttack, a.Kind)
	assert.Equal(t, Unassigned, a.ID)
	assert.Equal(t, Unassigned, a.Parent)
	require.NotNil(t, a.Attack)
	assert.False(t, a.Attack.Enabled, "pooled attacks start disabled")
	assert.Equal(t, tmpl.Damage, a.Attack.Damage)
	assert.Equal(t, Shape{W: tmpl.Area, H: tmpl.Area}, a.Shape)
}

func TestAttackStats_RegisterHit(t *testing.T) {
	a := &AttackStats{MaxTargets: 2}

	assert.True(t, a.RegisterHit(1))
	assert.False(t, a.RegisterHit(1), "same target is hit once")
	assert.False(t, a.Expired())
	assert.True(t, a.RegisterHit(2))
	assert.True(t, a.Expired(), "all targets used")
	assert.False(t, a.RegisterHit(3))

	unlimited := &AttackStats{}
	for i := range 50 {
		assert.True(t, unlimited.RegisterHit(ObjectID(i)))
	}
	assert.False(t, unlimited.Expired())
}

func TestAttackStats_ExpiredByLifetime(t *testing.T) {
	a := &AttackStats{Lifetime: time.Second}
	a.Elapsed = 999 * time.Millisecond
	assert.False(t, a.Expired())
	a.Elapsed = time.Second
	assert.True(t, a.Expired())
}

func TestAttackStats_Reset(t *testing.T) {
	a := &AttackStats{Elapsed: time.Second, Direction: fixed.New(fixed.Scale, 0), Hit: []ObjectID{1, 2}, Hostile: true, Bonus: 4}
	a.Reset()
	assert.False(t, a.Hostile)
	assert.Zero(t, a.Bonus)
	assert.Zero(t, a.Elapsed)
	assert.Equal(t, fixed.Zero, a.Direction)
	assert.Empty(t, a.Hit)
	assert.Equal(t, 2, cap(a.Hit), "hit buffer is reused")
}

func TestAttackStats_HitDamage(t *testing.T) {
	a := &AttackStats{Damage: 8, Bonus: 3}
	assert.Equal(t, int32(11), a.HitDamage())
}
