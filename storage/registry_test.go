package storage

import (
	"testing"

	"github.com/raykavin/tokensentry/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	registry, err := NewRegistry(core.ThresholdSet{Increase: 1, Decrease: -5, SharpDrop: -10})
	require.NoError(t, err)
	t.Cleanup(func() { _ = registry.Close() })
	return registry
}

func TestRegistry_HoldingDefaultsToZero(t *testing.T) {
	registry := newRegistry(t)

	holding, err := registry.Holding(404)
	require.NoError(t, err)
	assert.Zero(t, holding)
}

func TestRegistry_UpsertHolding(t *testing.T) {
	registry := newRegistry(t)

	require.NoError(t, registry.UpsertHolding(1, 100))
	holding, err := registry.Holding(1)
	require.NoError(t, err)
	assert.Equal(t, 100.0, holding)

	require.NoError(t, registry.UpsertHolding(1, 2.5))
	holding, err = registry.Holding(1)
	require.NoError(t, err)
	assert.Equal(t, 2.5, holding)
}

func TestRegistry_RegisterDoesNotClobber(t *testing.T) {
	registry := newRegistry(t)

	require.NoError(t, registry.UpsertHolding(1, 100))
	require.NoError(t, registry.Register(1))

	holding, err := registry.Holding(1)
	require.NoError(t, err)
	assert.Equal(t, 100.0, holding)
}

func TestRegistry_RegisterCreatesEmptyAccount(t *testing.T) {
	registry := newRegistry(t)

	require.NoError(t, registry.Register(9))

	accounts, err := registry.Accounts()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, int64(9), accounts[0].ChatID)
	assert.Zero(t, accounts[0].Holding)
}

func TestRegistry_SeedThresholdsAreNormalized(t *testing.T) {
	registry, err := NewRegistry(core.ThresholdSet{Increase: 1, Decrease: 5, SharpDrop: 10})
	require.NoError(t, err)
	defer registry.Close()

	thresholds, err := registry.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, -5.0, thresholds.Decrease)
	assert.Equal(t, -10.0, thresholds.SharpDrop)
}

func TestRegistry_SetThresholdNormalizesSign(t *testing.T) {
	registry := newRegistry(t)

	// positive and negative input both store a non-positive magnitude
	require.NoError(t, registry.SetThreshold(core.ThresholdDecrease, 8))
	require.NoError(t, registry.SetThreshold(core.ThresholdSharpDrop, -20))

	thresholds, err := registry.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, -8.0, thresholds.Decrease)
	assert.Equal(t, -20.0, thresholds.SharpDrop)
}

func TestRegistry_SetThresholdIncreaseStoredAsGiven(t *testing.T) {
	registry := newRegistry(t)

	require.NoError(t, registry.SetThreshold(core.ThresholdIncrease, 3.5))

	thresholds, err := registry.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, 3.5, thresholds.Increase)
	assert.Equal(t, -5.0, thresholds.Decrease)
}

func TestRegistry_SetThresholdUnknownKind(t *testing.T) {
	registry := newRegistry(t)

	err := registry.SetThreshold("bogus", 1)
	assert.ErrorIs(t, err, core.ErrUnknownThreshold)
}

func TestRegistry_BaselineRoundTrip(t *testing.T) {
	registry := newRegistry(t)

	baseline, err := registry.Baseline(1)
	require.NoError(t, err)
	assert.Zero(t, baseline)

	require.NoError(t, registry.SetBaseline(1, 102.5))
	baseline, err = registry.Baseline(1)
	require.NoError(t, err)
	assert.Equal(t, 102.5, baseline)
}

func TestRegistry_UpsertHoldingKeepsBaseline(t *testing.T) {
	registry := newRegistry(t)

	require.NoError(t, registry.SetBaseline(1, 55))
	require.NoError(t, registry.UpsertHolding(1, 200))

	baseline, err := registry.Baseline(1)
	require.NoError(t, err)
	assert.Equal(t, 55.0, baseline)
}

func TestRegistry_SharedBaselineRoundTrip(t *testing.T) {
	registry := newRegistry(t)

	shared, err := registry.SharedBaseline()
	require.NoError(t, err)
	assert.Zero(t, shared)

	require.NoError(t, registry.SetSharedBaseline(99.9))
	shared, err = registry.SharedBaseline()
	require.NoError(t, err)
	assert.Equal(t, 99.9, shared)
}

func TestRegistry_AccountsWithFilter(t *testing.T) {
	registry := newRegistry(t)

	require.NoError(t, registry.UpsertHolding(1, 0))
	require.NoError(t, registry.UpsertHolding(2, 10))
	require.NoError(t, registry.UpsertHolding(3, 20))

	holders, err := registry.Accounts(func(account core.Account) bool {
		return account.Holding > 0
	})
	require.NoError(t, err)
	require.Len(t, holders, 2)
	for _, account := range holders {
		assert.Positive(t, account.Holding)
	}
}
