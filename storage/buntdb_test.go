package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/cambi-labs/ccyoe/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndListBacktests(t *testing.T) {
	store, err := NewFromMemory()
	require.NoError(t, err)

	first := &core.BacktestRecord{
		Label:  "baseline",
		Config: core.DefaultPolicyConfig(),
		Result: core.BacktestResult{TotalReturn: 0.12, FinalValue: 84_000_000},
	}
	require.NoError(t, store.SaveBacktest(first))
	assert.EqualValues(t, 1, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := &core.BacktestRecord{Label: "aggressive"}
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, store.SaveBacktest(second))
	assert.EqualValues(t, 2, second.ID)

	records, err := store.Backtests()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "baseline", records[0].Label)
	assert.Equal(t, "aggressive", records[1].Label)
	assert.InDelta(t, 0.12, records[0].Result.TotalReturn, 1e-12)
}

func TestSaveAndListOptimizations(t *testing.T) {
	store, err := NewFromMemory()
	require.NoError(t, err)

	record := &core.OptimizationRecord{
		Label: "sharpe-de",
		Result: core.OptimizationResult{
			OptimalParams: map[string]float64{"rebalance_threshold": 120},
			OptimalValue:  1.8,
			Method:        "differential_evolution",
			Converged:     true,
		},
	}
	require.NoError(t, store.SaveOptimization(record))

	records, err := store.Optimizations()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 120.0, records[0].Result.OptimalParams["rebalance_threshold"])
	assert.True(t, records[0].Result.Converged)
}

func TestRecordKindsAreIsolated(t *testing.T) {
	store, err := NewFromMemory()
	require.NoError(t, err)

	require.NoError(t, store.SaveBacktest(&core.BacktestRecord{Label: "bt"}))
	require.NoError(t, store.SaveOptimization(&core.OptimizationRecord{Label: "opt"}))

	backtests, err := store.Backtests()
	require.NoError(t, err)
	assert.Len(t, backtests, 1)

	optimizations, err := store.Optimizations()
	require.NoError(t, err)
	assert.Len(t, optimizations, 1)
}

func TestIDsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	store, err := NewBuntStore(path, DefaultBuntConfig())
	require.NoError(t, err)
	require.NoError(t, store.SaveBacktest(&core.BacktestRecord{Label: "one"}))
	require.NoError(t, store.Close())

	reopened, err := NewBuntStore(path, DefaultBuntConfig())
	require.NoError(t, err)
	defer reopened.Close()

	record := &core.BacktestRecord{Label: "two"}
	require.NoError(t, reopened.SaveBacktest(record))
	assert.EqualValues(t, 2, record.ID)
}
