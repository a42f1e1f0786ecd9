package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/cambi-labs/ccyoe/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

// seriesOf builds an n-day series from a per-day yield function.
func seriesOf(t *testing.T, n int, yields func(day int) map[string]float64) *core.YieldSeries {
	t.Helper()
	points := make([]core.YieldPoint, n)
	for i := range points {
		points[i] = core.YieldPoint{Date: day(i), Yields: yields(i)}
	}
	series, err := core.NewYieldSeries(points)
	require.NoError(t, err)
	return series
}

func flatBelowTarget(int) map[string]float64 {
	return map[string]float64{
		core.AssetBTC: 400,  // target 500
		core.AssetUSD: 1300, // target 1400
		core.AssetBRL: 1900, // target 2000
	}
}

func TestRunNoExcessNeverRebalances(t *testing.T) {
	series := seriesOf(t, 30, flatBelowTarget)
	engine, err := NewEngine(series, core.DefaultPolicyConfig())
	require.NoError(t, err)

	result, err := engine.Run(day(0), day(29), core.DefaultInitialPortfolio())
	require.NoError(t, err)

	assert.Zero(t, result.RebalanceCount)
	assert.Empty(t, result.RebalanceEvents)
	assert.Zero(t, result.TotalCosts)
	assert.Zero(t, result.AvgExcessYield)

	// Value still grows through daily accrual.
	assert.Greater(t, result.FinalValue, result.InitialValue)
	assert.Greater(t, result.TotalReturn, 0.0)

	// With no rebalances the value path is pure accrual: each balance
	// compounds its flat daily yield, and the last recorded valuation has
	// accrued 29 times.
	var expected float64
	for asset, balance := range core.DefaultInitialPortfolio() {
		expected += balance * math.Pow(1+flatBelowTarget(0)[asset]/10000/365, 29)
	}
	assert.InDelta(t, expected/75_000_000-1, result.TotalReturn, 1e-9)
}

func TestRunSingleShockDay(t *testing.T) {
	// Yields sit below target except day 10, where cmBRL spikes 300 bp over.
	series := seriesOf(t, 30, func(d int) map[string]float64 {
		yields := flatBelowTarget(d)
		if d == 10 {
			yields[core.AssetBRL] = 2300
		}
		return yields
	})

	engine, err := NewEngine(series, core.DefaultPolicyConfig())
	require.NoError(t, err)

	result, err := engine.Run(day(0), day(29), core.DefaultInitialPortfolio())
	require.NoError(t, err)

	require.Equal(t, 1, result.RebalanceCount)
	event := result.RebalanceEvents[0]
	assert.Equal(t, day(10), event.Date)
	assert.InDelta(t, 300, event.TotalExcess, 1e-9)
	assert.Greater(t, event.TransactionCost, 0.0)
	assert.Equal(t, 50.0, event.GasCost)
}

func TestRunBelowThresholdDoesNotTrigger(t *testing.T) {
	// 50 bp of excess stays under the default 100 bp threshold.
	series := seriesOf(t, 10, func(d int) map[string]float64 {
		yields := flatBelowTarget(d)
		yields[core.AssetBRL] = 2050
		return yields
	})

	engine, err := NewEngine(series, core.DefaultPolicyConfig())
	require.NoError(t, err)

	result, err := engine.Run(day(0), day(9), core.DefaultInitialPortfolio())
	require.NoError(t, err)
	assert.Zero(t, result.RebalanceCount)
}

func TestRunMinIntervalThrottlesRebalances(t *testing.T) {
	// Excess above threshold every single day.
	hot := func(int) map[string]float64 {
		return map[string]float64{
			core.AssetBTC: 700,
			core.AssetUSD: 1300,
			core.AssetBRL: 1900,
		}
	}
	series := seriesOf(t, 21, hot)

	daily := core.DefaultPolicyConfig()
	weekly := core.DefaultPolicyConfig()
	weekly.MinRebalanceInterval = 7

	engineDaily, err := NewEngine(series, daily)
	require.NoError(t, err)
	engineWeekly, err := NewEngine(series, weekly)
	require.NoError(t, err)

	resultDaily, err := engineDaily.Run(day(0), day(20), core.DefaultInitialPortfolio())
	require.NoError(t, err)
	resultWeekly, err := engineWeekly.Run(day(0), day(20), core.DefaultInitialPortfolio())
	require.NoError(t, err)

	assert.Equal(t, 21, resultDaily.RebalanceCount)
	// Days 0, 7, 14, 20 is not reachable: 0, 7, 14 fit in 21 days.
	assert.Equal(t, 3, resultWeekly.RebalanceCount)
}

func TestDistributeConservesExcess(t *testing.T) {
	cfg := core.DefaultPolicyConfig()
	series := seriesOf(t, 2, flatBelowTarget)
	engine, err := NewEngine(series, cfg)
	require.NoError(t, err)

	balances := core.DefaultInitialPortfolio()
	totalExcess := 250.0

	redistribution := engine.distribute(totalExcess, balances)

	var distributed float64
	for _, boost := range redistribution {
		assert.GreaterOrEqual(t, boost, 0.0)
		distributed += boost
	}
	treasury := totalExcess * cfg.TreasuryAllocation
	assert.InDelta(t, totalExcess, distributed+treasury, 1e-9)
}

func TestDistributeStrategicBucket(t *testing.T) {
	cfg := core.DefaultPolicyConfig()
	series := seriesOf(t, 2, flatBelowTarget)
	engine, err := NewEngine(series, cfg)
	require.NoError(t, err)

	t.Run("eligible asset receives the bucket", func(t *testing.T) {
		// cmBTC at 90% of its 20M cap is the only asset over the 0.8 bar.
		balances := map[string]float64{
			core.AssetBTC: 18_000_000,
			core.AssetUSD: 10_000_000,
			core.AssetBRL: 40_000_000,
		}
		redistribution := engine.distribute(100, balances)

		// cmBTC gets half the under-supplied bucket, the whole strategic
		// bucket, and its proportional share.
		expected := 100*cfg.UnderSuppliedAllocation/2 +
			100*cfg.StrategicGrowthAllocation +
			100*cfg.ProportionalAllocation*18_000_000/68_000_000
		assert.InDelta(t, expected, redistribution[core.AssetBTC], 1e-9)
	})

	t.Run("no priority asset present falls back to proportional", func(t *testing.T) {
		cfg := core.DefaultPolicyConfig()
		cfg.UnderSuppliedAssets = []string{"cmXYZ"}
		engine, err := NewEngine(series, cfg)
		require.NoError(t, err)

		balances := core.DefaultInitialPortfolio()
		redistribution := engine.distribute(200, balances)

		var distributed float64
		for _, boost := range redistribution {
			distributed += boost
		}
		assert.InDelta(t, 200*(1-cfg.TreasuryAllocation), distributed, 1e-9)

		// The orphaned under-supplied bucket joins the proportional pool, so
		// every asset is boosted by portfolio weight.
		expected := 200 * (cfg.UnderSuppliedAllocation + cfg.StrategicGrowthAllocation +
			cfg.ProportionalAllocation) * 40_000_000 / 75_000_000
		assert.InDelta(t, expected, redistribution[core.AssetBRL], 1e-9)
	})

	t.Run("no eligible asset falls back to proportional", func(t *testing.T) {
		balances := core.DefaultInitialPortfolio() // all well under their caps
		redistribution := engine.distribute(100, balances)

		var distributed float64
		for _, boost := range redistribution {
			distributed += boost
		}
		assert.InDelta(t, 100*(1-cfg.TreasuryAllocation), distributed, 1e-9)

		// cmBRL holds 40/75 of the portfolio and is not under-supplied, so it
		// receives (proportional + strategic) × its weight.
		expected := 100 * (cfg.ProportionalAllocation + cfg.StrategicGrowthAllocation) *
			40_000_000 / 75_000_000
		assert.InDelta(t, expected, redistribution[core.AssetBRL], 1e-9)
	})
}

func TestRunResultStatistics(t *testing.T) {
	series := seriesOf(t, 60, func(d int) map[string]float64 {
		yields := flatBelowTarget(d)
		if d%7 == 3 {
			yields[core.AssetBRL] = 2400
		}
		return yields
	})

	engine, err := NewEngine(series, core.DefaultPolicyConfig())
	require.NoError(t, err)

	result, err := engine.Run(day(0), day(59), core.DefaultInitialPortfolio())
	require.NoError(t, err)

	assert.Len(t, result.DailyValues, 60)
	assert.Len(t, result.DailyReturns, 59)
	assert.GreaterOrEqual(t, result.MaxDrawdown, 0.0)
	assert.LessOrEqual(t, result.MaxDrawdown, 1.0)
	assert.GreaterOrEqual(t, result.VaR95, 0.0)
	assert.GreaterOrEqual(t, result.VaR99, 0.0)
	// Accrual and net-positive rebalances keep every daily return positive.
	assert.Equal(t, 1.0, result.WinRate)
	assert.Greater(t, result.RebalanceFrequency, 0.0)
	assert.Less(t, result.NetYieldAfterCosts, result.TotalReturn)
	assert.InDelta(t, -100, result.YieldImprovement[core.AssetBTC], 1e-9)
}

func TestRunWithoutDetail(t *testing.T) {
	series := seriesOf(t, 10, flatBelowTarget)
	engine, err := NewEngine(series, core.DefaultPolicyConfig(), WithoutDetail())
	require.NoError(t, err)

	result, err := engine.Run(day(0), day(9), core.DefaultInitialPortfolio())
	require.NoError(t, err)

	assert.Nil(t, result.DailyValues)
	assert.Nil(t, result.DailyReturns)
	assert.NotZero(t, result.FinalValue)
}

func TestRunWindowErrors(t *testing.T) {
	series := seriesOf(t, 10, flatBelowTarget)
	engine, err := NewEngine(series, core.DefaultPolicyConfig())
	require.NoError(t, err)

	_, err = engine.Run(day(100), day(200), core.DefaultInitialPortfolio())
	assert.ErrorIs(t, err, core.ErrEmptyRange)

	_, err = engine.Run(day(0), day(9), map[string]float64{})
	assert.Error(t, err)
}

func TestNewEngineRejectsInvalidPolicy(t *testing.T) {
	series := seriesOf(t, 5, flatBelowTarget)

	cfg := core.DefaultPolicyConfig()
	cfg.TreasuryAllocation = 0.5

	_, err := NewEngine(series, cfg)
	assert.Error(t, err)

	_, err = NewEngine(nil, core.DefaultPolicyConfig())
	assert.ErrorIs(t, err, core.ErrEmptySeries)
}
