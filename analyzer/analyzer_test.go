package analyzer

import (
	"math"
	"testing"
	"time"

	"github.com/cambi-labs/ccyoe/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func buildSeries(t *testing.T, n int, yields func(day int) map[string]float64) *core.YieldSeries {
	t.Helper()
	points := make([]core.YieldPoint, n)
	for i := range points {
		points[i] = core.YieldPoint{Date: day(i), Yields: yields(i)}
	}
	series, err := core.NewYieldSeries(points)
	require.NoError(t, err)
	return series
}

func trendingSeries(t *testing.T) *core.YieldSeries {
	return buildSeries(t, 60, func(d int) map[string]float64 {
		return map[string]float64{
			core.AssetBTC: 400 + 2*float64(d),                    // steady uptrend
			core.AssetUSD: 1400 + 100*math.Sin(float64(d)/4),     // oscillating
			core.AssetBRL: 2600 - 3*float64(d),                   // downtrend
		}
	})
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, core.ErrEmptySeries)

	_, err = New(trendingSeries(t))
	assert.NoError(t, err)
}

func TestSummarize(t *testing.T) {
	a, err := New(trendingSeries(t))
	require.NoError(t, err)

	btc, err := a.Summarize(core.AssetBTC)
	require.NoError(t, err)

	assert.Equal(t, 400.0, btc.MinYield)
	assert.Equal(t, 518.0, btc.MaxYield)
	assert.InDelta(t, 459.0, btc.MeanYield, 1e-9)

	// A perfectly linear path fits with slope 2 and full R².
	assert.Equal(t, "rising", btc.Trend.Direction)
	assert.InDelta(t, 2.0, btc.Trend.Slope, 1e-9)
	assert.InDelta(t, 1.0, btc.Trend.RSquared, 1e-9)

	// Constant +2 changes have zero change volatility.
	assert.InDelta(t, 0.0, btc.Volatility, 1e-9)

	brl, err := a.Summarize(core.AssetBRL)
	require.NoError(t, err)
	assert.Equal(t, "falling", brl.Trend.Direction)

	_, err = a.Summarize("cmXYZ")
	assert.ErrorIs(t, err, core.ErrUnknownAsset)
}

func TestSummarizeAll(t *testing.T) {
	a, err := New(trendingSeries(t))
	require.NoError(t, err)

	all, err := a.SummarizeAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Contains(t, all, core.AssetUSD)
}

func TestStability(t *testing.T) {
	a, err := New(trendingSeries(t))
	require.NoError(t, err)

	usd, err := a.Summarize(core.AssetUSD)
	require.NoError(t, err)

	assert.Greater(t, usd.Stability.StdDev, 0.0)
	assert.Greater(t, usd.Stability.CoefficientOfVariation, 0.0)
	// A slow sine is strongly autocorrelated at lag 1.
	assert.Greater(t, usd.Stability.Autocorrelation, 0.8)
	assert.Greater(t, usd.Stability.MaxDailyChange, 0.0)
}

func TestRollingVolatility(t *testing.T) {
	a, err := New(trendingSeries(t))
	require.NoError(t, err)

	vol, err := a.RollingVolatility(core.AssetUSD, 10)
	require.NoError(t, err)
	assert.Len(t, vol, 59-10+1)
	for _, v := range vol {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.False(t, math.IsNaN(v))
	}

	_, err = a.RollingVolatility(core.AssetUSD, 100)
	assert.Error(t, err)
}

func TestMovingAverage(t *testing.T) {
	a, err := New(trendingSeries(t))
	require.NoError(t, err)

	sma, err := a.MovingAverage(core.AssetBTC, 5)
	require.NoError(t, err)
	assert.Len(t, sma, 60-5+1)

	// SMA of a linear ramp lags the path by (window-1)/2 steps.
	assert.InDelta(t, 400+2*2, sma[0], 1e-9)

	_, err = a.MovingAverage("cmXYZ", 5)
	assert.Error(t, err)
}

func TestCrossAsset(t *testing.T) {
	a, err := New(trendingSeries(t))
	require.NoError(t, err)

	summary, err := a.CrossAsset()
	require.NoError(t, err)

	assert.Len(t, summary.MeanYields, 3)
	assert.GreaterOrEqual(t, summary.Correlations.Max, summary.Correlations.Min)
	assert.GreaterOrEqual(t, summary.DiversificationRatio, 0.999)

	matrix, assets, err := a.CorrelationMatrix()
	require.NoError(t, err)
	require.Len(t, assets, 3)
	for _, asset := range assets {
		assert.InDelta(t, 1.0, matrix[asset][indexOf(assets, asset)], 1e-9)
	}
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}
