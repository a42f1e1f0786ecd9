package metric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyReturns(t *testing.T) {
	returns := DailyReturns([]float64{100, 110, 99})
	require.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-12)
	assert.InDelta(t, -0.10, returns[1], 1e-12)

	assert.Nil(t, DailyReturns([]float64{100}))
	assert.Nil(t, DailyReturns(nil))
}

func TestTotalAndAnnualizedReturn(t *testing.T) {
	total := TotalReturn(100, 112)
	assert.InDelta(t, 0.12, total, 1e-12)

	// A 12% return over exactly one trading year annualizes to itself.
	assert.InDelta(t, 0.12, AnnualizedReturn(total, 252), 1e-12)

	// Over half a year it compounds above 25%.
	annualized := AnnualizedReturn(total, 126)
	assert.InDelta(t, math.Pow(1.12, 2)-1, annualized, 1e-12)

	assert.Zero(t, AnnualizedReturn(0.10, 0))
	assert.Zero(t, TotalReturn(0, 50))
}

func TestRatios(t *testing.T) {
	assert.InDelta(t, 1.5, SharpeRatio(0.15, 0.10, 0), 1e-12)
	assert.InDelta(t, 1.0, SharpeRatio(0.15, 0.10, 0.05), 1e-12)
	assert.Zero(t, SharpeRatio(0.15, 0, 0))

	assert.InDelta(t, 3.0, SortinoRatio(0.15, 0.05, 0), 1e-12)
	assert.Zero(t, SortinoRatio(0.15, 0, 0))

	assert.InDelta(t, 2.0, CalmarRatio(0.10, 0.05), 1e-12)
	assert.Zero(t, CalmarRatio(0.10, 0))
}

func TestWinRate(t *testing.T) {
	assert.InDelta(t, 0.5, WinRate([]float64{0.01, -0.02, 0.03, -0.01}), 1e-12)
	assert.Zero(t, WinRate(nil))
	assert.Zero(t, WinRate([]float64{0, 0}))
}

func TestVolatility(t *testing.T) {
	flat := []float64{0.01, 0.01, 0.01}
	assert.InDelta(t, 0, Volatility(flat), 1e-12)

	returns := []float64{0.02, -0.01, 0.03, -0.02}
	vol := Volatility(returns)
	assert.Greater(t, vol, 0.0)

	assert.Zero(t, Volatility([]float64{0.01}))
}

func TestMaxDrawdown(t *testing.T) {
	// Value path 100 -> 110 -> 88 -> 95: worst drawdown is 20% off the peak.
	returns := DailyReturns([]float64{100, 110, 88, 95})
	assert.InDelta(t, 0.20, MaxDrawdown(returns), 1e-12)

	// Monotonic growth never draws down.
	up := DailyReturns([]float64{100, 101, 102, 103})
	assert.Zero(t, MaxDrawdown(up))

	assert.Zero(t, MaxDrawdown(nil))
}

func TestHistoricalVaR(t *testing.T) {
	returns := make([]float64, 100)
	for i := range returns {
		returns[i] = float64(i-50) / 1000 // -5.0% .. +4.9%
	}

	var95 := HistoricalVaR(returns, 0.95)
	assert.Greater(t, var95, 0.0)

	var99 := HistoricalVaR(returns, 0.99)
	assert.GreaterOrEqual(t, var99, var95)
}

func TestExpectedShortfall(t *testing.T) {
	returns := make([]float64, 100)
	for i := range returns {
		returns[i] = float64(i-50) / 1000
	}

	es := ExpectedShortfall(returns, 0.95)
	assert.GreaterOrEqual(t, es, HistoricalVaR(returns, 0.95))

	// All-positive returns: no tail, ES falls back to the VaR level.
	flat := []float64{0.01, 0.02, 0.03, 0.04}
	assert.InDelta(t, HistoricalVaR(flat, 0.95), ExpectedShortfall(flat, 0.95), 1e-12)
}

func TestParametricAndMonteCarloVaR(t *testing.T) {
	returns := []float64{0.01, -0.02, 0.015, -0.01, 0.005, -0.005, 0.02, -0.015}

	parametric := ParametricVaR(returns, 0.95)
	assert.Greater(t, parametric, 0.0)

	first := MonteCarloVaR(returns, 0.95, 10000, 42)
	second := MonteCarloVaR(returns, 0.95, 10000, 42)
	assert.Equal(t, first, second)
	assert.InDelta(t, parametric, first, parametric) // same order of magnitude
}

func TestDownsideDeviation(t *testing.T) {
	returns := []float64{0.02, -0.01, 0.03, -0.02}
	dd := DownsideDeviation(returns, 0)
	assert.Greater(t, dd, 0.0)
	assert.Less(t, dd, Volatility(returns))

	assert.Zero(t, DownsideDeviation([]float64{0.01, 0.02}, 0))
}

func TestCorrelationSummary(t *testing.T) {
	columns := map[string][]float64{
		"a": {1, 2, 3, 4, 5},
		"b": {2, 4, 6, 8, 10},  // perfectly correlated with a
		"c": {5, 4, 3, 2, 1},   // perfectly anti-correlated
	}
	assets := []string{"a", "b", "c"}

	matrix := CorrelationMatrix(columns, assets)
	assert.InDelta(t, 1, matrix["a"][1], 1e-12)
	assert.InDelta(t, -1, matrix["a"][2], 1e-12)
	assert.InDelta(t, 1, matrix["b"][1], 1e-12)

	summary := SummarizeCorrelations(matrix, assets)
	assert.InDelta(t, 1, summary.Max, 1e-12)
	assert.InDelta(t, -1, summary.Min, 1e-12)
	assert.InDelta(t, -1.0/3.0, summary.Average, 1e-12)
}

func TestBootstrap(t *testing.T) {
	returns := make([]float64, 200)
	for i := range returns {
		returns[i] = 0.01 * math.Sin(float64(i))
	}

	interval := Bootstrap(returns, Mean, 500, 0.95)
	assert.LessOrEqual(t, interval.Lower, interval.Upper)
	assert.GreaterOrEqual(t, interval.StdDev, 0.0)

	assert.Equal(t, BootstrapInterval{}, Bootstrap(nil, Mean, 100, 0.95))
}
