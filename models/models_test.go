package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testAssets  = []string{"cmBTC", "cmUSD", "cmBRL"}
	testReturns = map[string]float64{
		"cmBTC": 0.05,
		"cmUSD": 0.14,
		"cmBRL": 0.22,
	}
	testCov = [][]float64{
		{0.0400, 0.0060, 0.0048},
		{0.0060, 0.0100, 0.0060},
		{0.0048, 0.0060, 0.0144},
	}
)

func assertValidWeights(t *testing.T, result *Result) {
	t.Helper()
	var sum float64
	for asset, w := range result.Weights {
		assert.GreaterOrEqual(t, w, 0.0, asset)
		assert.LessOrEqual(t, w, 1.0+1e-9, asset)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.False(t, math.IsNaN(result.Volatility))
	assert.Greater(t, result.Volatility, 0.0)
}

func TestMeanVariance(t *testing.T) {
	cautious, err := MeanVariance(testReturns, testCov, testAssets, nil, 10)
	require.NoError(t, err)
	assertValidWeights(t, cautious)

	greedy, err := MeanVariance(testReturns, testCov, testAssets, nil, 0.1)
	require.NoError(t, err)
	assertValidWeights(t, greedy)

	// Lower risk aversion chases the high-return asset harder.
	assert.GreaterOrEqual(t, greedy.Weights["cmBRL"], cautious.Weights["cmBRL"])
	assert.GreaterOrEqual(t, greedy.ExpectedReturn, cautious.ExpectedReturn)
}

func TestMeanVarianceInputValidation(t *testing.T) {
	_, err := MeanVariance(testReturns, testCov, nil, nil, 1)
	assert.Error(t, err)

	_, err = MeanVariance(map[string]float64{"cmBTC": 0.05}, testCov, testAssets, nil, 1)
	assert.Error(t, err)

	_, err = MeanVariance(testReturns, [][]float64{{1}}, testAssets, nil, 1)
	assert.Error(t, err)
}

func TestMinVariance(t *testing.T) {
	result, err := MinVariance(testReturns, testCov, testAssets, nil)
	require.NoError(t, err)
	assertValidWeights(t, result)

	// The global minimum-variance portfolio cannot be riskier than any
	// single asset.
	for i := range testAssets {
		assert.LessOrEqual(t, result.Volatility, math.Sqrt(testCov[i][i])+1e-6)
	}
	// cmBTC is the most volatile asset; it should not dominate.
	assert.Less(t, result.Weights["cmBTC"], 0.5)
}

func TestRiskParity(t *testing.T) {
	result, err := RiskParity(testReturns, testCov, testAssets, nil)
	require.NoError(t, err)
	assertValidWeights(t, result)

	// Risk contributions equalize, so the low-volatility asset carries the
	// largest weight.
	assert.Greater(t, result.Weights["cmUSD"], result.Weights["cmBTC"])
}

func TestMaxDiversification(t *testing.T) {
	result, err := MaxDiversification(testReturns, testCov, testAssets, nil)
	require.NoError(t, err)
	assertValidWeights(t, result)

	// The diversification ratio at the optimum beats the equal-weight mix.
	ratio := func(w map[string]float64) float64 {
		var weighted, variance float64
		for i, a := range testAssets {
			weighted += w[a] * math.Sqrt(testCov[i][i])
			for j, b := range testAssets {
				variance += w[a] * w[b] * testCov[i][j]
			}
		}
		return weighted / math.Sqrt(variance)
	}
	equal := map[string]float64{"cmBTC": 1.0 / 3, "cmUSD": 1.0 / 3, "cmBRL": 1.0 / 3}
	assert.GreaterOrEqual(t, ratio(result.Weights), ratio(equal)-1e-6)
}

func TestBlackLitterman(t *testing.T) {
	market := map[string]float64{"cmBTC": 0.15, "cmUSD": 0.35, "cmBRL": 0.50}

	t.Run("no views recovers market tilt", func(t *testing.T) {
		result, err := BlackLitterman(market, testCov, testAssets, nil, nil, 0.05, 2.5)
		require.NoError(t, err)
		assertValidWeights(t, result)
	})

	t.Run("bullish view tilts the portfolio", func(t *testing.T) {
		neutral, err := BlackLitterman(market, testCov, testAssets, nil, nil, 0.05, 2.5)
		require.NoError(t, err)

		views := []View{{
			Portfolio:  map[string]float64{"cmBTC": 1},
			Return:     0.40,
			Confidence: 0.001,
		}}
		bullish, err := BlackLitterman(market, testCov, testAssets, nil, views, 0.05, 2.5)
		require.NoError(t, err)
		assertValidWeights(t, bullish)

		assert.Greater(t, bullish.Weights["cmBTC"], neutral.Weights["cmBTC"])
	})

	t.Run("rejects bad inputs", func(t *testing.T) {
		_, err := BlackLitterman(market, testCov, testAssets, nil, nil, 0, 2.5)
		assert.Error(t, err)

		views := []View{{Portfolio: map[string]float64{"cmBTC": 1}, Return: 0.1, Confidence: 0}}
		_, err = BlackLitterman(market, testCov, testAssets, nil, views, 0.05, 2.5)
		assert.Error(t, err)

		_, err = BlackLitterman(map[string]float64{}, testCov, testAssets, nil, nil, 0.05, 2.5)
		assert.Error(t, err)
	})
}

func TestCCYOEAllocation(t *testing.T) {
	t.Run("no excess yields the zero split", func(t *testing.T) {
		result, err := CCYOEAllocation(0, 0.001, nil)
		require.NoError(t, err)
		assert.Empty(t, result.Allocations)
		assert.Zero(t, result.Utility)
	})

	t.Run("allocations respect bounds and sum to one", func(t *testing.T) {
		result, err := CCYOEAllocation(250, 0.0001, nil)
		require.NoError(t, err)

		// The final renormalization can nudge bound-sitting buckets slightly
		// past the box, so the bound check carries a loose tolerance.
		var sum float64
		for i, name := range BucketNames {
			share := result.Allocations[name]
			b := DefaultBucketBounds()[i]
			assert.GreaterOrEqual(t, share, b[0]-0.02, name)
			assert.LessOrEqual(t, share, b[1]+0.02, name)
			sum += share
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
		assert.Greater(t, result.Utility, 0.0)

		// The under-supplied bucket carries the highest priority and should
		// sit at or near its upper bound.
		assert.Greater(t, result.Allocations["under_supplied"], result.Allocations["treasury"])
	})
}

func TestEfficientFrontier(t *testing.T) {
	frontier, err := EfficientFrontier(testReturns, testCov, testAssets, nil, 8)
	require.NoError(t, err)
	require.NotEmpty(t, frontier)

	for i := 1; i < len(frontier); i++ {
		// Returns rise along the frontier, modulo penalty-method jitter.
		assert.GreaterOrEqual(t, frontier[i].Return, frontier[i-1].Return-1e-3)
	}

	// The frontier never beats the best single asset.
	for _, p := range frontier {
		assert.LessOrEqual(t, p.Return, 0.22+1e-6)
		assert.Greater(t, p.Volatility, 0.0)
	}

	_, err = EfficientFrontier(testReturns, testCov, testAssets, nil, 1)
	assert.Error(t, err)
}
