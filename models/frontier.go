package models

import (
	"fmt"
	"math"
)

// FrontierPoint is one efficient portfolio.
type FrontierPoint struct {
	Return     float64            `json:"return"`
	Volatility float64            `json:"volatility"`
	Sharpe     float64            `json:"sharpe"`
	Weights    map[string]float64 `json:"weights"`
}

// EfficientFrontier traces minimum-variance portfolios across target returns
// between the global minimum-variance return and just under the best
// single-asset return. Targets the solver cannot reach are skipped.
func EfficientFrontier(expectedReturns map[string]float64, covMatrix [][]float64,
	assets []string, bounds [][2]float64, points int) ([]FrontierPoint, error) {

	if points < 2 {
		return nil, fmt.Errorf("need at least 2 frontier points, got %d", points)
	}
	mu, sigma, err := buildInputs(expectedReturns, covMatrix, assets)
	if err != nil {
		return nil, err
	}
	n := len(assets)

	minVar, err := MinVariance(expectedReturns, covMatrix, assets, bounds)
	if err != nil {
		return nil, fmt.Errorf("minimum-variance anchor failed: %w", err)
	}

	maxReturn := math.Inf(-1)
	for _, r := range mu {
		maxReturn = math.Max(maxReturn, r)
	}

	low := minVar.ExpectedReturn
	high := 0.95 * maxReturn
	if high <= low {
		return []FrontierPoint{{
			Return:     minVar.ExpectedReturn,
			Volatility: minVar.Volatility,
			Sharpe:     minVar.Sharpe,
			Weights:    minVar.Weights,
		}}, nil
	}

	frontier := make([]FrontierPoint, 0, points)
	step := (high - low) / float64(points-1)
	for p := 0; p < points; p++ {
		target := low + float64(p)*step

		weights, err := minimizeOnSimplex(func(w []float64) float64 {
			var ret, variance float64
			for i := 0; i < n; i++ {
				ret += mu[i] * w[i]
				for j := 0; j < n; j++ {
					variance += w[i] * w[j] * sigma.At(i, j)
				}
			}
			d := ret - target
			return variance + penaltyWeight*d*d
		}, n, bounds, nil)
		if err != nil {
			// Unreachable target under the bounds; drop the point.
			continue
		}

		result := assemble(weights, mu, sigma, assets)
		frontier = append(frontier, FrontierPoint{
			Return:     result.ExpectedReturn,
			Volatility: result.Volatility,
			Sharpe:     result.Sharpe,
			Weights:    result.Weights,
		})
	}

	if len(frontier) == 0 {
		return nil, fmt.Errorf("no feasible frontier point")
	}
	return frontier, nil
}
