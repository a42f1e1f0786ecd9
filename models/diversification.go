package models

import "math"

// MaxDiversification maximizes the diversification ratio Σ(w_i·σ_i) /
// sqrt(w'Σw), the weighted average of standalone volatilities over the
// portfolio volatility.
func MaxDiversification(expectedReturns map[string]float64, covMatrix [][]float64,
	assets []string, bounds [][2]float64) (*Result, error) {

	mu, sigma, err := buildInputs(expectedReturns, covMatrix, assets)
	if err != nil {
		return nil, err
	}
	n := len(assets)

	standalone := make([]float64, n)
	for i := 0; i < n; i++ {
		standalone[i] = math.Sqrt(math.Max(0, sigma.At(i, i)))
	}

	weights, err := minimizeOnSimplex(func(w []float64) float64 {
		var weightedVol, variance float64
		for i := 0; i < n; i++ {
			weightedVol += w[i] * standalone[i]
			for j := 0; j < n; j++ {
				variance += w[i] * w[j] * sigma.At(i, j)
			}
		}
		portfolioVol := math.Sqrt(math.Max(0, variance))
		if portfolioVol <= 0 {
			return math.Inf(1)
		}
		return -weightedVol / portfolioVol
	}, n, bounds, nil)
	if err != nil {
		return nil, err
	}
	return assemble(weights, mu, sigma, assets), nil
}
