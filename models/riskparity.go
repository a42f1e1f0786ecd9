package models

import "math"

// RiskParity equalizes the risk contribution of every asset: it minimizes the
// squared dispersion of RC_i = w_i·(Σw)_i around the mean contribution.
func RiskParity(expectedReturns map[string]float64, covMatrix [][]float64,
	assets []string, bounds [][2]float64) (*Result, error) {

	mu, sigma, err := buildInputs(expectedReturns, covMatrix, assets)
	if err != nil {
		return nil, err
	}
	n := len(assets)

	weights, err := minimizeOnSimplex(func(w []float64) float64 {
		// Marginal risk (Σw)_i, then contribution w_i·(Σw)_i.
		contributions := make([]float64, n)
		var total float64
		for i := 0; i < n; i++ {
			var marginal float64
			for j := 0; j < n; j++ {
				marginal += sigma.At(i, j) * w[j]
			}
			contributions[i] = w[i] * marginal
			total += contributions[i]
		}
		if total <= 0 {
			return math.Inf(1)
		}

		target := total / float64(n)
		var dispersion float64
		for _, rc := range contributions {
			d := rc - target
			dispersion += d * d
		}
		return dispersion
	}, n, bounds, nil)
	if err != nil {
		return nil, err
	}
	return assemble(weights, mu, sigma, assets), nil
}
