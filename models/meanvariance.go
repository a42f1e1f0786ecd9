package models

// MeanVariance maximizes μ'w − λ·w'Σw over the simplex. Lambda is the risk
// aversion; higher values trade return for variance.
func MeanVariance(expectedReturns map[string]float64, covMatrix [][]float64,
	assets []string, bounds [][2]float64, lambda float64) (*Result, error) {

	mu, sigma, err := buildInputs(expectedReturns, covMatrix, assets)
	if err != nil {
		return nil, err
	}
	n := len(assets)

	weights, err := minimizeOnSimplex(func(w []float64) float64 {
		var ret, variance float64
		for i := 0; i < n; i++ {
			ret += mu[i] * w[i]
			for j := 0; j < n; j++ {
				variance += w[i] * w[j] * sigma.At(i, j)
			}
		}
		return -(ret - lambda*variance)
	}, n, bounds, nil)
	if err != nil {
		return nil, err
	}
	return assemble(weights, mu, sigma, assets), nil
}
