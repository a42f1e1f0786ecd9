package models

// MinVariance minimizes w'Σw over the simplex.
func MinVariance(expectedReturns map[string]float64, covMatrix [][]float64,
	assets []string, bounds [][2]float64) (*Result, error) {

	mu, sigma, err := buildInputs(expectedReturns, covMatrix, assets)
	if err != nil {
		return nil, err
	}
	n := len(assets)

	weights, err := minimizeOnSimplex(func(w []float64) float64 {
		var variance float64
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				variance += w[i] * w[j] * sigma.At(i, j)
			}
		}
		return variance
	}, n, bounds, nil)
	if err != nil {
		return nil, err
	}
	return assemble(weights, mu, sigma, assets), nil
}
