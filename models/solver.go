// Package models implements portfolio construction models over the weight
// simplex: mean-variance, risk parity, maximum diversification, minimum
// variance, Black-Litterman and the CCYOE allocation utility.
package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Result is an optimized portfolio.
type Result struct {
	Weights        map[string]float64 `json:"weights"`
	ExpectedReturn float64            `json:"expected_return"`
	Volatility     float64            `json:"volatility"`
	Sharpe         float64            `json:"sharpe"`
}

// penaltyWeight scales the quadratic penalties enforcing the simplex and any
// extra equality constraints.
const penaltyWeight = 1000.0

var successStatuses = map[optimize.Status]bool{
	optimize.Success:             true,
	optimize.GradientThreshold:   true,
	optimize.FunctionConvergence: true,
}

// minimizeOnSimplex minimizes fn over weight vectors that sum to one within
// the given bounds. The sum constraint and the box enter as quadratic
// penalties; Nelder-Mead runs first with a BFGS retry when it fails to
// converge. The winning vector is projected and renormalized.
func minimizeOnSimplex(fn func(w []float64) float64, n int, bounds [][2]float64, x0 []float64) ([]float64, error) {
	if n == 0 {
		return nil, fmt.Errorf("no assets provided")
	}
	if len(bounds) != 0 && len(bounds) != n {
		return nil, fmt.Errorf("expected %d bounds, got %d", n, len(bounds))
	}

	penalized := func(x []float64) float64 {
		proj := projectToBounds(x, bounds)
		obj := fn(proj)
		if math.IsNaN(obj) || math.IsInf(obj, 0) {
			obj = 1e12
		}

		sum := 0.0
		for _, w := range proj {
			sum += w
		}
		obj += penaltyWeight * (sum - 1) * (sum - 1)

		for i, w := range x {
			lo, hi := boundsAt(bounds, i)
			if w < lo {
				obj += penaltyWeight * (lo - w) * (lo - w)
			} else if w > hi {
				obj += penaltyWeight * (w - hi) * (w - hi)
			}
		}
		return obj
	}

	problem := optimize.Problem{Func: penalized}

	initial := x0
	if len(initial) != n {
		initial = make([]float64, n)
		for i := range initial {
			initial[i] = 1.0 / float64(n)
		}
	}

	result, err := optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.NelderMead{})
	if err != nil || !successStatuses[result.Status] {
		result, err = optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.BFGS{})
		if err != nil {
			return nil, fmt.Errorf("optimization failed: %w", err)
		}
		if !successStatuses[result.Status] {
			return nil, fmt.Errorf("optimization did not converge: status=%v", result.Status)
		}
	}

	final := projectToBounds(result.X, bounds)
	sum := 0.0
	for _, w := range final {
		sum += math.Max(0, w)
	}
	if sum <= 0 {
		return nil, fmt.Errorf("optimization produced a degenerate portfolio")
	}
	for i := range final {
		final[i] = math.Max(0, final[i]) / sum
	}
	return final, nil
}

func projectToBounds(x []float64, bounds [][2]float64) []float64 {
	proj := make([]float64, len(x))
	for i, w := range x {
		lo, hi := boundsAt(bounds, i)
		proj[i] = math.Min(math.Max(w, lo), hi)
	}
	return proj
}

func boundsAt(bounds [][2]float64, i int) (float64, float64) {
	if i < len(bounds) {
		return bounds[i][0], bounds[i][1]
	}
	return 0, 1
}

// portfolioStats computes return, volatility and Sharpe (risk-free zero) for
// the weights.
func portfolioStats(weights, mu []float64, sigma *mat.Dense) (ret, vol, sharpe float64) {
	n := len(weights)
	for i := 0; i < n; i++ {
		ret += mu[i] * weights[i]
		for j := 0; j < n; j++ {
			vol += weights[i] * weights[j] * sigma.At(i, j)
		}
	}
	vol = math.Sqrt(math.Max(0, vol))
	if vol > 0 {
		sharpe = ret / vol
	}
	return ret, vol, sharpe
}

// buildInputs validates the shared model inputs and converts them to gonum
// forms.
func buildInputs(expectedReturns map[string]float64, covMatrix [][]float64, assets []string) ([]float64, *mat.Dense, error) {
	n := len(assets)
	if n == 0 {
		return nil, nil, fmt.Errorf("no assets provided")
	}
	if len(covMatrix) != n {
		return nil, nil, fmt.Errorf("covariance matrix size %d doesn't match asset count %d", len(covMatrix), n)
	}

	mu := make([]float64, n)
	for i, asset := range assets {
		ret, ok := expectedReturns[asset]
		if !ok {
			return nil, nil, fmt.Errorf("missing expected return for asset %s", asset)
		}
		mu[i] = ret
	}

	sigma := mat.NewDense(n, n, nil)
	for i := range covMatrix {
		if len(covMatrix[i]) != n {
			return nil, nil, fmt.Errorf("covariance matrix row %d has size %d, expected %d", i, len(covMatrix[i]), n)
		}
		for j := 0; j < n; j++ {
			sigma.Set(i, j, covMatrix[i][j])
		}
	}
	return mu, sigma, nil
}

// assemble maps the weight vector back onto asset names and attaches the
// portfolio statistics.
func assemble(weights, mu []float64, sigma *mat.Dense, assets []string) *Result {
	out := make(map[string]float64, len(assets))
	for i, asset := range assets {
		out[asset] = weights[i]
	}
	ret, vol, sharpe := portfolioStats(weights, mu, sigma)
	return &Result{
		Weights:        out,
		ExpectedReturn: ret,
		Volatility:     vol,
		Sharpe:         sharpe,
	}
}
