package optimizer

import (
	"context"
	"math"

	"github.com/cambi-labs/ccyoe/core"
	"gonum.org/v1/gonum/optimize"
)

// successStatuses are the convergence statuses accepted from gonum.
var successStatuses = map[optimize.Status]bool{
	optimize.Success:             true,
	optimize.GradientThreshold:   true,
	optimize.FunctionConvergence: true,
}

// optimizeLocal minimizes the penalized objective with a derivative-free
// Nelder-Mead descent from the start point, then retries with BFGS on the
// bounds-only relaxation and keeps the better of the two.
func (o *Optimizer) optimizeLocal(ctx context.Context, req Request) (*core.OptimizationResult, error) {
	best, _, converged, iterations, err := o.localSearch(ctx, req, func(x []float64) float64 {
		return o.objective(x, req)
	})
	if err != nil {
		return nil, err
	}
	return o.finish(best, req, converged, iterations)
}

// localSearch is the descent core shared by the single-objective local
// strategy and the composite search. It minimizes score with the constraint
// and box penalties folded in, retries with BFGS over the softer bounds-only
// surface, and returns the projected, renormalized winner.
func (o *Optimizer) localSearch(ctx context.Context, req Request, score func([]float64) float64) (
	best []float64, bestScore float64, converged bool, iterations int, err error) {

	settings := &optimize.Settings{
		MajorIterations: o.cfg.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   o.cfg.Tolerance,
			Iterations: 20,
		},
	}

	penalized := func(x []float64) float64 {
		s := score(x)
		if math.IsInf(s, 1) {
			return 1e12 + penalty(x, req.Constraints) + boundsPenalty(x, req.Bounds)
		}
		return s + penalty(x, req.Constraints) + boundsPenalty(x, req.Bounds)
	}
	full := optimize.Problem{Func: penalized}

	best = append([]float64(nil), req.Start...)
	bestScore = penalized(best)

	if result, err := optimize.Minimize(full, req.Start, settings, &optimize.NelderMead{}); err == nil {
		iterations += result.MajorIterations
		if result.F < bestScore {
			best = append(best[:0], result.X...)
			bestScore = result.F
		}
		converged = successStatuses[result.Status]
	}

	if err := ctx.Err(); err != nil {
		return nil, 0, false, iterations, err
	}

	// Gradient fallback over the softer bounds-only surface; the weight-sum
	// equality is restored by renormalizing the winner.
	relaxed := optimize.Problem{
		Func: func(x []float64) float64 {
			s := score(x)
			if math.IsInf(s, 1) {
				return 1e12 + boundsPenalty(x, req.Bounds)
			}
			return s + boundsPenalty(x, req.Bounds)
		},
	}
	if result, err := optimize.Minimize(relaxed, req.Start, settings, &optimize.BFGS{}); err == nil {
		iterations += result.MajorIterations
		candidate := append([]float64(nil), result.X...)
		projectToBounds(candidate, req.Bounds)
		normalizeWeights(candidate)
		if score := penalized(candidate); score < bestScore {
			best = candidate
			bestScore = score
			converged = successStatuses[result.Status]
		}
	}

	projectToBounds(best, req.Bounds)
	normalizeWeights(best)
	return best, bestScore, converged, iterations, nil
}

// normalizeWeights rescales the four allocation weights to sum to one.
func normalizeWeights(x []float64) {
	if len(x) < 4 {
		return
	}
	sum := x[0] + x[1] + x[2] + x[3]
	if sum <= 0 {
		return
	}
	for i := 0; i < 4; i++ {
		x[i] /= sum
	}
}
