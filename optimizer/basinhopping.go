package optimizer

import (
	"context"
	"math"

	"github.com/cambi-labs/ccyoe/core"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/optimize"
)

// optimizeBasinHopping escapes local minima by chaining constrained local
// descents from randomly perturbed start points, accepting uphill moves with
// a Metropolis criterion.
func (o *Optimizer) optimizeBasinHopping(ctx context.Context, req Request) (*core.OptimizationResult, error) {
	const temperature = 1.0

	rng := rand.New(rand.NewSource(o.cfg.Seed))
	settings := &optimize.Settings{
		MajorIterations: o.cfg.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   o.cfg.Tolerance,
			Iterations: 20,
		},
	}
	problem := optimize.Problem{
		Func: func(x []float64) float64 { return o.penalized(x, req) },
	}

	descend := func(from []float64) ([]float64, float64, bool) {
		result, err := optimize.Minimize(problem, from, settings, &optimize.NelderMead{})
		if err != nil {
			return from, o.penalized(from, req), false
		}
		x := append([]float64(nil), result.X...)
		projectToBounds(x, req.Bounds)
		return x, o.penalized(x, req), successStatuses[result.Status]
	}

	current, currentScore, converged := descend(req.Start)
	best := append([]float64(nil), current...)
	bestScore := currentScore

	hops := 0
	for hops = 0; hops < o.cfg.Hops; hops++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Step size scales with each parameter's bound range.
		perturbed := make([]float64, len(current))
		for i, b := range req.Bounds {
			step := 0.1 * (b.Max - b.Min)
			perturbed[i] = current[i] + rng.NormFloat64()*step
		}
		projectToBounds(perturbed, req.Bounds)

		candidate, candidateScore, ok := descend(perturbed)

		if candidateScore < bestScore {
			best = append(best[:0], candidate...)
			bestScore = candidateScore
			converged = converged || ok
		}

		// Metropolis acceptance keeps the walk exploring.
		delta := candidateScore - currentScore
		if delta < 0 || rng.Float64() < math.Exp(-delta/temperature) {
			current = candidate
			currentScore = candidateScore
		}
	}

	normalizeWeights(best)
	return o.finish(best, req, converged, hops)
}
