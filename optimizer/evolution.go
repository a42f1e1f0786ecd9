package optimizer

import (
	"context"
	"math"

	"github.com/cambi-labs/ccyoe/core"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

// optimizeEvolution runs a seeded DE/rand/1/bin differential evolution over
// the bounded space, with the constraint penalties folded into the fitness.
func (o *Optimizer) optimizeEvolution(ctx context.Context, req Request) (*core.OptimizationResult, error) {
	best, _, generations, converged, err := o.evolve(ctx, req, func(x []float64) float64 {
		return o.penalized(x, req)
	})
	if err != nil {
		return nil, err
	}

	projectToBounds(best, req.Bounds)
	normalizeWeights(best)
	return o.finish(best, req, converged, generations)
}

// evolve is the differential-evolution core shared by the single- and
// multi-objective searches. Fitness is minimized.
func (o *Optimizer) evolve(ctx context.Context, req Request, fitnessFn func([]float64) float64) (
	best []float64, bestScore float64, generations int, converged bool, err error) {

	const crossover = 0.9

	dim := core.NumParams
	popSize := o.cfg.PopulationSize * dim
	if popSize < 4 {
		popSize = 4
	}
	rng := rand.New(rand.NewSource(o.cfg.Seed))

	// Initialize uniformly over the box, seeding the start point as the
	// first member.
	population := make([][]float64, popSize)
	fitness := make([]float64, popSize)
	for i := range population {
		member := make([]float64, dim)
		if i == 0 {
			copy(member, req.Start)
		} else {
			for j, b := range req.Bounds {
				member[j] = b.Min + rng.Float64()*(b.Max-b.Min)
			}
		}
		population[i] = member
		fitness[i] = fitnessFn(member)
	}

	for generations = 0; generations < o.cfg.MaxIterations; generations++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, generations, false, err
		}

		// Dithered mutation factor, resampled per generation.
		mutation := 0.5 + 0.5*rng.Float64()

		for i := range population {
			a, b, c := distinctIndexes(rng, popSize, i)

			trial := make([]float64, dim)
			forced := rng.Intn(dim)
			for j := 0; j < dim; j++ {
				if j == forced || rng.Float64() < crossover {
					trial[j] = population[a][j] +
						mutation*(population[b][j]-population[c][j])
				} else {
					trial[j] = population[i][j]
				}
			}
			projectToBounds(trial, req.Bounds)

			if score := fitnessFn(trial); score < fitness[i] {
				population[i] = trial
				fitness[i] = score
			}
		}

		mean, stdDev := stat.MeanStdDev(fitness, nil)
		if stdDev <= o.cfg.Tolerance*(1+math.Abs(mean)) {
			converged = true
			break
		}
	}

	bestIdx := 0
	for i, f := range fitness {
		if f < fitness[bestIdx] {
			bestIdx = i
		}
	}
	best = append([]float64(nil), population[bestIdx]...)
	return best, fitness[bestIdx], generations, converged, nil
}

// distinctIndexes draws three distinct population indexes, all different
// from excluded.
func distinctIndexes(rng *rand.Rand, n, excluded int) (int, int, int) {
	pick := func(taken ...int) int {
		for {
			idx := rng.Intn(n)
			ok := idx != excluded
			for _, t := range taken {
				if idx == t {
					ok = false
				}
			}
			if ok {
				return idx
			}
		}
	}
	a := pick()
	b := pick(a)
	c := pick(a, b)
	return a, b, c
}
