package models

import (
	"math"
)

// Bucket priorities for the CCYOE allocation utility, in the fixed order
// under-supplied, strategic growth, proportional, treasury.
var bucketPriorities = [4]float64{2.0, 1.5, 1.0, 0.5}

// BucketNames mirrors the priority order.
var BucketNames = [4]string{"under_supplied", "strategic_growth", "proportional", "treasury"}

// DefaultBucketBounds boxes each bucket's share of the excess.
func DefaultBucketBounds() [][2]float64 {
	return [][2]float64{
		{0.30, 0.50},
		{0.20, 0.40},
		{0.10, 0.30},
		{0.05, 0.20},
	}
}

// CCYOEResult is the optimized split of the excess yield across buckets.
type CCYOEResult struct {
	Allocations map[string]float64 `json:"allocations"`
	Utility     float64            `json:"utility"`
	TotalExcess float64            `json:"total_excess"`
}

// CCYOEAllocation optimizes the bucket split of an excess-yield pool. The
// utility is concave in each bucket, Σ priority_i·sqrt(w_i·excess), minus the
// linear rebalancing cost; diminishing returns push the optimum away from
// all-in allocations. A pool with no excess yields the zero split.
func CCYOEAllocation(totalExcess, rebalanceCost float64, bounds [][2]float64) (*CCYOEResult, error) {
	if totalExcess <= 0 {
		return &CCYOEResult{Allocations: map[string]float64{}}, nil
	}
	if len(bounds) == 0 {
		bounds = DefaultBucketBounds()
	}

	utility := func(w []float64) float64 {
		var u, total float64
		for i, share := range w {
			if share < 0 {
				return math.Inf(-1)
			}
			u += bucketPriorities[i] * math.Sqrt(share*totalExcess)
			total += share
		}
		return u - rebalanceCost*total*totalExcess
	}

	x0 := []float64{0.4, 0.3, 0.2, 0.1}
	weights, err := minimizeOnSimplex(func(w []float64) float64 {
		return -utility(w)
	}, 4, bounds, x0)
	if err != nil {
		return nil, err
	}

	allocations := make(map[string]float64, 4)
	for i, name := range BucketNames {
		allocations[name] = weights[i]
	}
	return &CCYOEResult{
		Allocations: allocations,
		Utility:     utility(weights),
		TotalExcess: totalExcess,
	}, nil
}
