package optimizer

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cambi-labs/ccyoe/core"
)

// CompositeObjective is a weighted blend of objectives. Minimization
// objectives (drawdown, volatility) enter with their sign flipped so a larger
// composite is always better.
type CompositeObjective map[core.Objective]float64

// NewComposite pairs objectives with weights. A nil weight slice assigns an
// equal share to every objective.
func NewComposite(objectives []core.Objective, weights []float64) (CompositeObjective, error) {
	if len(objectives) == 0 {
		return nil, fmt.Errorf("composite objective needs at least one component")
	}
	if weights != nil && len(weights) != len(objectives) {
		return nil, fmt.Errorf("expected %d weights, got %d", len(objectives), len(weights))
	}

	composite := make(CompositeObjective, len(objectives))
	for i, objective := range objectives {
		if weights == nil {
			composite[objective] = 1 / float64(len(objectives))
		} else {
			composite[objective] = weights[i]
		}
	}
	if err := composite.Validate(); err != nil {
		return nil, err
	}
	return composite, nil
}

// Validate checks that every component is a known objective with a positive
// weight.
func (c CompositeObjective) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("composite objective needs at least one component")
	}
	for objective, weight := range c {
		if !objective.Valid() {
			return fmt.Errorf("unknown objective %q", string(objective))
		}
		if weight <= 0 {
			return fmt.Errorf("objective %s weight must be positive, got %v", objective, weight)
		}
	}
	return nil
}

// Score folds a backtest result into the composite value.
func (c CompositeObjective) Score(result *core.BacktestResult) (float64, error) {
	var total float64
	for objective, weight := range c {
		value, err := objective.Value(result)
		if err != nil {
			return 0, err
		}
		if !objective.Maximize() {
			value = -value
		}
		total += weight * value
	}
	return total, nil
}

// OptimizeComposite searches for the parameters maximizing the weighted
// composite. The composite is evaluated through per-component cached
// single-objective runs and minimized with the local-descent machinery.
func (o *Optimizer) OptimizeComposite(ctx context.Context, req Request, composite CompositeObjective) (*core.OptimizationResult, error) {
	if err := composite.Validate(); err != nil {
		return nil, err
	}

	// Normalize component weights so penalty scales stay comparable across
	// composites.
	var weightSum float64
	for _, w := range composite {
		weightSum += w
	}

	scored := req
	// Reuse the single-objective machinery by scoring each component and
	// picking any valid member as the carrier; the evaluation below
	// overrides the value.
	for objective := range composite {
		scored.Objective = objective
		break
	}
	if len(scored.Bounds) == 0 {
		scored.Bounds = DefaultBounds()
	}
	scored.Constraints = searchConstraints(scored.Bounds, req.Constraints)
	if len(scored.Start) == 0 {
		scored.Start = core.PolicyToParams(o.base)
	}
	if scored.Initial == nil {
		scored.Initial = core.DefaultInitialPortfolio()
	}

	compositeScore := func(x []float64) float64 {
		var total float64
		for objective, weight := range composite {
			component := scored
			component.Objective = objective
			eval := o.evaluate(x, component)
			if !eval.ok {
				return math.Inf(1)
			}
			value := eval.value
			if !objective.Maximize() {
				value = -value
			}
			total += weight / weightSum * value
		}
		return -total // maximize the composite
	}

	result, err := o.searchComposite(ctx, scored, compositeScore)
	if err != nil {
		return nil, err
	}
	result.Objective = composite.String()
	result.FuncEvaluations = o.Evaluations()
	if req.RunFinalBacktest {
		if err := o.attachBacktest(result, scored); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// searchComposite runs the local-descent machinery against an arbitrary score
// function.
func (o *Optimizer) searchComposite(ctx context.Context, req Request, score func([]float64) float64) (*core.OptimizationResult, error) {
	best, _, converged, iterations, err := o.localSearch(ctx, req, score)
	if err != nil {
		return nil, err
	}

	final := score(best)
	if math.IsInf(final, 1) || math.IsNaN(final) {
		return nil, core.ErrNoResult
	}
	return &core.OptimizationResult{
		OptimalParams: core.NamedParams(best),
		OptimalValue:  -final,
		Method:        string(StrategyLocal),
		Converged:     converged,
		Iterations:    iterations,
	}, nil
}

// String renders the composite as "objective*weight+..." in lexical order.
func (c CompositeObjective) String() string {
	names := make([]string, 0, len(c))
	for objective := range c {
		names = append(names, string(objective))
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s*%.2f", name, c[core.Objective(name)]))
	}
	return strings.Join(parts, "+")
}
