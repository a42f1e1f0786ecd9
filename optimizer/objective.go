package optimizer

import (
	"fmt"
	"math"

	"github.com/cambi-labs/ccyoe/backtest"
	"github.com/cambi-labs/ccyoe/core"
)

// evaluation is the outcome of one backtest at a parameter vector. Failed
// simulations carry ok=false instead of an error so search loops can treat
// them uniformly as infeasible points.
type evaluation struct {
	value float64
	ok    bool
}

// evaluate runs a detail-free backtest at x and extracts the objective value.
// Results are memoized on the parameter vector, the objective and the window.
func (o *Optimizer) evaluate(x []float64, req Request) evaluation {
	key := cacheKey(x, req)

	o.mu.Lock()
	if cached, ok := o.cache[key]; ok {
		o.mu.Unlock()
		return cached
	}
	o.mu.Unlock()

	result := o.run(x, req)

	o.mu.Lock()
	o.cache[key] = result
	o.evals++
	o.mu.Unlock()
	return result
}

func (o *Optimizer) run(x []float64, req Request) evaluation {
	// Search iterates through infeasible space; project onto a valid policy
	// so the objective stays informative everywhere. The quadratic penalties
	// on the raw vector still pull the search back toward feasibility.
	projected := append([]float64(nil), x...)
	for i := 0; i < 4 && i < len(projected); i++ {
		projected[i] = core.Clamp(projected[i], 0, 1)
	}
	normalizeWeights(projected)
	if len(projected) > 4 && projected[4] <= 0 {
		return evaluation{}
	}
	if len(projected) > 5 && projected[5] < 0 {
		projected[5] = 0
	}

	cfg, err := core.ParamsToPolicy(o.base, projected)
	if err != nil {
		return evaluation{}
	}
	if err := cfg.Validate(); err != nil {
		return evaluation{}
	}

	engine, err := backtest.NewEngine(o.series, cfg, backtest.WithoutDetail())
	if err != nil {
		return evaluation{}
	}
	result, err := engine.Run(req.From, req.To, req.Initial)
	if err != nil {
		return evaluation{}
	}

	value, err := req.Objective.Value(result)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return evaluation{}
	}
	return evaluation{value: value, ok: true}
}

// objective converts an evaluation into a minimization score: maximization
// objectives are negated, failures map to +Inf.
func (o *Optimizer) objective(x []float64, req Request) float64 {
	eval := o.evaluate(x, req)
	if !eval.ok {
		return math.Inf(1)
	}
	if req.Objective.Maximize() {
		return -eval.value
	}
	return eval.value
}

// penalized is the search objective with constraint and bounds penalties
// folded in.
func (o *Optimizer) penalized(x []float64, req Request) float64 {
	score := o.objective(x, req)
	if math.IsInf(score, 1) {
		// Infeasible even before penalties; keep the penalty gradient so
		// the search can climb back into the valid region.
		return 1e12 + penalty(x, req.Constraints) + boundsPenalty(x, req.Bounds)
	}
	return score + penalty(x, req.Constraints) + boundsPenalty(x, req.Bounds)
}

// finish looks up the raw objective value at the optimum and assembles the
// result bundle.
func (o *Optimizer) finish(x []float64, req Request, converged bool, iterations int) (*core.OptimizationResult, error) {
	eval := o.evaluate(x, req)
	if !eval.ok {
		return nil, core.ErrNoResult
	}
	return &core.OptimizationResult{
		OptimalParams: core.NamedParams(x),
		OptimalValue:  eval.value,
		Converged:     converged,
		Iterations:    iterations,
	}, nil
}

// attachBacktest re-simulates the optimum with full detail.
func (o *Optimizer) attachBacktest(result *core.OptimizationResult, req Request) error {
	x := make([]float64, 0, core.NumParams)
	for _, name := range core.ParamNames {
		x = append(x, result.OptimalParams[name])
	}
	cfg, err := core.ParamsToPolicy(o.base, x)
	if err != nil {
		return err
	}
	engine, err := backtest.NewEngine(o.series, cfg)
	if err != nil {
		return fmt.Errorf("optimal parameters produced an invalid policy: %w", err)
	}
	full, err := engine.Run(req.From, req.To, req.Initial)
	if err != nil {
		return err
	}
	result.Backtest = full
	return nil
}

// cacheKey renders a parameter vector plus the evaluation context as a
// stable key.
func cacheKey(x []float64, req Request) string {
	key := make([]byte, 0, len(x)*20+48)
	key = fmt.Appendf(key, "%s|%d|%d|", req.Objective, req.From.Unix(), req.To.Unix())
	for _, v := range x {
		key = fmt.Appendf(key, "%.10g|", v)
	}
	return string(key)
}
