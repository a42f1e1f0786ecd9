// Package optimizer searches the redistribution-policy parameter space for
// the configuration that maximizes (or minimizes) a backtest statistic.
package optimizer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cambi-labs/ccyoe/core"
)

// Strategy selects the search algorithm.
type Strategy string

const (
	// StrategyLocal runs a penalized derivative-free descent from the start
	// point, with a gradient-based fallback.
	StrategyLocal Strategy = "local"
	// StrategyEvolution runs a seeded differential evolution over the full
	// bounded space.
	StrategyEvolution Strategy = "differential_evolution"
	// StrategyBasinHopping chains local descents from randomly perturbed
	// start points.
	StrategyBasinHopping Strategy = "basin_hopping"
)

// Config holds configuration for the optimization process.
type Config struct {
	// Maximum number of iterations for the iterative strategies
	MaxIterations int
	// Number of parallel evaluations in sweeps
	Parallelism int
	// Logger instance
	Logger core.Logger
	// Seed for the stochastic strategies
	Seed uint64
	// Population size multiplier for differential evolution
	PopulationSize int
	// Convergence tolerance
	Tolerance float64
	// Number of basin-hopping restarts
	Hops int
}

// NewConfig creates a default configuration.
func NewConfig() *Config {
	return &Config{
		MaxIterations:  300,
		Parallelism:    1,
		Seed:           42,
		PopulationSize: 15,
		Tolerance:      1e-6,
		Hops:           100,
		Logger:         nil,
	}
}

// WithMaxIterations sets the maximum number of iterations.
func (c *Config) WithMaxIterations(iterations int) *Config {
	c.MaxIterations = iterations
	return c
}

// WithParallelism sets the number of parallel evaluations.
func (c *Config) WithParallelism(n int) *Config {
	c.Parallelism = n
	return c
}

// WithLogger sets the logger.
func (c *Config) WithLogger(logger core.Logger) *Config {
	c.Logger = logger
	return c
}

// WithSeed sets the seed used by the stochastic strategies.
func (c *Config) WithSeed(seed uint64) *Config {
	c.Seed = seed
	return c
}

// WithPopulationSize sets the differential-evolution population multiplier.
func (c *Config) WithPopulationSize(n int) *Config {
	c.PopulationSize = n
	return c
}

// WithTolerance sets the convergence tolerance.
func (c *Config) WithTolerance(tol float64) *Config {
	c.Tolerance = tol
	return c
}

// WithHops sets the number of basin-hopping restarts.
func (c *Config) WithHops(n int) *Config {
	c.Hops = n
	return c
}

// Request describes one parameter search.
type Request struct {
	Objective   core.Objective
	Strategy    Strategy
	Bounds      []Bound
	Constraints []Constraint

	// Start is the initial parameter vector; empty uses the defaults.
	Start []float64

	// Simulation window and starting portfolio.
	From    time.Time
	To      time.Time
	Initial map[string]float64

	// RunFinalBacktest re-simulates at the optimum with full detail and
	// attaches the result.
	RunFinalBacktest bool
}

// Optimizer runs parameter searches against one yield series and one base
// policy. Evaluations are memoized across strategies, so repeated visits to
// the same parameter vector cost nothing.
type Optimizer struct {
	series *core.YieldSeries
	base   core.PolicyConfig
	cfg    *Config

	mu    sync.Mutex
	cache map[string]evaluation
	evals int
}

// New creates an optimizer over the given series and base policy.
func New(series *core.YieldSeries, base core.PolicyConfig, cfg *Config) (*Optimizer, error) {
	if series == nil || series.Len() == 0 {
		return nil, core.ErrEmptySeries
	}
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("invalid base policy: %w", err)
	}
	if cfg == nil {
		cfg = NewConfig()
	}
	return &Optimizer{
		series: series,
		base:   base,
		cfg:    cfg,
		cache:  make(map[string]evaluation),
	}, nil
}

// Optimize runs the requested search and returns the best parameters found.
func (o *Optimizer) Optimize(ctx context.Context, req Request) (*core.OptimizationResult, error) {
	if !req.Objective.Valid() {
		return nil, fmt.Errorf("unknown objective %q", string(req.Objective))
	}
	if len(req.Bounds) == 0 {
		req.Bounds = DefaultBounds()
	}
	if len(req.Bounds) != core.NumParams {
		return nil, fmt.Errorf("expected %d bounds, got %d", core.NumParams, len(req.Bounds))
	}
	// Caller constraints extend the canonical set; the weight-sum equality
	// and band inequalities always stay in force.
	req.Constraints = searchConstraints(req.Bounds, req.Constraints)
	if len(req.Start) == 0 {
		req.Start = core.PolicyToParams(o.base)
	}
	if len(req.Start) != core.NumParams {
		return nil, fmt.Errorf("expected %d start values, got %d", core.NumParams, len(req.Start))
	}
	if req.Initial == nil {
		req.Initial = core.DefaultInitialPortfolio()
	}

	o.logf("starting %s search on %s", req.Strategy, req.Objective)

	var (
		result *core.OptimizationResult
		err    error
	)
	switch req.Strategy {
	case StrategyLocal, "":
		result, err = o.optimizeLocal(ctx, req)
	case StrategyEvolution:
		result, err = o.optimizeEvolution(ctx, req)
	case StrategyBasinHopping:
		result, err = o.optimizeBasinHopping(ctx, req)
	default:
		return nil, fmt.Errorf("unknown strategy %q", string(req.Strategy))
	}
	if err != nil {
		return nil, err
	}

	result.Objective = string(req.Objective)
	result.Method = string(req.Strategy)
	if result.Method == "" {
		result.Method = string(StrategyLocal)
	}
	result.FuncEvaluations = o.Evaluations()

	if req.RunFinalBacktest {
		if err := o.attachBacktest(result, req); err != nil {
			return nil, err
		}
	}

	o.logf("%s search finished: value=%v converged=%v evals=%d",
		req.Strategy, result.OptimalValue, result.Converged, result.FuncEvaluations)
	return result, nil
}

// Evaluations returns the number of distinct backtests run so far.
func (o *Optimizer) Evaluations() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.evals
}

func (o *Optimizer) logf(format string, args ...any) {
	if o.cfg.Logger != nil {
		o.cfg.Logger.Infof(format, args...)
	}
}
