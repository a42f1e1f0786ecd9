package optimizer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cambi-labs/ccyoe/backtest"
	"github.com/cambi-labs/ccyoe/core"
)

// SensitivityPoint is one sample of a single-parameter sweep.
type SensitivityPoint struct {
	ParameterValue float64 `json:"parameter_value"`
	ObjectiveValue float64 `json:"objective_value"`
	TotalReturn    float64 `json:"total_return"`
	Volatility     float64 `json:"volatility"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	MaxDrawdown    float64 `json:"max_drawdown"`
}

// Sensitivity sweeps one parameter across its bound while holding the others
// at the request's start vector, and reports the objective plus headline
// statistics at each sample. Evaluations fan out over the configured
// parallelism.
func (o *Optimizer) Sensitivity(ctx context.Context, req Request, param string, samples int) ([]SensitivityPoint, error) {
	index := -1
	for i, name := range core.ParamNames {
		if name == param {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, fmt.Errorf("unknown parameter %q", param)
	}
	if samples < 2 {
		return nil, fmt.Errorf("need at least 2 samples, got %d", samples)
	}
	if !req.Objective.Valid() {
		return nil, fmt.Errorf("unknown objective %q", string(req.Objective))
	}
	if len(req.Bounds) == 0 {
		req.Bounds = DefaultBounds()
	}
	if len(req.Start) == 0 {
		req.Start = core.PolicyToParams(o.base)
	}
	if req.Initial == nil {
		req.Initial = core.DefaultInitialPortfolio()
	}

	bound := req.Bounds[index]
	step := (bound.Max - bound.Min) / float64(samples-1)

	parallelism := o.cfg.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	var (
		points    = make([]SensitivityPoint, 0, samples)
		mutex     sync.Mutex
		wg        sync.WaitGroup
		errCh     = make(chan error, 1)
		semaphore = make(chan struct{}, parallelism)
	)

	for i := 0; i < samples; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case err := <-errCh:
			return nil, err
		default:
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(value float64) {
			defer wg.Done()
			defer func() { <-semaphore }()

			point, err := o.sampleSensitivity(req, index, value)
			if err != nil {
				select {
				case errCh <- err:
				default:
				}
				return
			}

			mutex.Lock()
			points = append(points, point)
			mutex.Unlock()
		}(bound.Min + float64(i)*step)
	}

	wg.Wait()

	select {
	case err := <-errCh:
		return nil, err
	default:
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].ParameterValue < points[j].ParameterValue
	})
	return points, nil
}

// sampleSensitivity runs one backtest with the parameter overridden. When the
// swept parameter is an allocation weight, the remaining weights are rescaled
// so the policy stays valid.
func (o *Optimizer) sampleSensitivity(req Request, index int, value float64) (SensitivityPoint, error) {
	x := append([]float64(nil), req.Start...)
	x[index] = value
	if index < 4 {
		rebalanceWeights(x, index)
	}

	cfg, err := core.ParamsToPolicy(o.base, x)
	if err != nil {
		return SensitivityPoint{}, err
	}
	engine, err := backtest.NewEngine(o.series, cfg, backtest.WithoutDetail())
	if err != nil {
		return SensitivityPoint{}, fmt.Errorf("%s=%v: %w", core.ParamNames[index], value, err)
	}
	result, err := engine.Run(req.From, req.To, req.Initial)
	if err != nil {
		return SensitivityPoint{}, err
	}
	objective, err := req.Objective.Value(result)
	if err != nil {
		return SensitivityPoint{}, err
	}

	return SensitivityPoint{
		ParameterValue: value,
		ObjectiveValue: objective,
		TotalReturn:    result.TotalReturn,
		Volatility:     result.Volatility,
		SharpeRatio:    result.SharpeRatio,
		MaxDrawdown:    result.MaxDrawdown,
	}, nil
}

// rebalanceWeights rescales the allocation weights other than fixed so the
// four still sum to one.
func rebalanceWeights(x []float64, fixed int) {
	var others float64
	for i := 0; i < 4; i++ {
		if i != fixed {
			others += x[i]
		}
	}
	remaining := 1 - x[fixed]
	if others <= 0 || remaining < 0 {
		return
	}
	for i := 0; i < 4; i++ {
		if i != fixed {
			x[i] *= remaining / others
		}
	}
}
