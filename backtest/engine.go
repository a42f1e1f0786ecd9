// Package backtest replays historical yield series through the CCYOE
// redistribution policy and measures the resulting portfolio performance.
package backtest

import (
	"fmt"
	"time"

	"github.com/cambi-labs/ccyoe/core"
	"github.com/schollz/progressbar/v3"
)

// Engine simulates the redistribution policy over a yield series. One engine
// owns one series and one policy; Run may be called repeatedly with different
// windows and starting portfolios.
type Engine struct {
	series *core.YieldSeries
	cfg    core.PolicyConfig
	log    core.Logger

	showProgress bool
	keepDetail   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a logger to the engine.
func WithLogger(log core.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithProgressBar renders a terminal progress bar while the simulation runs.
func WithProgressBar() Option {
	return func(e *Engine) { e.showProgress = true }
}

// WithoutDetail drops the per-day value and return series from the result,
// keeping only the aggregate statistics. Parameter searches use this to keep
// memory flat across thousands of evaluations.
func WithoutDetail() Option {
	return func(e *Engine) { e.keepDetail = false }
}

// NewEngine validates the policy and binds it to the yield series.
func NewEngine(series *core.YieldSeries, cfg core.PolicyConfig, opts ...Option) (*Engine, error) {
	if series == nil || series.Len() == 0 {
		return nil, core.ErrEmptySeries
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	e := &Engine{
		series:     series,
		cfg:        cfg,
		log:        core.NopLogger(),
		keepDetail: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run simulates the policy over [start, end] starting from the given per-asset
// balances in USD.
func (e *Engine) Run(start, end time.Time, initial map[string]float64) (*core.BacktestResult, error) {
	window, err := e.series.Window(start, end)
	if err != nil {
		return nil, err
	}

	balances := make(map[string]float64, len(initial))
	for _, asset := range window.Assets() {
		balances[asset] = initial[asset]
	}
	initialValue := core.SumValues(balances)
	if initialValue <= 0 {
		return nil, fmt.Errorf("initial portfolio value must be positive, got %v", initialValue)
	}

	e.log.WithFields(map[string]any{
		"start": window.Start().Format(time.DateOnly),
		"end":   window.End().Format(time.DateOnly),
		"days":  window.Len(),
	}).Info("starting backtest")

	var bar *progressbar.ProgressBar
	if e.showProgress {
		bar = progressbar.Default(int64(window.Len()), "simulating")
	}

	var (
		dailyValues   = make([]core.DailyValue, 0, window.Len())
		events        []core.RebalanceEvent
		lastRebalance time.Time
	)

	for _, point := range window.Points() {
		totalExcess := e.totalExcess(point.Yields)

		if totalExcess >= e.cfg.RebalanceThreshold && e.intervalElapsed(lastRebalance, point.Date) {
			event := e.rebalance(point.Date, totalExcess, balances)
			events = append(events, event)
			lastRebalance = point.Date

			e.log.WithFields(map[string]any{
				"date":   point.Date.Format(time.DateOnly),
				"excess": totalExcess,
				"cost":   event.TransactionCost,
			}).Debug("rebalanced")
		}

		// Valuation happens after redistribution, before the day's accrual.
		dailyValues = append(dailyValues, core.DailyValue{
			Date:     point.Date,
			Total:    core.SumValues(balances),
			Balances: copyBalances(balances),
		})

		for asset, yield := range point.Yields {
			balances[asset] *= 1 + yield/10000/365
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	result := e.assembleResult(window, initialValue, dailyValues, events)

	e.log.WithFields(map[string]any{
		"final_value":  result.FinalValue,
		"total_return": result.TotalReturn,
		"rebalances":   result.RebalanceCount,
	}).Info("backtest finished")

	return result, nil
}

// totalExcess sums the positive excess of each asset's yield over its target.
func (e *Engine) totalExcess(yields map[string]float64) float64 {
	var total float64
	for asset, yield := range yields {
		if excess := yield - e.cfg.TargetYield(asset); excess > 0 {
			total += excess
		}
	}
	return total
}

// intervalElapsed reports whether enough calendar days passed since the last
// rebalance. The first rebalance is always allowed.
func (e *Engine) intervalElapsed(last, now time.Time) bool {
	if last.IsZero() {
		return true
	}
	days := int(now.Sub(last).Hours() / 24)
	return days >= e.cfg.MinRebalanceInterval
}

func copyBalances(balances map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(balances))
	for k, v := range balances {
		out[k] = v
	}
	return out
}
