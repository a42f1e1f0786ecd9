package backtest

import (
	"fmt"
	"time"

	"github.com/cambi-labs/ccyoe/core"
	"gonum.org/v1/gonum/stat"
)

// ScenarioKind selects a stress transform applied to a yield series before
// simulation.
type ScenarioKind string

const (
	// ScenarioYieldShock shifts every yield by Magnitude basis points.
	ScenarioYieldShock ScenarioKind = "yield_shock"
	// ScenarioYieldScale scales every yield by (1 + Magnitude).
	ScenarioYieldScale ScenarioKind = "yield_scale"
	// ScenarioVolatilityScale widens each asset's deviations around its own
	// mean by the Magnitude factor.
	ScenarioVolatilityScale ScenarioKind = "volatility_scale"
	// ScenarioCorrelationBreakdown blends every asset toward the cross-asset
	// mean path; Magnitude 1 collapses all assets onto it.
	ScenarioCorrelationBreakdown ScenarioKind = "correlation_breakdown"
)

// Scenario is one named stress transform.
type Scenario struct {
	Name      string
	Kind      ScenarioKind
	Magnitude float64
}

// DefaultScenarios covers the standard crisis playbook.
func DefaultScenarios() []Scenario {
	return []Scenario{
		{Name: "yields_down_200bp", Kind: ScenarioYieldShock, Magnitude: -200},
		{Name: "yields_down_50", Kind: ScenarioYieldScale, Magnitude: -0.5},
		{Name: "yields_up_50", Kind: ScenarioYieldScale, Magnitude: 0.5},
		{Name: "volatility_x3", Kind: ScenarioVolatilityScale, Magnitude: 3},
		{Name: "correlation_breakdown", Kind: ScenarioCorrelationBreakdown, Magnitude: 0.9},
	}
}

// Apply returns a new series with the transform applied. The input series is
// never modified.
func (s Scenario) Apply(series *core.YieldSeries) (*core.YieldSeries, error) {
	assets := series.Assets()
	points := series.Points()

	means := make(map[string]float64, len(assets))
	for _, asset := range assets {
		column, err := series.Column(asset)
		if err != nil {
			return nil, err
		}
		means[asset] = stat.Mean(column, nil)
	}

	transformed := make([]core.YieldPoint, len(points))
	for i, point := range points {
		yields := make(map[string]float64, len(assets))

		var crossMean float64
		for _, asset := range assets {
			crossMean += point.Yields[asset]
		}
		crossMean /= float64(len(assets))

		for _, asset := range assets {
			value := point.Yields[asset]
			switch s.Kind {
			case ScenarioYieldShock:
				value += s.Magnitude
			case ScenarioYieldScale:
				value *= 1 + s.Magnitude
			case ScenarioVolatilityScale:
				value = means[asset] + (value-means[asset])*s.Magnitude
			case ScenarioCorrelationBreakdown:
				value = value*(1-s.Magnitude) + crossMean*s.Magnitude
			default:
				return nil, fmt.Errorf("unknown scenario kind %q", string(s.Kind))
			}
			yields[asset] = value
		}
		transformed[i] = core.YieldPoint{Date: point.Date, Yields: yields}
	}

	return core.NewYieldSeries(transformed)
}

// RunStressTest simulates the policy under each scenario and returns the
// per-scenario results keyed by scenario name.
func RunStressTest(series *core.YieldSeries, cfg core.PolicyConfig, scenarios []Scenario,
	start, end time.Time, initial map[string]float64, opts ...Option) (map[string]*core.BacktestResult, error) {

	results := make(map[string]*core.BacktestResult, len(scenarios))
	for _, scenario := range scenarios {
		stressed, err := scenario.Apply(series)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		engine, err := NewEngine(stressed, cfg, opts...)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		result, err := engine.Run(start, end, initial)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		results[scenario.Name] = result
	}
	return results, nil
}
