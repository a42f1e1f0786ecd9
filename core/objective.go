package core

import "fmt"

// Objective selects which backtest statistic a parameter search optimizes.
// The set is closed; dispatch happens through Value and Maximize rather than
// reflection on metric names.
type Objective string

const (
	ObjectiveTotalReturn      Objective = "total_return"
	ObjectiveAnnualizedReturn Objective = "annualized_return"
	ObjectiveSharpeRatio      Objective = "sharpe_ratio"
	ObjectiveSortinoRatio     Objective = "sortino_ratio"
	ObjectiveCalmarRatio      Objective = "calmar_ratio"
	ObjectiveMaxDrawdown      Objective = "max_drawdown"
	ObjectiveVolatility       Objective = "volatility"
)

// Objectives returns all supported objectives.
func Objectives() []Objective {
	return []Objective{
		ObjectiveTotalReturn,
		ObjectiveAnnualizedReturn,
		ObjectiveSharpeRatio,
		ObjectiveSortinoRatio,
		ObjectiveCalmarRatio,
		ObjectiveMaxDrawdown,
		ObjectiveVolatility,
	}
}

// Valid reports whether o is one of the supported objectives.
func (o Objective) Valid() bool {
	switch o {
	case ObjectiveTotalReturn, ObjectiveAnnualizedReturn, ObjectiveSharpeRatio,
		ObjectiveSortinoRatio, ObjectiveCalmarRatio, ObjectiveMaxDrawdown,
		ObjectiveVolatility:
		return true
	}
	return false
}

// Maximize reports the search direction: true for return/ratio objectives,
// false for drawdown and volatility.
func (o Objective) Maximize() bool {
	switch o {
	case ObjectiveMaxDrawdown, ObjectiveVolatility:
		return false
	}
	return true
}

// Value extracts the objective statistic from a backtest result.
func (o Objective) Value(r *BacktestResult) (float64, error) {
	switch o {
	case ObjectiveTotalReturn:
		return r.TotalReturn, nil
	case ObjectiveAnnualizedReturn:
		return r.AnnualizedReturn, nil
	case ObjectiveSharpeRatio:
		return r.SharpeRatio, nil
	case ObjectiveSortinoRatio:
		return r.SortinoRatio, nil
	case ObjectiveCalmarRatio:
		return r.CalmarRatio, nil
	case ObjectiveMaxDrawdown:
		return r.MaxDrawdown, nil
	case ObjectiveVolatility:
		return r.Volatility, nil
	}
	return 0, fmt.Errorf("unknown objective %q", string(o))
}
