package core

import "time"

// RebalanceEvent records one threshold-triggered redistribution.
type RebalanceEvent struct {
	Date            time.Time          `json:"date"`
	TotalExcess     float64            `json:"total_excess"`
	Redistribution  map[string]float64 `json:"redistribution"`
	PortfolioImpact map[string]float64 `json:"portfolio_impact"`
	TransactionCost float64            `json:"transaction_cost"`
	GasCost         float64            `json:"gas_cost"`
}

// DailyValue is one portfolio valuation snapshot.
type DailyValue struct {
	Date     time.Time          `json:"date"`
	Total    float64            `json:"total"`
	Balances map[string]float64 `json:"balances"`
}

// CorrelationSummary condenses the pairwise daily-return correlations.
type CorrelationSummary struct {
	Average float64              `json:"average"`
	Max     float64              `json:"max"`
	Min     float64              `json:"min"`
	Matrix  map[string][]float64 `json:"matrix,omitempty"`
}

// BacktestResult is the complete outcome of one simulation run.
type BacktestResult struct {
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	InitialValue float64   `json:"initial_value"`
	FinalValue   float64   `json:"final_value"`

	TotalReturn       float64 `json:"total_return"`
	AnnualizedReturn  float64 `json:"annualized_return"`
	Volatility        float64 `json:"volatility"`
	SharpeRatio       float64 `json:"sharpe_ratio"`
	SortinoRatio      float64 `json:"sortino_ratio"`
	CalmarRatio       float64 `json:"calmar_ratio"`
	MaxDrawdown       float64 `json:"max_drawdown"`
	WinRate           float64 `json:"win_rate"`
	VaR95             float64 `json:"var_95"`
	VaR99             float64 `json:"var_99"`
	ExpectedShortfall float64 `json:"expected_shortfall"`

	RebalanceCount     int     `json:"rebalance_count"`
	RebalanceFrequency float64 `json:"rebalance_frequency"`
	TotalCosts         float64 `json:"total_costs"`
	NetYieldAfterCosts float64 `json:"net_yield_after_costs"`
	AvgExcessYield     float64 `json:"avg_excess_yield"`

	YieldImprovement map[string]float64 `json:"yield_improvement"`
	Correlations     CorrelationSummary `json:"correlations"`

	DailyValues     []DailyValue     `json:"daily_values,omitempty"`
	DailyReturns    []float64        `json:"daily_returns,omitempty"`
	RebalanceEvents []RebalanceEvent `json:"rebalance_events,omitempty"`
}

// Days returns the number of simulated periods.
func (r *BacktestResult) Days() int { return len(r.DailyValues) }

// OptimizationResult is the outcome of one parameter search.
type OptimizationResult struct {
	OptimalParams   map[string]float64 `json:"optimal_params"`
	OptimalValue    float64            `json:"optimal_value"`
	Objective       string             `json:"objective"`
	Method          string             `json:"method"`
	Converged       bool               `json:"converged"`
	Iterations      int                `json:"iterations"`
	FuncEvaluations int                `json:"func_evaluations"`

	// Backtest holds the full simulation at the optimal parameters when the
	// caller requested it.
	Backtest *BacktestResult `json:"backtest,omitempty"`
}
