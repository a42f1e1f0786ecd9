package backtest

import (
	"math"

	"github.com/cambi-labs/ccyoe/core"
	"github.com/cambi-labs/ccyoe/metric"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// assembleResult turns the raw simulation trail into the full statistic
// bundle.
func (e *Engine) assembleResult(window *core.YieldSeries, initialValue float64,
	dailyValues []core.DailyValue, events []core.RebalanceEvent) *core.BacktestResult {

	totals := lo.Map(dailyValues, func(v core.DailyValue, _ int) float64 { return v.Total })
	finalValue := totals[len(totals)-1]
	returns := metric.DailyReturns(totals)

	totalReturn := metric.TotalReturn(initialValue, finalValue)
	annualized := metric.AnnualizedReturn(totalReturn, len(returns))
	volatility := metric.Volatility(returns)
	maxDrawdown := metric.MaxDrawdown(returns)
	downside := metric.DownsideDeviation(returns, 0)

	var transactionCosts, gasCosts float64
	for _, event := range events {
		transactionCosts += event.TransactionCost
		gasCosts += event.GasCost
	}
	totalCosts := transactionCosts + gasCosts

	days := len(dailyValues)
	var frequency float64
	if days > 0 {
		frequency = float64(len(events)) / (float64(days) / metric.PeriodsPerYear)
	}

	result := &core.BacktestResult{
		StartDate:    window.Start(),
		EndDate:      window.End(),
		InitialValue: initialValue,
		FinalValue:   finalValue,

		TotalReturn:       totalReturn,
		AnnualizedReturn:  annualized,
		Volatility:        volatility,
		SharpeRatio:       metric.SharpeRatio(annualized, volatility, 0),
		SortinoRatio:      metric.SortinoRatio(annualized, downside, 0),
		CalmarRatio:       metric.CalmarRatio(annualized, maxDrawdown),
		MaxDrawdown:       maxDrawdown,
		WinRate:           metric.WinRate(returns),
		VaR95:             metric.HistoricalVaR(returns, 0.95),
		VaR99:             metric.HistoricalVaR(returns, 0.99),
		ExpectedShortfall: metric.ExpectedShortfall(returns, 0.95),

		RebalanceCount:     len(events),
		RebalanceFrequency: frequency,
		TotalCosts:         totalCosts,
		NetYieldAfterCosts: totalReturn - totalCosts/initialValue,
		AvgExcessYield:     e.averageExcessYield(window),

		YieldImprovement: e.yieldImprovement(window),
		Correlations:     e.correlations(window),
	}

	if e.keepDetail {
		result.DailyValues = dailyValues
		result.DailyReturns = returns
		result.RebalanceEvents = events
	}
	return result
}

// averageExcessYield is the mean positive excess over target, averaged across
// assets.
func (e *Engine) averageExcessYield(window *core.YieldSeries) float64 {
	assets := window.Assets()
	if len(assets) == 0 {
		return 0
	}
	var sum float64
	for _, asset := range assets {
		column, err := window.Column(asset)
		if err != nil {
			continue
		}
		sum += math.Max(0, stat.Mean(column, nil)-e.cfg.TargetYield(asset))
	}
	return sum / float64(len(assets))
}

// yieldImprovement reports, per asset, the mean realized yield minus the
// policy target in basis points.
func (e *Engine) yieldImprovement(window *core.YieldSeries) map[string]float64 {
	out := make(map[string]float64)
	for _, asset := range window.Assets() {
		column, err := window.Column(asset)
		if err != nil {
			continue
		}
		out[asset] = stat.Mean(column, nil) - e.cfg.TargetYield(asset)
	}
	return out
}

// correlations summarizes the pairwise correlations of the per-asset yield
// change series.
func (e *Engine) correlations(window *core.YieldSeries) core.CorrelationSummary {
	assets := window.Assets()
	columns := make(map[string][]float64, len(assets))
	for _, asset := range assets {
		column, err := window.Column(asset)
		if err != nil || len(column) < 3 {
			return core.CorrelationSummary{}
		}
		changes := make([]float64, len(column)-1)
		for i := 1; i < len(column); i++ {
			changes[i-1] = column[i] - column[i-1]
		}
		columns[asset] = changes
	}
	matrix := metric.CorrelationMatrix(columns, assets)
	return metric.SummarizeCorrelations(matrix, assets)
}
