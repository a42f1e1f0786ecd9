package backtest

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/cambi-labs/ccyoe/core"
	"github.com/cambi-labs/ccyoe/metric"
	"github.com/olekukonko/tablewriter"
)

// WriteSummary renders the result as a metrics table, a per-asset yield
// table, a daily-return histogram and a bootstrap confidence interval.
func WriteSummary(w io.Writer, result *core.BacktestResult) {
	buffer := bytes.NewBuffer(nil)
	table := tablewriter.NewWriter(buffer)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	rows := [][]string{
		{"Period", fmt.Sprintf("%s ~ %s",
			result.StartDate.Format(time.DateOnly), result.EndDate.Format(time.DateOnly))},
		{"Initial Value", fmt.Sprintf("$%.0f", result.InitialValue)},
		{"Final Value", fmt.Sprintf("$%.0f", result.FinalValue)},
		{"Total Return", fmt.Sprintf("%.2f %%", result.TotalReturn*100)},
		{"Annualized Return", fmt.Sprintf("%.2f %%", result.AnnualizedReturn*100)},
		{"Volatility", fmt.Sprintf("%.2f %%", result.Volatility*100)},
		{"Sharpe Ratio", fmt.Sprintf("%.3f", result.SharpeRatio)},
		{"Sortino Ratio", fmt.Sprintf("%.3f", result.SortinoRatio)},
		{"Calmar Ratio", fmt.Sprintf("%.3f", result.CalmarRatio)},
		{"Max Drawdown", fmt.Sprintf("%.2f %%", result.MaxDrawdown*100)},
		{"Win Rate", fmt.Sprintf("%.1f %%", result.WinRate*100)},
		{"VaR 95", fmt.Sprintf("%.3f %%", result.VaR95*100)},
		{"VaR 99", fmt.Sprintf("%.3f %%", result.VaR99*100)},
		{"Expected Shortfall", fmt.Sprintf("%.3f %%", result.ExpectedShortfall*100)},
		{"Rebalances", strconv.Itoa(result.RebalanceCount)},
		{"Rebalances / Year", fmt.Sprintf("%.1f", result.RebalanceFrequency)},
		{"Total Costs", fmt.Sprintf("$%.2f", result.TotalCosts)},
		{"Net Yield After Costs", fmt.Sprintf("%.2f %%", result.NetYieldAfterCosts*100)},
		{"Avg Excess Yield", fmt.Sprintf("%.1f bp", result.AvgExcessYield)},
		{"Avg Correlation", fmt.Sprintf("%.3f", result.Correlations.Average)},
	}
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
	fmt.Fprintln(w, buffer.String())

	writeYieldTable(w, result)
	writeReturnHistogram(w, result)
	writeConfidenceInterval(w, result)
}

func writeYieldTable(w io.Writer, result *core.BacktestResult) {
	if len(result.YieldImprovement) == 0 {
		return
	}
	assets := make([]string, 0, len(result.YieldImprovement))
	for asset := range result.YieldImprovement {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	buffer := bytes.NewBuffer(nil)
	table := tablewriter.NewWriter(buffer)
	table.SetHeader([]string{"Asset", "Yield vs Target"})
	for _, asset := range assets {
		table.Append([]string{asset, fmt.Sprintf("%+.1f bp", result.YieldImprovement[asset])})
	}
	table.Render()
	fmt.Fprintln(w, buffer.String())
}

func writeReturnHistogram(w io.Writer, result *core.BacktestResult) {
	if len(result.DailyReturns) == 0 {
		return
	}
	fmt.Fprintln(w, "------ DAILY RETURN -------")
	percents := make([]float64, len(result.DailyReturns))
	for i, r := range result.DailyReturns {
		percents[i] = r * 100
	}
	hist := histogram.Hist(15, percents)
	_ = histogram.Fprint(w, hist, histogram.Linear(10))
	fmt.Fprintln(w)
}

func writeConfidenceInterval(w io.Writer, result *core.BacktestResult) {
	if len(result.DailyReturns) < 2 {
		return
	}
	fmt.Fprintln(w, "------ CONFIDENCE INTERVAL (95%) -------")
	interval := metric.Bootstrap(result.DailyReturns, metric.Mean, 10000, 0.95)
	fmt.Fprintf(w, "DAILY RETURN: %.4f%% (%.4f%% ~ %.4f%%)\n",
		interval.Mean*100, interval.Lower*100, interval.Upper*100)
}
