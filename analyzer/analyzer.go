// Package analyzer computes descriptive statistics over yield series: per
// asset summaries, rolling volatility, trend fits and cross-asset structure.
package analyzer

import (
	"fmt"
	"math"

	"github.com/cambi-labs/ccyoe/core"
	"github.com/cambi-labs/ccyoe/metric"
	talib "github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"
)

// Analyzer wraps one yield series.
type Analyzer struct {
	series *core.YieldSeries
	log    core.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger attaches a logger.
func WithLogger(log core.Logger) Option {
	return func(a *Analyzer) { a.log = log }
}

// New creates an analyzer over the series.
func New(series *core.YieldSeries, opts ...Option) (*Analyzer, error) {
	if series == nil || series.Len() == 0 {
		return nil, core.ErrEmptySeries
	}
	a := &Analyzer{series: series, log: core.NopLogger()}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Trend is a linear fit of an asset's yield path against time.
type Trend struct {
	Slope     float64 `json:"slope"` // bp per observation
	RSquared  float64 `json:"r_squared"`
	Direction string  `json:"direction"`
}

// Stability captures how settled an asset's yield is.
type Stability struct {
	StdDev                 float64 `json:"std_dev"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
	Autocorrelation        float64 `json:"autocorrelation"` // lag 1
	MaxDailyChange         float64 `json:"max_daily_change"`
}

// AssetSummary bundles the per-asset statistics.
type AssetSummary struct {
	Asset      string    `json:"asset"`
	MeanYield  float64   `json:"mean_yield"`
	MinYield   float64   `json:"min_yield"`
	MaxYield   float64   `json:"max_yield"`
	Volatility float64   `json:"volatility"` // annualized, bp
	Trend      Trend     `json:"trend"`
	Stability  Stability `json:"stability"`
}

// Summarize computes the full statistics for one asset.
func (a *Analyzer) Summarize(asset string) (*AssetSummary, error) {
	column, err := a.series.Column(asset)
	if err != nil {
		return nil, err
	}

	summary := &AssetSummary{
		Asset:     asset,
		MeanYield: stat.Mean(column, nil),
		MinYield:  math.Inf(1),
		MaxYield:  math.Inf(-1),
	}
	for _, v := range column {
		summary.MinYield = math.Min(summary.MinYield, v)
		summary.MaxYield = math.Max(summary.MaxYield, v)
	}

	changes := diff(column)
	if len(changes) >= 2 {
		summary.Volatility = stat.StdDev(changes, nil) * math.Sqrt(metric.PeriodsPerYear)
	}
	summary.Trend = fitTrend(column)
	summary.Stability = stability(column, changes)
	return summary, nil
}

// SummarizeAll runs Summarize for every asset in the series.
func (a *Analyzer) SummarizeAll() (map[string]*AssetSummary, error) {
	out := make(map[string]*AssetSummary)
	for _, asset := range a.series.Assets() {
		summary, err := a.Summarize(asset)
		if err != nil {
			return nil, err
		}
		out[asset] = summary
	}
	return out, nil
}

// RollingVolatility returns the window-length rolling standard deviation of
// the asset's daily yield changes, annualized. The first window-1 entries of
// the talib output are warm-up zeros and are trimmed.
func (a *Analyzer) RollingVolatility(asset string, window int) ([]float64, error) {
	column, err := a.series.Column(asset)
	if err != nil {
		return nil, err
	}
	changes := diff(column)
	if window < 2 || len(changes) < window {
		return nil, fmt.Errorf("need at least %d observations for a %d-day window", window+1, window)
	}

	raw := talib.StdDev(changes, window, 1)
	out := make([]float64, 0, len(raw)-window+1)
	for _, v := range raw[window-1:] {
		out = append(out, v*math.Sqrt(metric.PeriodsPerYear))
	}
	return out, nil
}

// MovingAverage returns the simple moving average of the asset's yields,
// trimmed of the warm-up prefix.
func (a *Analyzer) MovingAverage(asset string, window int) ([]float64, error) {
	column, err := a.series.Column(asset)
	if err != nil {
		return nil, err
	}
	if window < 1 || len(column) < window {
		return nil, fmt.Errorf("need at least %d observations for a %d-day window", window, window)
	}
	return talib.Sma(column, window)[window-1:], nil
}

// fitTrend regresses yield on observation index.
func fitTrend(column []float64) Trend {
	if len(column) < 3 {
		return Trend{Direction: "flat"}
	}
	xs := make([]float64, len(column))
	for i := range xs {
		xs[i] = float64(i)
	}
	alpha, beta := stat.LinearRegression(xs, column, nil, false)
	r2 := stat.RSquared(xs, column, nil, alpha, beta)
	if math.IsNaN(r2) {
		r2 = 0
	}

	direction := "flat"
	switch {
	case beta > 0.1:
		direction = "rising"
	case beta < -0.1:
		direction = "falling"
	}
	return Trend{Slope: beta, RSquared: r2, Direction: direction}
}

func stability(column, changes []float64) Stability {
	s := Stability{}
	if len(column) < 2 {
		return s
	}
	mean, stdDev := stat.MeanStdDev(column, nil)
	s.StdDev = stdDev
	if mean != 0 {
		s.CoefficientOfVariation = stdDev / math.Abs(mean)
	}
	if len(column) >= 3 && stdDev > 0 {
		ac := stat.Correlation(column[:len(column)-1], column[1:], nil)
		if !math.IsNaN(ac) {
			s.Autocorrelation = ac
		}
	}
	for _, c := range changes {
		s.MaxDailyChange = math.Max(s.MaxDailyChange, math.Abs(c))
	}
	return s
}

func diff(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		out[i-1] = values[i] - values[i-1]
	}
	return out
}
