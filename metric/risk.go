package metric

import (
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Volatility is the annualized sample standard deviation of the returns.
func Volatility(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	return stat.StdDev(returns, nil) * math.Sqrt(PeriodsPerYear)
}

// DownsideDeviation is the annualized standard deviation of the returns
// falling below the minimum acceptable return.
func DownsideDeviation(returns []float64, minAcceptable float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	var sumSq float64
	for _, r := range returns {
		if r < minAcceptable {
			d := r - minAcceptable
			sumSq += d * d
		}
	}
	return math.Sqrt(sumSq/float64(len(returns))) * math.Sqrt(PeriodsPerYear)
}

// MaxDrawdown is the largest peak-to-trough decline of the cumulative value
// implied by the returns, reported as a positive fraction.
func MaxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	cumulative := 1.0
	peak := 1.0
	worst := 0.0
	for _, r := range returns {
		cumulative *= 1 + r
		if cumulative > peak {
			peak = cumulative
		}
		if dd := cumulative/peak - 1; dd < worst {
			worst = dd
		}
	}
	return math.Abs(worst)
}

// HistoricalVaR is the loss at the given confidence level taken directly from
// the empirical return distribution, reported as a positive number.
func HistoricalVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)
	return math.Abs(stat.Quantile(1-confidence, stat.LinInterp, sorted, nil))
}

// ParametricVaR assumes normally distributed returns and reads the loss
// quantile off the fitted distribution.
func ParametricVaR(returns []float64, confidence float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean, stdDev := stat.MeanStdDev(returns, nil)
	if stdDev == 0 {
		return 0
	}
	normal := distuv.Normal{Mu: mean, Sigma: stdDev}
	return math.Abs(normal.Quantile(1 - confidence))
}

// MonteCarloVaR resamples a fitted normal distribution and reports the
// empirical loss quantile of the simulated returns. The seed makes the
// estimate reproducible.
func MonteCarloVaR(returns []float64, confidence float64, samples int, seed uint64) float64 {
	if len(returns) < 2 || samples <= 0 {
		return 0
	}
	mean, stdDev := stat.MeanStdDev(returns, nil)
	normal := distuv.Normal{Mu: mean, Sigma: stdDev, Src: rand.NewSource(seed)}

	simulated := make([]float64, samples)
	for i := range simulated {
		simulated[i] = normal.Rand()
	}
	return HistoricalVaR(simulated, confidence)
}

// ExpectedShortfall is the mean loss beyond the historical VaR threshold.
// When no return breaches the threshold the VaR itself is reported.
func ExpectedShortfall(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	threshold := -HistoricalVaR(returns, confidence)
	var tail []float64
	for _, r := range returns {
		if r <= threshold {
			tail = append(tail, r)
		}
	}
	if len(tail) == 0 {
		return math.Abs(threshold)
	}
	return math.Abs(stat.Mean(tail, nil))
}

// Skewness is the sample skewness of the returns.
func Skewness(returns []float64) float64 {
	if len(returns) < 3 {
		return 0
	}
	return stat.Skew(returns, nil)
}

// Kurtosis is the sample excess kurtosis of the returns.
func Kurtosis(returns []float64) float64 {
	if len(returns) < 4 {
		return 0
	}
	return stat.ExKurtosis(returns, nil)
}
