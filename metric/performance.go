package metric

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// PeriodsPerYear is the business-day annualization factor used throughout.
const PeriodsPerYear = 252.0

// Mean calculates the arithmetic mean of the values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// DailyReturns converts a value series into period-over-period returns.
// The first observation has no predecessor and is dropped.
func DailyReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, values[i]/values[i-1]-1)
	}
	return returns
}

// TotalReturn is the simple return between the first and last value.
func TotalReturn(initial, final float64) float64 {
	if initial == 0 {
		return 0
	}
	return final/initial - 1
}

// AnnualizedReturn geometrically scales a total return observed over the
// given number of periods to a full year.
func AnnualizedReturn(totalReturn float64, periods int) float64 {
	if periods == 0 || totalReturn <= -1 {
		return 0
	}
	return math.Pow(1+totalReturn, PeriodsPerYear/float64(periods)) - 1
}

// SharpeRatio is the annualized excess return per unit of volatility.
// Returns 0 when volatility is zero.
func SharpeRatio(annualizedReturn, volatility, riskFree float64) float64 {
	if volatility == 0 {
		return 0
	}
	return (annualizedReturn - riskFree) / volatility
}

// SortinoRatio is the annualized excess return per unit of downside
// deviation. Returns 0 when there is no downside.
func SortinoRatio(annualizedReturn, downsideDeviation, riskFree float64) float64 {
	if downsideDeviation == 0 {
		return 0
	}
	return (annualizedReturn - riskFree) / downsideDeviation
}

// CalmarRatio is the annualized return per unit of maximum drawdown.
// Returns 0 when the drawdown is zero.
func CalmarRatio(annualizedReturn, maxDrawdown float64) float64 {
	if maxDrawdown == 0 {
		return 0
	}
	return annualizedReturn / math.Abs(maxDrawdown)
}

// WinRate is the share of strictly positive returns.
func WinRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns))
}
