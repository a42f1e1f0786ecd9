package metric

import (
	"math"

	"github.com/cambi-labs/ccyoe/core"
	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix computes pairwise Pearson correlations between the named
// columns. Rows and columns follow the asset order given.
func CorrelationMatrix(columns map[string][]float64, assets []string) map[string][]float64 {
	matrix := make(map[string][]float64, len(assets))
	for _, a := range assets {
		row := make([]float64, len(assets))
		for j, b := range assets {
			if a == b {
				row[j] = 1
				continue
			}
			c := stat.Correlation(columns[a], columns[b], nil)
			if math.IsNaN(c) {
				// Zero-variance column, no linear relationship to report.
				c = 0
			}
			row[j] = c
		}
		matrix[a] = row
	}
	return matrix
}

// SummarizeCorrelations condenses a correlation matrix into the mean, max and
// min of the upper-triangle pairwise coefficients.
func SummarizeCorrelations(matrix map[string][]float64, assets []string) core.CorrelationSummary {
	summary := core.CorrelationSummary{Matrix: matrix}
	if len(assets) < 2 {
		summary.Average, summary.Max, summary.Min = 1, 1, 1
		return summary
	}

	var pairs []float64
	for i, a := range assets {
		for j := i + 1; j < len(assets); j++ {
			pairs = append(pairs, matrix[a][j])
		}
	}

	summary.Average = stat.Mean(pairs, nil)
	summary.Max = math.Inf(-1)
	summary.Min = math.Inf(1)
	for _, c := range pairs {
		summary.Max = math.Max(summary.Max, c)
		summary.Min = math.Min(summary.Min, c)
	}
	return summary
}
