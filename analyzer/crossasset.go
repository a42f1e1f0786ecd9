package analyzer

import (
	"math"

	"github.com/cambi-labs/ccyoe/core"
	"github.com/cambi-labs/ccyoe/metric"
	"gonum.org/v1/gonum/stat"
)

// CrossAssetSummary describes how the assets move together.
type CrossAssetSummary struct {
	Correlations         core.CorrelationSummary `json:"correlations"`
	DiversificationRatio float64                 `json:"diversification_ratio"`
	MeanYields           map[string]float64      `json:"mean_yields"`
}

// CorrelationMatrix computes pairwise correlations of the daily yield
// changes.
func (a *Analyzer) CorrelationMatrix() (map[string][]float64, []string, error) {
	assets := a.series.Assets()
	columns := make(map[string][]float64, len(assets))
	for _, asset := range assets {
		column, err := a.series.Column(asset)
		if err != nil {
			return nil, nil, err
		}
		columns[asset] = diff(column)
	}
	return metric.CorrelationMatrix(columns, assets), assets, nil
}

// CrossAsset summarizes the joint behavior of all assets: the correlation
// structure of their yield changes, the equal-weight diversification ratio
// and the mean yield levels.
func (a *Analyzer) CrossAsset() (*CrossAssetSummary, error) {
	matrix, assets, err := a.CorrelationMatrix()
	if err != nil {
		return nil, err
	}

	summary := &CrossAssetSummary{
		Correlations: metric.SummarizeCorrelations(matrix, assets),
		MeanYields:   make(map[string]float64, len(assets)),
	}

	// Equal-weight diversification ratio over the yield changes: average
	// standalone volatility over the volatility of the averaged series.
	var standaloneSum float64
	var pooled [][]float64
	for _, asset := range assets {
		column, err := a.series.Column(asset)
		if err != nil {
			return nil, err
		}
		summary.MeanYields[asset] = stat.Mean(column, nil)

		changes := diff(column)
		if len(changes) >= 2 {
			standaloneSum += stat.StdDev(changes, nil)
		}
		pooled = append(pooled, changes)
	}

	if len(pooled) > 0 && len(pooled[0]) >= 2 {
		combined := make([]float64, len(pooled[0]))
		for i := range combined {
			for _, changes := range pooled {
				combined[i] += changes[i]
			}
			combined[i] /= float64(len(pooled))
		}
		if portfolioVol := stat.StdDev(combined, nil); portfolioVol > 0 {
			summary.DiversificationRatio = standaloneSum / float64(len(assets)) / portfolioVol
		}
	}
	if math.IsNaN(summary.DiversificationRatio) {
		summary.DiversificationRatio = 0
	}
	return summary, nil
}
