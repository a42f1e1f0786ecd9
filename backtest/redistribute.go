package backtest

import (
	"time"

	"github.com/cambi-labs/ccyoe/core"
)

// rebalance distributes the aggregate excess yield across the portfolio and
// applies the resulting boosts and costs to the balances in place.
func (e *Engine) rebalance(date time.Time, totalExcess float64, balances map[string]float64) core.RebalanceEvent {
	redistribution := e.distribute(totalExcess, balances)

	impact := make(map[string]float64, len(redistribution))
	var transactionCost float64
	for asset, boost := range redistribution {
		increase := balances[asset] * boost / 10000
		impact[asset] = increase
		cost := increase * e.cfg.TransactionCost / 10000

		balances[asset] += increase - cost
		transactionCost += cost
	}

	return core.RebalanceEvent{
		Date:            date,
		TotalExcess:     totalExcess,
		Redistribution:  redistribution,
		PortfolioImpact: impact,
		TransactionCost: transactionCost,
		GasCost:         e.cfg.GasCostUSD,
	}
}

// distribute splits the excess into the four policy buckets and returns the
// per-asset yield boost in basis points. The treasury share is withheld, so
// the boosts sum to totalExcess × (1 − treasury weight).
func (e *Engine) distribute(totalExcess float64, balances map[string]float64) map[string]float64 {
	redistribution := make(map[string]float64, len(balances))
	proportionalAmount := totalExcess * e.cfg.ProportionalAllocation

	// Under-supplied bucket: split evenly across the configured priority
	// assets that are present in the portfolio. Buckets with no qualifying
	// asset fall through to the proportional split so no excess leaks.
	underAmount := totalExcess * e.cfg.UnderSuppliedAllocation
	var underAssets []string
	for _, asset := range e.cfg.UnderSuppliedAssets {
		if _, ok := balances[asset]; ok {
			underAssets = append(underAssets, asset)
		}
	}
	if len(underAssets) > 0 {
		for _, asset := range underAssets {
			redistribution[asset] += underAmount / float64(len(underAssets))
		}
	} else {
		proportionalAmount += underAmount
	}

	// Strategic-growth bucket: split evenly across assets whose supply
	// utilization exceeds the threshold.
	strategicAmount := totalExcess * e.cfg.StrategicGrowthAllocation
	var eligible []string
	for asset, balance := range balances {
		if balance/e.cfg.SupplyCap(asset) > e.cfg.UtilizationThreshold {
			eligible = append(eligible, asset)
		}
	}
	if len(eligible) > 0 {
		for _, asset := range eligible {
			redistribution[asset] += strategicAmount / float64(len(eligible))
		}
	} else {
		proportionalAmount += strategicAmount
	}

	// Proportional bucket: weighted by portfolio share.
	totalValue := core.SumValues(balances)
	if totalValue > 0 {
		for asset, balance := range balances {
			redistribution[asset] += proportionalAmount * balance / totalValue
		}
	}

	return redistribution
}
