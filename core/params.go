package core

import "fmt"

// ParamNames is the fixed order of the searchable policy parameters. Every
// parameter vector handed to or returned by a search strategy follows it.
var ParamNames = []string{
	"under_supplied_allocation",
	"strategic_growth_allocation",
	"proportional_allocation",
	"treasury_allocation",
	"rebalance_threshold",
	"transaction_cost",
}

// NumParams is the dimension of the searchable parameter vector.
const NumParams = 6

// ParamsToPolicy overlays a parameter vector onto a base configuration. The
// non-searchable fields (targets, caps, interval, gas cost) are inherited from
// base unchanged.
func ParamsToPolicy(base PolicyConfig, x []float64) (PolicyConfig, error) {
	if len(x) != NumParams {
		return PolicyConfig{}, fmt.Errorf("parameter vector must have %d entries, got %d", NumParams, len(x))
	}
	cfg := base
	cfg.UnderSuppliedAllocation = x[0]
	cfg.StrategicGrowthAllocation = x[1]
	cfg.ProportionalAllocation = x[2]
	cfg.TreasuryAllocation = x[3]
	cfg.RebalanceThreshold = x[4]
	cfg.TransactionCost = x[5]
	return cfg, nil
}

// PolicyToParams extracts the searchable parameter vector from a
// configuration, inverse of ParamsToPolicy.
func PolicyToParams(cfg PolicyConfig) []float64 {
	return []float64{
		cfg.UnderSuppliedAllocation,
		cfg.StrategicGrowthAllocation,
		cfg.ProportionalAllocation,
		cfg.TreasuryAllocation,
		cfg.RebalanceThreshold,
		cfg.TransactionCost,
	}
}

// NamedParams pairs a parameter vector with ParamNames.
func NamedParams(x []float64) map[string]float64 {
	out := make(map[string]float64, len(ParamNames))
	for i, name := range ParamNames {
		if i < len(x) {
			out[name] = x[i]
		}
	}
	return out
}
