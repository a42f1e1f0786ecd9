package core

import (
	"fmt"
	"math"
)

// WeightTolerance is the floating tolerance applied when checking that the
// four allocation weights sum to 1.0.
const WeightTolerance = 1e-6

// Optimization band constants shared by the optimizer's default constraints
// and bounds.
const (
	MinAllocation         = 0.05
	MaxAllocation         = 0.50
	MinTreasuryAllocation = 0.05
	MaxTreasuryAllocation = 0.15
	MinRebalanceThreshold = 25.0
	MaxRebalanceThreshold = 500.0
	MinTransactionCost    = 1.0
	MaxTransactionCost    = 50.0
)

// PolicyConfig is the immutable-per-run parameter set of the CCYOE
// redistribution policy. Yields, thresholds and costs are expressed in basis
// points; supply caps and balances in USD.
type PolicyConfig struct {
	// Distribution weights, must sum to 1.0 within WeightTolerance.
	UnderSuppliedAllocation   float64
	StrategicGrowthAllocation float64
	ProportionalAllocation    float64
	TreasuryAllocation        float64

	// Rebalancing trigger parameters.
	RebalanceThreshold   float64 // bp of aggregate excess yield
	MinRebalanceInterval int     // calendar days between rebalances

	// Per-asset policy targets.
	TargetYields map[string]float64 // bp
	SupplyCaps   map[string]float64 // USD

	// Assets prioritized by the under-supplied bucket.
	UnderSuppliedAssets []string

	// Utilization ratio above which an asset is eligible for the
	// strategic-growth bucket.
	UtilizationThreshold float64

	// Cost model.
	TransactionCost float64 // bp applied to redistributed value
	GasCostUSD      float64 // fixed overhead per rebalance
}

// DefaultPolicyConfig returns the canonical CCYOE policy parameters.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		UnderSuppliedAllocation:   0.40,
		StrategicGrowthAllocation: 0.30,
		ProportionalAllocation:    0.20,
		TreasuryAllocation:        0.10,
		RebalanceThreshold:        100,
		MinRebalanceInterval:      1,
		TargetYields: map[string]float64{
			AssetBTC: 500,
			AssetUSD: 1400,
			AssetBRL: 2000,
		},
		SupplyCaps: map[string]float64{
			AssetBTC: 20_000_000,
			AssetUSD: 50_000_000,
			AssetBRL: 1_000_000_000,
		},
		UnderSuppliedAssets:  []string{AssetBTC, AssetUSD},
		UtilizationThreshold: 0.8,
		TransactionCost:      5,
		GasCostUSD:           50,
	}
}

// NewPolicyConfig validates the given configuration and returns it unchanged.
// Malformed configurations fail fast and are never silently corrected.
func NewPolicyConfig(cfg PolicyConfig) (PolicyConfig, error) {
	if err := cfg.Validate(); err != nil {
		return PolicyConfig{}, err
	}
	return cfg, nil
}

// Validate checks the policy invariants: weights in [0,1] summing to 1.0,
// positive trigger threshold, non-negative interval.
func (c PolicyConfig) Validate() error {
	weights := []float64{
		c.UnderSuppliedAllocation,
		c.StrategicGrowthAllocation,
		c.ProportionalAllocation,
		c.TreasuryAllocation,
	}
	for _, w := range weights {
		if w < 0 || w > 1 {
			return fmt.Errorf("allocation weight %v out of [0,1]", w)
		}
	}
	if sum := c.WeightSum(); math.Abs(sum-1.0) > WeightTolerance {
		return fmt.Errorf("allocations must sum to 1.0, got %v", sum)
	}
	if c.RebalanceThreshold <= 0 {
		return fmt.Errorf("rebalance threshold must be positive, got %v", c.RebalanceThreshold)
	}
	if c.MinRebalanceInterval < 0 {
		return fmt.Errorf("min rebalance interval must be non-negative, got %d", c.MinRebalanceInterval)
	}
	if c.TransactionCost < 0 {
		return fmt.Errorf("transaction cost must be non-negative, got %v", c.TransactionCost)
	}
	if c.UtilizationThreshold <= 0 {
		return fmt.Errorf("utilization threshold must be positive, got %v", c.UtilizationThreshold)
	}
	return nil
}

// WeightSum returns the sum of the four allocation weights.
func (c PolicyConfig) WeightSum() float64 {
	return c.UnderSuppliedAllocation +
		c.StrategicGrowthAllocation +
		c.ProportionalAllocation +
		c.TreasuryAllocation
}

// TargetYield returns the configured target yield for an asset, 0 when the
// asset has no target.
func (c PolicyConfig) TargetYield(asset string) float64 {
	return c.TargetYields[asset]
}

// SupplyCap returns the configured supply cap for an asset, +Inf when the
// asset is uncapped.
func (c PolicyConfig) SupplyCap(asset string) float64 {
	if limit, ok := c.SupplyCaps[asset]; ok {
		return limit
	}
	return math.Inf(1)
}
