package core

import "time"

// BacktestRecord is a persisted simulation run.
type BacktestRecord struct {
	ID        int64          `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Label     string         `json:"label"`
	Config    PolicyConfig   `json:"config"`
	Result    BacktestResult `json:"result"`
}

// OptimizationRecord is a persisted parameter search.
type OptimizationRecord struct {
	ID        int64              `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	Label     string             `json:"label"`
	Result    OptimizationResult `json:"result"`
}

// RunStore persists analysis runs for later comparison.
type RunStore interface {
	SaveBacktest(record *BacktestRecord) error
	Backtests() ([]*BacktestRecord, error)
	SaveOptimization(record *OptimizationRecord) error
	Optimizations() ([]*OptimizationRecord, error)
}
