package core

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// YieldPoint is one observation date with per-asset yields in basis points.
type YieldPoint struct {
	Date   time.Time
	Yields map[string]float64
}

// YieldSeries is an ordered, duplicate-free sequence of yield observations.
// It is immutable after construction; window filters return views backed by
// the same points.
type YieldSeries struct {
	points []YieldPoint
	assets []string
}

// NewYieldSeries validates and sorts the given observations. Construction
// fails on an empty input, duplicate dates, or non-finite yield values. The
// asset universe is taken from the first observation; every observation must
// carry a value for every asset.
func NewYieldSeries(points []YieldPoint) (*YieldSeries, error) {
	if len(points) == 0 {
		return nil, ErrEmptySeries
	}

	sorted := make([]YieldPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	assets := make([]string, 0, len(sorted[0].Yields))
	for asset := range sorted[0].Yields {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	for i, p := range sorted {
		if i > 0 && p.Date.Equal(sorted[i-1].Date) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDate, p.Date.Format(time.DateOnly))
		}
		for _, asset := range assets {
			value, ok := p.Yields[asset]
			if !ok {
				return nil, fmt.Errorf("%w: %s missing at %s", ErrUnknownAsset, asset, p.Date.Format(time.DateOnly))
			}
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return nil, fmt.Errorf("%w: %s at %s", ErrNonFiniteYield, asset, p.Date.Format(time.DateOnly))
			}
		}
	}

	return &YieldSeries{points: sorted, assets: assets}, nil
}

// Len returns the number of observations.
func (s *YieldSeries) Len() int { return len(s.points) }

// Assets returns the asset identifiers in lexical order.
func (s *YieldSeries) Assets() []string {
	out := make([]string, len(s.assets))
	copy(out, s.assets)
	return out
}

// HasAsset reports whether the series carries the given asset.
func (s *YieldSeries) HasAsset(asset string) bool {
	for _, a := range s.assets {
		if a == asset {
			return true
		}
	}
	return false
}

// Points returns the ordered observations.
func (s *YieldSeries) Points() []YieldPoint { return s.points }

// At returns the observation at index i.
func (s *YieldSeries) At(i int) YieldPoint { return s.points[i] }

// Start returns the first observation date.
func (s *YieldSeries) Start() time.Time { return s.points[0].Date }

// End returns the last observation date.
func (s *YieldSeries) End() time.Time { return s.points[len(s.points)-1].Date }

// Window returns the sub-series within [start, end] inclusive. An empty
// window is a hard error.
func (s *YieldSeries) Window(start, end time.Time) (*YieldSeries, error) {
	lo := sort.Search(len(s.points), func(i int) bool {
		return !s.points[i].Date.Before(start)
	})
	hi := sort.Search(len(s.points), func(i int) bool {
		return s.points[i].Date.After(end)
	})
	if lo >= hi {
		return nil, fmt.Errorf("%w: %s to %s", ErrEmptyRange,
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	return &YieldSeries{points: s.points[lo:hi], assets: s.assets}, nil
}

// Column returns the yield values of one asset across the series.
func (s *YieldSeries) Column(asset string) ([]float64, error) {
	if !s.HasAsset(asset) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, asset)
	}
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Yields[asset]
	}
	return out, nil
}
