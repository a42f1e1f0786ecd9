package optimizer

import (
	"math"

	"github.com/cambi-labs/ccyoe/core"
)

// Bound is a closed interval for one parameter.
type Bound struct {
	Min float64
	Max float64
}

// ConstraintKind distinguishes equality from inequality constraints.
type ConstraintKind int

const (
	// Equality constraints require Fn(x) == 0.
	Equality ConstraintKind = iota
	// Inequality constraints require Fn(x) >= 0.
	Inequality
)

// Constraint is one feasibility condition on a parameter vector.
type Constraint struct {
	Name string
	Kind ConstraintKind
	Fn   func(x []float64) float64
}

// DefaultBounds returns the canonical search box: allocation weights, the
// treasury weight, the trigger threshold and the transaction cost.
func DefaultBounds() []Bound {
	return []Bound{
		{core.MinAllocation, core.MaxAllocation},
		{core.MinAllocation, core.MaxAllocation},
		{core.MinAllocation, core.MaxAllocation},
		{core.MinTreasuryAllocation, core.MaxTreasuryAllocation},
		{core.MinRebalanceThreshold, core.MaxRebalanceThreshold},
		{core.MinTransactionCost, core.MaxTransactionCost},
	}
}

// DefaultConstraints returns the weight-sum equality plus a pair of band
// inequalities per bounded parameter.
func DefaultConstraints(bounds []Bound) []Constraint {
	constraints := []Constraint{{
		Name: "weights_sum_to_one",
		Kind: Equality,
		Fn: func(x []float64) float64 {
			return x[0] + x[1] + x[2] + x[3] - 1
		},
	}}

	for i, b := range bounds[:4] {
		i, b := i, b
		constraints = append(constraints,
			Constraint{
				Name: core.ParamNames[i] + "_lower",
				Kind: Inequality,
				Fn:   func(x []float64) float64 { return x[i] - b.Min },
			},
			Constraint{
				Name: core.ParamNames[i] + "_upper",
				Kind: Inequality,
				Fn:   func(x []float64) float64 { return b.Max - x[i] },
			},
		)
	}
	return constraints
}

// searchConstraints builds the constraint set for one search: the defaults
// for the given bounds plus any caller-supplied extras.
func searchConstraints(bounds []Bound, extra []Constraint) []Constraint {
	return append(DefaultConstraints(bounds), extra...)
}

// penaltyWeight scales the quadratic penalty added per unit of constraint
// violation.
const penaltyWeight = 1000.0

// penalty sums the quadratic violations of all constraints at x.
func penalty(x []float64, constraints []Constraint) float64 {
	var total float64
	for _, c := range constraints {
		v := c.Fn(x)
		switch c.Kind {
		case Equality:
			total += penaltyWeight * v * v
		case Inequality:
			if v < 0 {
				total += penaltyWeight * v * v
			}
		}
	}
	return total
}

// boundsPenalty sums the quadratic violations of the search box at x.
func boundsPenalty(x []float64, bounds []Bound) float64 {
	var total float64
	for i, b := range bounds {
		if i >= len(x) {
			break
		}
		if x[i] < b.Min {
			d := b.Min - x[i]
			total += penaltyWeight * d * d
		} else if x[i] > b.Max {
			d := x[i] - b.Max
			total += penaltyWeight * d * d
		}
	}
	return total
}

// violations reports the named constraints violated at x beyond tolerance.
func violations(x []float64, constraints []Constraint, tol float64) []string {
	var out []string
	for _, c := range constraints {
		v := c.Fn(x)
		switch c.Kind {
		case Equality:
			if math.Abs(v) > tol {
				out = append(out, c.Name)
			}
		case Inequality:
			if v < -tol {
				out = append(out, c.Name)
			}
		}
	}
	return out
}

// projectToBounds clamps x into the search box in place.
func projectToBounds(x []float64, bounds []Bound) {
	for i := range x {
		if i >= len(bounds) {
			return
		}
		x[i] = core.Clamp(x[i], bounds[i].Min, bounds[i].Max)
	}
}
