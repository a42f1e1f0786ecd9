package optimizer

import (
	"fmt"
	"math"

	"github.com/cambi-labs/ccyoe/core"
)

// ValidationReport lists the feasibility findings for an optimization result.
type ValidationReport struct {
	Feasible   bool
	Violations []string
}

// ValidateResult checks the optimum against the search box, the constraints
// and the policy invariants. The tolerance absorbs the solver's finite
// precision.
func ValidateResult(result *core.OptimizationResult, bounds []Bound, constraints []Constraint, tol float64) ValidationReport {
	report := ValidationReport{Feasible: true}
	if result == nil {
		return ValidationReport{Violations: []string{"nil result"}}
	}

	x := make([]float64, 0, core.NumParams)
	for _, name := range core.ParamNames {
		value, ok := result.OptimalParams[name]
		if !ok {
			report.Violations = append(report.Violations, fmt.Sprintf("missing parameter %s", name))
			report.Feasible = false
			continue
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			report.Violations = append(report.Violations, fmt.Sprintf("non-finite parameter %s", name))
			report.Feasible = false
		}
		x = append(x, value)
	}
	if len(x) != core.NumParams {
		return report
	}

	if len(bounds) == 0 {
		bounds = DefaultBounds()
	}
	for i, b := range bounds {
		if x[i] < b.Min-tol || x[i] > b.Max+tol {
			report.Violations = append(report.Violations,
				fmt.Sprintf("%s=%v outside [%v, %v]", core.ParamNames[i], x[i], b.Min, b.Max))
		}
	}

	report.Violations = append(report.Violations,
		violations(x, searchConstraints(bounds, constraints), tol)...)

	if math.IsNaN(result.OptimalValue) || math.IsInf(result.OptimalValue, 0) {
		report.Violations = append(report.Violations, "non-finite optimal value")
	}

	report.Feasible = len(report.Violations) == 0
	return report
}
