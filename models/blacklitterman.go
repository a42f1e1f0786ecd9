package models

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// View is one investor opinion: the portfolio P'μ is expected to return Q
// with uncertainty Omega (variance of the view).
type View struct {
	Portfolio  map[string]float64
	Return     float64
	Confidence float64 // view variance; smaller is more confident
}

// BlackLitterman blends the market equilibrium with investor views through
// the closed-form posterior
//
//	μ_BL = [(τΣ)⁻¹ + P'Ω⁻¹P]⁻¹ [(τΣ)⁻¹Π + P'Ω⁻¹Q]
//
// where Π = δ·Σ·w_mkt is the equilibrium excess return implied by the market
// weights. With no views the posterior equals Π and the market weights are
// optimal. The blended returns feed a mean-variance optimization.
func BlackLitterman(marketWeights map[string]float64, covMatrix [][]float64,
	assets []string, bounds [][2]float64, views []View, tau, delta float64) (*Result, error) {

	n := len(assets)
	if n == 0 {
		return nil, fmt.Errorf("no assets provided")
	}
	if tau <= 0 || delta <= 0 {
		return nil, fmt.Errorf("tau and delta must be positive")
	}

	weights := make([]float64, n)
	for i, asset := range assets {
		w, ok := marketWeights[asset]
		if !ok {
			return nil, fmt.Errorf("missing market weight for asset %s", asset)
		}
		weights[i] = w
	}

	sigma := mat.NewDense(n, n, nil)
	for i := range covMatrix {
		if len(covMatrix) != n || len(covMatrix[i]) != n {
			return nil, fmt.Errorf("covariance matrix must be %dx%d", n, n)
		}
		for j := 0; j < n; j++ {
			sigma.Set(i, j, covMatrix[i][j])
		}
	}

	// Equilibrium returns Π = δ·Σ·w.
	pi := mat.NewVecDense(n, nil)
	pi.MulVec(sigma, mat.NewVecDense(n, weights))
	pi.ScaleVec(delta, pi)

	posterior := make([]float64, n)
	if len(views) == 0 {
		for i := 0; i < n; i++ {
			posterior[i] = pi.AtVec(i)
		}
	} else {
		var err error
		posterior, err = blendViews(pi, sigma, assets, views, tau)
		if err != nil {
			return nil, err
		}
	}

	expectedReturns := make(map[string]float64, n)
	for i, asset := range assets {
		expectedReturns[asset] = posterior[i]
	}
	return MeanVariance(expectedReturns, covMatrix, assets, bounds, delta/2)
}

func blendViews(pi *mat.VecDense, sigma *mat.Dense, assets []string, views []View, tau float64) ([]float64, error) {
	n := len(assets)
	k := len(views)

	p := mat.NewDense(k, n, nil)
	q := mat.NewVecDense(k, nil)
	omegaInv := mat.NewDense(k, k, nil)
	for vi, view := range views {
		for ai, asset := range assets {
			p.Set(vi, ai, view.Portfolio[asset])
		}
		q.SetVec(vi, view.Return)
		if view.Confidence <= 0 {
			return nil, fmt.Errorf("view %d confidence must be positive", vi)
		}
		omegaInv.Set(vi, vi, 1/view.Confidence)
	}

	// (τΣ)⁻¹
	tauSigma := mat.NewDense(n, n, nil)
	tauSigma.Scale(tau, sigma)
	var tauSigmaInv mat.Dense
	if err := tauSigmaInv.Inverse(tauSigma); err != nil {
		return nil, fmt.Errorf("scaled covariance is singular: %w", err)
	}

	// P'Ω⁻¹P and P'Ω⁻¹Q
	var pOmega, pOmegaP mat.Dense
	pOmega.Mul(p.T(), omegaInv)
	pOmegaP.Mul(&pOmega, p)

	var pOmegaQ mat.VecDense
	pOmegaQ.MulVec(&pOmega, q)

	// Posterior precision and its inverse.
	var precision, precisionInv mat.Dense
	precision.Add(&tauSigmaInv, &pOmegaP)
	if err := precisionInv.Inverse(&precision); err != nil {
		return nil, fmt.Errorf("posterior precision is singular: %w", err)
	}

	var priorTerm mat.VecDense
	priorTerm.MulVec(&tauSigmaInv, pi)

	var combined, posterior mat.VecDense
	combined.AddVec(&priorTerm, &pOmegaQ)
	posterior.MulVec(&precisionInv, &combined)

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = posterior.AtVec(i)
	}
	return out, nil
}
