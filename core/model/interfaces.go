package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter is the interface for estimators that learn from data.
type Fitter interface {
	// Fit estimates the model parameters from X and marks the instance as
	// fitted. Re-fitting replaces the previous parameters.
	Fit(X mat.Matrix) error
}

// DensityScorer is the scoring contract shared by every distribution
// estimator. It is the interface an external model-selection driver ranks
// candidates with; lower AIC/BIC is better.
type DensityScorer interface {
	// ScoreSamples returns the per-observation log-density under the fitted
	// model.
	ScoreSamples(X mat.Matrix) ([]float64, error)
	// Score returns the total log-likelihood, the sum of ScoreSamples.
	Score(X mat.Matrix) (float64, error)
	// AIC returns 2*(k - logL) where k is the number of model parameters.
	AIC(X mat.Matrix) (float64, error)
	// BIC returns -2*logL + k*ln(n).
	BIC(X mat.Matrix) (float64, error)
}

// Sampler draws observations from a fitted model. Draws are deterministic
// for a given seed.
type Sampler interface {
	Sample(n int, seed uint64) (*mat.Dense, error)
}

// UnivariateDistribution is the contract for univariate marginal estimators.
type UnivariateDistribution interface {
	Fitter
	DensityScorer
	Sampler

	// CDF evaluates the cumulative distribution function at each row of the
	// single-column input.
	CDF(X mat.Matrix) ([]float64, error)
	// PPF evaluates the quantile function at each probability in the
	// single-column input.
	PPF(X mat.Matrix) ([]float64, error)
	// NumParams returns the number of parameters of the family.
	NumParams() int
	// Params returns the fitted parameter mapping of the family.
	Params() (map[string]float64, error)
	// FittedRepr returns a human-readable representation of the fitted
	// parameters, for diagnostics only.
	FittedRepr() (string, error)
	// IsFitted reports whether Fit has completed successfully.
	IsFitted() bool
}

// BivariateCopula is the contract for bivariate dependence estimators over
// inputs with uniform margins on [0, 1].
type BivariateCopula interface {
	Fitter
	DensityScorer
	Sampler

	// CDF evaluates the copula cumulative distribution at each (u, v) row.
	CDF(X mat.Matrix) ([]float64, error)
	// PartialDerivative evaluates the h-function, the conditional CDF of one
	// margin given the other. With firstMargin the conditioning column is the
	// first one, computed by swapping the two columns before evaluation.
	PartialDerivative(X mat.Matrix, firstMargin bool) ([]float64, error)
	// InversePartialDerivative inverts the h-function: given rows (p, v) it
	// returns the u with PartialDerivative(u, v) = p.
	InversePartialDerivative(X mat.Matrix, firstMargin bool) ([]float64, error)
	// NumParams returns the number of parameters of the copula family.
	NumParams() int
	// Params returns the fitted parameter mapping of the copula.
	Params() (map[string]float64, error)
	// FittedRepr returns a human-readable representation of the fitted
	// parameters, for diagnostics only.
	FittedRepr() (string, error)
	// IsFitted reports whether Fit has completed successfully.
	IsFitted() bool
}
