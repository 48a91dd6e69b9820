// Package copula provides bivariate copula estimators over inputs that have
// been transformed to uniform margins on [0, 1]: the Student's t copula with
// its dual fitting strategies and closed-form h-functions, and the Gaussian
// copula as its light-tailed limit.
package copula

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/mat"

	"github.com/webbsledge/skfolio/pkg/errors"
)

const (
	// rhoBound keeps the correlation strictly inside (-1, 1) during
	// optimization; values at the boundary indicate numerical failure.
	rhoBound = 0.9999

	// marginalEps clips uniform inputs away from the exact {0, 1} boundary
	// so the quantile transforms stay finite.
	marginalEps = 1e-10

	// cdfQuadNodes is the Gauss-Legendre node count for the copula CDF
	// integral of the h-function.
	cdfQuadNodes = 96
)

// validatePseudo checks that X is a non-empty two-column matrix whose entries
// all lie in [0, 1], and returns the two columns clipped into
// [marginalEps, 1-marginalEps].
func validatePseudo(op string, X mat.Matrix) (*mat.Dense, error) {
	if X == nil {
		return nil, errors.NewValueError(op, "X must not be nil")
	}
	r, c := X.Dims()
	if r == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	if c != 2 {
		return nil, errors.NewDimensionError(op, 2, c, 1)
	}
	out := mat.NewDense(r, 2, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < 2; j++ {
			v := X.At(i, j)
			if math.IsNaN(v) || v < 0 || v > 1 {
				return nil, errors.NewValidationError("X", "copula inputs must lie in [0, 1]", v)
			}
			out.Set(i, j, math.Min(math.Max(v, marginalEps), 1.0-marginalEps))
		}
	}
	return out, nil
}

// applyMarginSwap returns X with its two columns exchanged when firstMargin
// is set, and X unchanged otherwise. Both h-function operations route through
// this single helper so that the first-margin case is exactly the mirror
// computation; elliptical copulas need no further rotation variants because
// rho alone spans both dependence signs.
func applyMarginSwap(X *mat.Dense, firstMargin bool) *mat.Dense {
	if !firstMargin {
		return X
	}
	r, _ := X.Dims()
	out := mat.NewDense(r, 2, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, X.At(i, 1))
		out.Set(i, 1, X.At(i, 0))
	}
	return out
}

// columns extracts the two margins of a validated input.
func columns(X *mat.Dense) (u, v []float64) {
	r, _ := X.Dims()
	u = make([]float64, r)
	v = make([]float64, r)
	for i := 0; i < r; i++ {
		u[i] = X.At(i, 0)
		v[i] = X.At(i, 1)
	}
	return u, v
}

// aic computes 2*(k - logL) from per-sample log-densities.
func aic(scores []float64, nParams int) float64 {
	return 2.0 * (float64(nParams) - floats.Sum(scores))
}

// bic computes -2*logL + k*ln(n) from per-sample log-densities.
func bic(scores []float64, nParams int) float64 {
	return -2.0*floats.Sum(scores) + float64(nParams)*math.Log(float64(len(scores)))
}

// cdfByQuadrature evaluates the copula CDF C(u, v) as the integral of the
// conditional CDF of v given the first margin over [0, u], with fixed
// Gauss-Legendre quadrature. h must be the first-margin h-function
// h(v | s) of the copula.
func cdfByQuadrature(h func(v, s float64) float64, u, v float64) float64 {
	f := func(s float64) float64 {
		s = math.Min(math.Max(s, marginalEps), 1.0-marginalEps)
		return h(v, s)
	}
	return quad.Fixed(f, 0, u, cdfQuadNodes, quad.Legendre{}, 0)
}
