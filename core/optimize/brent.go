// Package optimize provides the bounded minimizers used by the maximum
// likelihood fits: a scalar search on a closed interval and a box-constrained
// multivariate search built on gonum/optimize.
package optimize

import (
	"math"

	"github.com/webbsledge/skfolio/pkg/errors"
)

const (
	scalarTol     = 1e-5
	scalarMaxIter = 500
)

var sqrtEps = math.Sqrt(2.2e-16)

// ScalarBounded minimizes f over the closed interval [lo, hi] using Brent's
// bounded method (golden-section search with parabolic interpolation). It
// returns the minimizer, or an OptimizationError if the search exceeds its
// iteration budget or the objective produces NaN.
func ScalarBounded(f func(float64) float64, lo, hi float64) (float64, error) {
	const op = "optimize.ScalarBounded"
	if !(lo < hi) {
		return 0, errors.NewValidationError("bounds", "lower bound must be below upper bound", [2]float64{lo, hi})
	}

	golden := 0.5 * (3.0 - math.Sqrt(5.0))
	a, b := lo, hi
	fulc := a + golden*(b-a)
	nfc, xf := fulc, fulc
	rat, e := 0.0, 0.0
	x := xf
	fx := f(x)
	if math.IsNaN(fx) {
		return 0, errors.NewOptimizationError(op, 0, "objective returned NaN")
	}
	ffulc, fnfc := fx, fx
	xm := 0.5 * (a + b)
	tol1 := sqrtEps*math.Abs(xf) + scalarTol/3.0
	tol2 := 2.0 * tol1

	for iter := 0; math.Abs(xf-xm) > tol2-0.5*(b-a); iter++ {
		if iter >= scalarMaxIter {
			return xf, errors.NewOptimizationError(op, iter, "maximum number of iterations reached")
		}
		useGolden := true
		if math.Abs(e) > tol1 {
			// Try a parabolic fit through the three best points.
			r := (xf - nfc) * (fx - ffulc)
			q := (xf - fulc) * (fx - fnfc)
			p := (xf-fulc)*q - (xf-nfc)*r
			q = 2.0 * (q - r)
			if q > 0 {
				p = -p
			}
			q = math.Abs(q)
			r = e
			e = rat
			if math.Abs(p) < math.Abs(0.5*q*r) && p > q*(a-xf) && p < q*(b-xf) {
				useGolden = false
				rat = p / q
				x = xf + rat
				if (x-a) < tol2 || (b-x) < tol2 {
					rat = math.Copysign(tol1, xm-xf)
				}
			}
		}
		if useGolden {
			if xf >= xm {
				e = a - xf
			} else {
				e = b - xf
			}
			rat = golden * e
		}

		step := math.Copysign(math.Max(math.Abs(rat), tol1), rat)
		if rat == 0 {
			step = tol1
		}
		x = xf + step
		fu := f(x)
		if math.IsNaN(fu) {
			return xf, errors.NewOptimizationError(op, iter, "objective returned NaN")
		}

		if fu <= fx {
			if x >= xf {
				a = xf
			} else {
				b = xf
			}
			fulc, ffulc = nfc, fnfc
			nfc, fnfc = xf, fx
			xf, fx = x, fu
		} else {
			if x < xf {
				a = x
			} else {
				b = x
			}
			switch {
			case fu <= fnfc || nfc == xf:
				fulc, ffulc = nfc, fnfc
				nfc, fnfc = x, fu
			case fu <= ffulc || fulc == xf || fulc == nfc:
				fulc, ffulc = x, fu
			}
		}
		xm = 0.5 * (a + b)
		tol1 = sqrtEps*math.Abs(xf) + scalarTol/3.0
		tol2 = 2.0 * tol1
	}
	return xf, nil
}
