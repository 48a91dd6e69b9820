package optimize

import (
	"math"

	gopt "gonum.org/v1/gonum/optimize"

	"github.com/webbsledge/skfolio/pkg/errors"
)

// Bounded minimizes f subject to lower[i] < x[i] < upper[i], starting from
// x0. Each coordinate is mapped onto its open box through a logistic
// transform and the smooth transformed objective is minimized with gonum's
// Nelder-Mead simplex. It returns the minimizer in the original coordinates,
// or an OptimizationError if the search fails.
func Bounded(f func(x []float64) float64, x0, lower, upper []float64) ([]float64, error) {
	const op = "optimize.Bounded"
	n := len(x0)
	if len(lower) != n || len(upper) != n {
		return nil, errors.NewValidationError("bounds", "x0, lower and upper must have the same length", [3]int{n, len(lower), len(upper)})
	}
	for i := 0; i < n; i++ {
		if !(lower[i] < upper[i]) {
			return nil, errors.NewValidationError("bounds", "lower bound must be below upper bound", [2]float64{lower[i], upper[i]})
		}
	}

	fromUnbounded := func(t []float64) []float64 {
		x := make([]float64, n)
		for i := range t {
			x[i] = lower[i] + (upper[i]-lower[i])/(1.0+math.Exp(-t[i]))
		}
		return x
	}

	t0 := make([]float64, n)
	for i := 0; i < n; i++ {
		frac := (x0[i] - lower[i]) / (upper[i] - lower[i])
		// Keep the start strictly inside the box so the logit is finite.
		frac = math.Min(math.Max(frac, 1e-6), 1.0-1e-6)
		t0[i] = math.Log(frac / (1.0 - frac))
	}

	obj := func(t []float64) float64 {
		v := f(fromUnbounded(t))
		if math.IsNaN(v) {
			return math.Inf(1)
		}
		return v
	}

	problem := gopt.Problem{Func: obj}

	result, err := gopt.Minimize(problem, t0, nil, &gopt.NelderMead{})
	if err != nil {
		return nil, errors.NewOptimizationError(op, 0, err.Error())
	}
	if serr := result.Status.Err(); serr != nil {
		return nil, errors.NewOptimizationError(op, result.MajorIterations, serr.Error())
	}
	x := fromUnbounded(result.X)
	if err := errors.CheckNumericalStability(op, x); err != nil {
		return nil, err
	}
	return x, nil
}
