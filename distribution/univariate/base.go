// Package univariate provides parametric univariate distribution estimators
// (Gaussian, Student's t, Johnson SU) with a uniform contract for density
// evaluation, cumulative probability, quantiles, sampling and information
// criteria, plus an AIC/BIC model-selection driver over the contract.
//
// Each estimator is constructed with an immutable configuration (optional
// fixed location/scale), fitted once with Fit, and queried afterwards. The
// training data is not retained; every query reads only the fitted
// parameters and the fresh inputs.
package univariate

import (
	"math"

	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	gopt "gonum.org/v1/gonum/optimize"

	"github.com/webbsledge/skfolio/core/model"
	"github.com/webbsledge/skfolio/pkg/errors"
)

// continuousDist is the operation set a fitted family exposes. The gonum
// distuv laws satisfy it directly; Johnson SU supplies its own implementation.
type continuousDist interface {
	LogProb(x float64) float64
	CDF(x float64) float64
	Quantile(p float64) float64
	Rand() float64
}

// family is the capability set each concrete law plugs into the shared
// scoring and sampling logic. The shared code depends only on this interface,
// never on a concrete family.
type family interface {
	familyName() string
	numParams() int
	// fittedDist builds the distribution from the fitted parameters. src may
	// be nil when no sampling is needed.
	fittedDist(src xrand.Source) continuousDist
}

// base carries the shared scoring, sampling and information-criterion logic.
// Concrete families embed it and wire themselves in at construction.
type base struct {
	fam   family
	state *model.StateManager
}

func newBase(fam family) base {
	return base{fam: fam, state: model.NewStateManager()}
}

// Fixed returns a pointer to v, for fixing a location or scale parameter in
// an estimator configuration.
func Fixed(v float64) *float64 {
	return &v
}

// validateColumn checks that X is a non-empty single-column matrix of finite
// values and extracts it as a slice.
func validateColumn(op string, X mat.Matrix) ([]float64, error) {
	if X == nil {
		return nil, errors.NewValueError(op, "X must not be nil")
	}
	r, c := X.Dims()
	if r == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	if c != 1 {
		return nil, errors.NewDimensionError(op, 1, c, 1)
	}
	xs := make([]float64, r)
	for i := 0; i < r; i++ {
		v := X.At(i, 0)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.NewValidationError("X", "must contain only finite values", v)
		}
		xs[i] = v
	}
	return xs, nil
}

func (b *base) requireFitted(method string) error {
	return b.state.RequireFitted(b.fam.familyName(), method)
}

// IsFitted reports whether Fit has completed successfully.
func (b *base) IsFitted() bool {
	return b.state.IsFitted()
}

// NumParams returns the number of parameters of the family. It is constant
// per family, regardless of which parameters were user-fixed.
func (b *base) NumParams() int {
	return b.fam.numParams()
}

// ScoreSamples returns the log-density of each observation under the fitted
// distribution.
func (b *base) ScoreSamples(X mat.Matrix) ([]float64, error) {
	if err := b.requireFitted("ScoreSamples"); err != nil {
		return nil, err
	}
	xs, err := validateColumn(b.fam.familyName()+".ScoreSamples", X)
	if err != nil {
		return nil, err
	}
	d := b.fam.fittedDist(nil)
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = d.LogProb(x)
	}
	return out, nil
}

// Score returns the total log-likelihood of X.
func (b *base) Score(X mat.Matrix) (float64, error) {
	scores, err := b.ScoreSamples(X)
	if err != nil {
		return 0, err
	}
	return floats.Sum(scores), nil
}

// AIC returns the Akaike information criterion 2*(k - logL). Lower is better.
func (b *base) AIC(X mat.Matrix) (float64, error) {
	logL, err := b.Score(X)
	if err != nil {
		return 0, err
	}
	k := float64(b.fam.numParams())
	return 2.0 * (k - logL), nil
}

// BIC returns the Bayesian information criterion -2*logL + k*ln(n). Lower is
// better.
func (b *base) BIC(X mat.Matrix) (float64, error) {
	scores, err := b.ScoreSamples(X)
	if err != nil {
		return 0, err
	}
	logL := floats.Sum(scores)
	k := float64(b.fam.numParams())
	n := float64(len(scores))
	return -2.0*logL + k*math.Log(n), nil
}

// CDF evaluates the fitted cumulative distribution function at each row.
func (b *base) CDF(X mat.Matrix) ([]float64, error) {
	if err := b.requireFitted("CDF"); err != nil {
		return nil, err
	}
	xs, err := validateColumn(b.fam.familyName()+".CDF", X)
	if err != nil {
		return nil, err
	}
	d := b.fam.fittedDist(nil)
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = d.CDF(x)
	}
	return out, nil
}

// PPF evaluates the fitted quantile function at each probability.
func (b *base) PPF(X mat.Matrix) ([]float64, error) {
	if err := b.requireFitted("PPF"); err != nil {
		return nil, err
	}
	ps, err := validateColumn(b.fam.familyName()+".PPF", X)
	if err != nil {
		return nil, err
	}
	d := b.fam.fittedDist(nil)
	out := make([]float64, len(ps))
	for i, p := range ps {
		if p < 0 || p > 1 {
			return nil, errors.NewValidationError("X", "probabilities must lie in [0, 1]", p)
		}
		out[i] = d.Quantile(p)
	}
	return out, nil
}

// Sample draws n observations from the fitted distribution as an n-by-1
// matrix. Draws are deterministic for a given seed.
func (b *base) Sample(n int, seed uint64) (*mat.Dense, error) {
	if err := b.requireFitted("Sample"); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, errors.NewValueError(b.fam.familyName()+".Sample", "n must be at least 1")
	}
	d := b.fam.fittedDist(xrand.NewSource(seed))
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		out.Set(i, 0, d.Rand())
	}
	return out, nil
}

// minimizeNLL runs an unconstrained Nelder-Mead search on a negative
// log-likelihood, the same derivative-free simplex scipy's family fits use.
// NaN objective values are treated as +Inf so the simplex backs away from
// invalid regions.
func minimizeNLL(op string, nll func(theta []float64) float64, theta0 []float64) ([]float64, error) {
	problem := gopt.Problem{
		Func: func(theta []float64) float64 {
			v := nll(theta)
			if math.IsNaN(v) {
				return math.Inf(1)
			}
			return v
		},
	}
	result, err := gopt.Minimize(problem, theta0, nil, &gopt.NelderMead{})
	if err != nil {
		return nil, errors.NewOptimizationError(op, 0, err.Error())
	}
	if serr := result.Status.Err(); serr != nil {
		return nil, errors.NewOptimizationError(op, result.MajorIterations, serr.Error())
	}
	if err := errors.CheckNumericalStability(op, result.X); err != nil {
		return nil, err
	}
	return result.X, nil
}
