package copula

import (
	"fmt"
	"log/slog"
	"math"

	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/webbsledge/skfolio/core/model"
	"github.com/webbsledge/skfolio/core/optimize"
	"github.com/webbsledge/skfolio/pkg/errors"
	"github.com/webbsledge/skfolio/pkg/log"
)

// Degrees of freedom below 1 make the Student's t copula so heavy-tailed
// that its moments stop existing, and above 50 it is statistically
// indistinguishable from a Gaussian copula, so estimation is truncated to
// [1.0001, 50] for stability.
const (
	dofMin = 1.0001
	dofMax = 50.0
)

// StudentTCopulaConfig holds the construction-time configuration of a
// StudentTCopula estimator.
type StudentTCopulaConfig struct {
	// KendallTauInversion selects the two-step fit: rho from Kendall's tau
	// inversion (taken as final), then the degrees of freedom alone by a
	// bounded scalar likelihood search. The default full maximum likelihood
	// jointly optimizes (dof, rho); it is slower but more accurate.
	KendallTauInversion bool

	// KendallTau, when non-nil, is used instead of computing Kendall's tau
	// from the data.
	KendallTau *float64
}

// StudentTCopula fits a bivariate Student's t copula
//
//	C(u, v) = T_{dof,rho}(t_dof^{-1}(u), t_dof^{-1}(v))
//
// to pseudo-observations with uniform margins. Rotations are not needed:
// the correlation parameter rho in (-1, 1) covers both dependence signs and
// the copula is exchangeable up to sign.
type StudentTCopula struct {
	state *model.StateManager
	cfg   StudentTCopulaConfig

	// Fitted parameters, populated by Fit.
	rho float64
	dof float64
}

// NewStudentTCopula creates an unfitted StudentTCopula estimator.
func NewStudentTCopula(cfg StudentTCopulaConfig) *StudentTCopula {
	return &StudentTCopula{state: model.NewStateManager(), cfg: cfg}
}

// IsFitted reports whether Fit has completed successfully.
func (c *StudentTCopula) IsFitted() bool { return c.state.IsFitted() }

// NumParams returns 2, for (rho, dof).
func (c *StudentTCopula) NumParams() int { return 2 }

// Rho returns the fitted correlation parameter.
func (c *StudentTCopula) Rho() (float64, error) {
	if err := c.state.RequireFitted("StudentTCopula", "Rho"); err != nil {
		return 0, err
	}
	return c.rho, nil
}

// Dof returns the fitted degrees of freedom.
func (c *StudentTCopula) Dof() (float64, error) {
	if err := c.state.RequireFitted("StudentTCopula", "Dof"); err != nil {
		return 0, err
	}
	return c.dof, nil
}

// Params returns the fitted parameter mapping {rho, dof}.
func (c *StudentTCopula) Params() (map[string]float64, error) {
	if err := c.state.RequireFitted("StudentTCopula", "Params"); err != nil {
		return nil, err
	}
	return map[string]float64{"rho": c.rho, "dof": c.dof}, nil
}

// FittedRepr returns a human-readable representation of the fitted copula,
// e.g. "StudentTCopula(0.6, 5.2)".
func (c *StudentTCopula) FittedRepr() (string, error) {
	if err := c.state.RequireFitted("StudentTCopula", "FittedRepr"); err != nil {
		return "", err
	}
	return fmt.Sprintf("StudentTCopula(%.3g, %.3g)", c.rho, c.dof), nil
}

// Fit estimates (rho, dof) from pseudo-observations X of shape (n, 2).
//
// With KendallTauInversion, rho = sin(pi*tau/2) is final and the degrees of
// freedom are searched on [1.0001, 50] with a bounded Brent minimization of
// the negative log-likelihood. Otherwise (dof, rho) are jointly optimized on
// the box [1.0001, 50] x (-1, 1), seeded at dof=3 and the tau-inversion rho;
// the negative log-likelihood is smooth over the box, so the bounded simplex
// search converges reliably. A failed search surfaces
// an OptimizationError and leaves the instance unfitted.
func (c *StudentTCopula) Fit(X mat.Matrix) error {
	const op = "StudentTCopula.Fit"
	U, err := validatePseudo(op, X)
	if err != nil {
		return err
	}
	u, v := columns(U)
	n := len(u)

	var tau float64
	if c.cfg.KendallTau != nil {
		tau = *c.cfg.KendallTau
	} else {
		tau = stat.Kendall(u, v, nil)
	}
	// Either used directly or as the initial guess.
	rhoFromTau := math.Sin(math.Pi * tau / 2.0)
	rhoFromTau = math.Min(math.Max(rhoFromTau, -rhoBound), rhoBound)

	var rho, dof float64
	strategy := "mle"
	if c.cfg.KendallTauInversion {
		strategy = "kendall_tau_inversion"
		dof, err = optimize.ScalarBounded(func(d float64) float64 {
			return negLogLikelihoodT(u, v, rhoFromTau, d)
		}, dofMin, dofMax)
		if err != nil {
			return errors.Wrap(err, op)
		}
		rho = rhoFromTau
	} else {
		theta, err := optimize.Bounded(func(x []float64) float64 {
			return negLogLikelihoodT(u, v, x[1], x[0])
		},
			[]float64{3.0, rhoFromTau},
			[]float64{dofMin, -rhoBound},
			[]float64{dofMax, rhoBound},
		)
		if err != nil {
			return errors.Wrap(err, op)
		}
		dof, rho = theta[0], theta[1]
	}

	c.rho, c.dof = rho, dof
	c.state.SetDimensions(n, 2)
	c.state.SetFitted()
	slog.Debug("fitted bivariate copula",
		log.KeyEstimator, "StudentTCopula",
		log.KeySamples, n,
		log.KeyStrategy, strategy,
		log.KeyRho, c.rho,
		log.KeyDof, c.dof,
	)
	return nil
}

// ScoreSamples returns the log-density of each pseudo-observation under the
// fitted copula.
func (c *StudentTCopula) ScoreSamples(X mat.Matrix) ([]float64, error) {
	const op = "StudentTCopula.ScoreSamples"
	if err := c.state.RequireFitted("StudentTCopula", "ScoreSamples"); err != nil {
		return nil, err
	}
	U, err := validatePseudo(op, X)
	if err != nil {
		return nil, err
	}
	u, v := columns(U)
	return sampleScoresT(u, v, c.rho, c.dof)
}

// Score returns the total log-likelihood of X.
func (c *StudentTCopula) Score(X mat.Matrix) (float64, error) {
	scores, err := c.ScoreSamples(X)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum, nil
}

// AIC returns 2*(k - logL) with k = 2.
func (c *StudentTCopula) AIC(X mat.Matrix) (float64, error) {
	scores, err := c.ScoreSamples(X)
	if err != nil {
		return 0, err
	}
	return aic(scores, c.NumParams()), nil
}

// BIC returns -2*logL + k*ln(n) with k = 2.
func (c *StudentTCopula) BIC(X mat.Matrix) (float64, error) {
	scores, err := c.ScoreSamples(X)
	if err != nil {
		return 0, err
	}
	return bic(scores, c.NumParams()), nil
}

// CDF evaluates the copula cumulative distribution at each (u, v) row: the
// bivariate Student's t CDF at the quantile-transformed point, correlation
// [[1, rho], [rho, 1]] and the fitted degrees of freedom, computed as the
// quadrature of the conditional CDF over the first margin.
func (c *StudentTCopula) CDF(X mat.Matrix) ([]float64, error) {
	const op = "StudentTCopula.CDF"
	if err := c.state.RequireFitted("StudentTCopula", "CDF"); err != nil {
		return nil, err
	}
	U, err := validatePseudo(op, X)
	if err != nil {
		return nil, err
	}
	u, v := columns(U)
	out := make([]float64, len(u))
	h := func(cond, given float64) float64 {
		return hValueT(cond, given, c.rho, c.dof)
	}
	for i := range u {
		out[i] = cdfByQuadrature(h, u[i], v[i])
	}
	return out, nil
}

// PartialDerivative evaluates the h-function, the conditional CDF of one
// margin given the other:
//
//	h(u | v) = t_{dof+1}( (t_dof^{-1}(u) - rho*t_dof^{-1}(v)) /
//	                      sqrt((1-rho^2)(dof + t_dof^{-1}(v)^2)/(dof+1)) )
//
// By default the second column conditions the first; with firstMargin the
// columns are exchanged through the shared margin-swap helper before
// evaluating, so the two cases are exact mirror images.
func (c *StudentTCopula) PartialDerivative(X mat.Matrix, firstMargin bool) ([]float64, error) {
	const op = "StudentTCopula.PartialDerivative"
	if err := c.state.RequireFitted("StudentTCopula", "PartialDerivative"); err != nil {
		return nil, err
	}
	U, err := validatePseudo(op, X)
	if err != nil {
		return nil, err
	}
	U = applyMarginSwap(U, firstMargin)
	u, v := columns(U)
	out := make([]float64, len(u))
	for i := range u {
		out[i] = hValueT(u[i], v[i], c.rho, c.dof)
	}
	return out, nil
}

// InversePartialDerivative computes the inverse h-function: for rows (p, v)
// it returns the u with h(u | v) = p, in closed form:
//
//	u = t_dof( t_{dof+1}^{-1}(p) * sqrt((dof + t_dof^{-1}(v)^2)/(dof+1) * (1-rho^2))
//	           + rho*t_dof^{-1}(v) )
//
// The same margin-swap helper as PartialDerivative is applied first.
func (c *StudentTCopula) InversePartialDerivative(X mat.Matrix, firstMargin bool) ([]float64, error) {
	const op = "StudentTCopula.InversePartialDerivative"
	if err := c.state.RequireFitted("StudentTCopula", "InversePartialDerivative"); err != nil {
		return nil, err
	}
	U, err := validatePseudo(op, X)
	if err != nil {
		return nil, err
	}
	U = applyMarginSwap(U, firstMargin)
	p, v := columns(U)

	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: c.dof}
	t1 := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: c.dof + 1}
	out := make([]float64, len(p))
	for i := range p {
		pInv := t1.Quantile(p[i])
		vInv := t.Quantile(v[i])
		uInv := pInv*math.Sqrt((c.dof+vInv*vInv)/(c.dof+1.0)*(1.0-c.rho*c.rho)) + c.rho*vInv
		out[i] = t.CDF(uInv)
	}
	return out, nil
}

// Sample draws n pseudo-observations from the fitted copula as an n-by-2
// matrix of uniforms: bivariate Student's t draws mapped through the t_dof
// CDF per margin. Draws are deterministic for a given seed.
func (c *StudentTCopula) Sample(n int, seed uint64) (*mat.Dense, error) {
	const op = "StudentTCopula.Sample"
	if err := c.state.RequireFitted("StudentTCopula", "Sample"); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, errors.NewValueError(op, "n must be at least 1")
	}
	sigma := mat.NewSymDense(2, []float64{1, c.rho, c.rho, 1})
	src := xrand.NewSource(seed)
	dist, ok := distmv.NewStudentsT([]float64{0, 0}, sigma, c.dof, src)
	if !ok {
		return nil, errors.NewValidationError("rho", "correlation matrix is not positive definite", c.rho)
	}
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: c.dof}
	out := mat.NewDense(n, 2, nil)
	buf := make([]float64, 2)
	for i := 0; i < n; i++ {
		dist.Rand(buf)
		out.Set(i, 0, t.CDF(buf[0]))
		out.Set(i, 1, t.CDF(buf[1]))
	}
	return out, nil
}

// hValueT evaluates the Student's t h-function for a conditioned margin u
// and conditioning margin v.
func hValueT(u, v, rho, dof float64) float64 {
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}
	t1 := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof + 1}
	uInv := t.Quantile(u)
	vInv := t.Quantile(v)
	z := (uInv - rho*vInv) / math.Sqrt((1.0-rho*rho)*(dof+vInv*vInv)/(dof+1.0))
	return t1.CDF(z)
}

// negLogLikelihoodT is the optimization objective of both fitting strategies.
func negLogLikelihoodT(u, v []float64, rho, dof float64) float64 {
	scores, err := sampleScoresT(u, v, rho, dof)
	if err != nil {
		return math.Inf(1)
	}
	sum := 0.0
	for _, s := range scores {
		sum -= s
	}
	return sum
}

// sampleScoresT computes the per-observation log-density of the bivariate
// Student's t copula. It validates rho in [-1, 1] and dof in [1, 50] up
// front so an out-of-domain parameter is a ValidationError, never a silent
// NaN.
func sampleScoresT(u, v []float64, rho, dof float64) ([]float64, error) {
	if rho < -1.0 || rho > 1.0 || math.IsNaN(rho) {
		return nil, errors.NewValidationError("rho", "must lie in [-1, 1]", rho)
	}
	if dof < 1.0 || dof > 50.0 || math.IsNaN(dof) {
		return nil, errors.NewValidationError("dof", "must lie in [1, 50]", dof)
	}

	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}
	a := 1.0 - rho*rho
	lgNum2, _ := math.Lgamma((dof + 2.0) / 2.0)
	lgHalf, _ := math.Lgamma(dof / 2.0)
	lgNum1, _ := math.Lgamma((dof + 1.0) / 2.0)
	constant := lgNum2 + lgHalf - 2.0*lgNum1 - 0.5*math.Log(a)

	out := make([]float64, len(u))
	for i := range u {
		x := t.Quantile(u[i])
		y := t.Quantile(v[i])
		out[i] = constant +
			(dof+1.0)/2.0*(math.Log1p(x*x/dof)+math.Log1p(y*y/dof)) -
			(dof+2.0)/2.0*math.Log1p((x*x-2.0*rho*x*y+y*y)/a/dof)
	}
	return out, nil
}
