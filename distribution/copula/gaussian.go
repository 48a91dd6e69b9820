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

// GaussianCopulaConfig holds the construction-time configuration of a
// GaussianCopula estimator.
type GaussianCopulaConfig struct {
	// KendallTauInversion selects the closed-form fit rho = sin(pi*tau/2).
	// The default maximum likelihood searches rho with a bounded scalar
	// minimization, seeded near the tau-inversion estimate.
	KendallTauInversion bool

	// KendallTau, when non-nil, is used instead of computing Kendall's tau
	// from the data.
	KendallTau *float64
}

// GaussianCopula fits a bivariate Gaussian copula
//
//	C(u, v) = Phi_rho(Phi^{-1}(u), Phi^{-1}(v))
//
// to pseudo-observations with uniform margins. It is the light-tailed limit
// of the Student's t copula and carries a single parameter.
type GaussianCopula struct {
	state *model.StateManager
	cfg   GaussianCopulaConfig

	// Fitted parameter, populated by Fit.
	rho float64
}

// NewGaussianCopula creates an unfitted GaussianCopula estimator.
func NewGaussianCopula(cfg GaussianCopulaConfig) *GaussianCopula {
	return &GaussianCopula{state: model.NewStateManager(), cfg: cfg}
}

// IsFitted reports whether Fit has completed successfully.
func (c *GaussianCopula) IsFitted() bool { return c.state.IsFitted() }

// NumParams returns 1, for rho.
func (c *GaussianCopula) NumParams() int { return 1 }

// Rho returns the fitted correlation parameter.
func (c *GaussianCopula) Rho() (float64, error) {
	if err := c.state.RequireFitted("GaussianCopula", "Rho"); err != nil {
		return 0, err
	}
	return c.rho, nil
}

// Params returns the fitted parameter mapping {rho}.
func (c *GaussianCopula) Params() (map[string]float64, error) {
	if err := c.state.RequireFitted("GaussianCopula", "Params"); err != nil {
		return nil, err
	}
	return map[string]float64{"rho": c.rho}, nil
}

// FittedRepr returns a human-readable representation of the fitted copula,
// e.g. "GaussianCopula(0.6)".
func (c *GaussianCopula) FittedRepr() (string, error) {
	if err := c.state.RequireFitted("GaussianCopula", "FittedRepr"); err != nil {
		return "", err
	}
	return fmt.Sprintf("GaussianCopula(%.3g)", c.rho), nil
}

// Fit estimates rho from pseudo-observations X of shape (n, 2), either in
// closed form from Kendall's tau or by a bounded scalar likelihood search.
func (c *GaussianCopula) Fit(X mat.Matrix) error {
	const op = "GaussianCopula.Fit"
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
	rhoFromTau := math.Sin(math.Pi * tau / 2.0)
	rhoFromTau = math.Min(math.Max(rhoFromTau, -rhoBound), rhoBound)

	var rho float64
	strategy := "mle"
	if c.cfg.KendallTauInversion {
		strategy = "kendall_tau_inversion"
		rho = rhoFromTau
	} else {
		rho, err = optimize.ScalarBounded(func(r float64) float64 {
			return negLogLikelihoodGaussian(u, v, r)
		}, -rhoBound, rhoBound)
		if err != nil {
			return errors.Wrap(err, op)
		}
	}

	c.rho = rho
	c.state.SetDimensions(n, 2)
	c.state.SetFitted()
	slog.Debug("fitted bivariate copula",
		log.KeyEstimator, "GaussianCopula",
		log.KeySamples, n,
		log.KeyStrategy, strategy,
		log.KeyRho, c.rho,
	)
	return nil
}

// ScoreSamples returns the log-density of each pseudo-observation under the
// fitted copula.
func (c *GaussianCopula) ScoreSamples(X mat.Matrix) ([]float64, error) {
	const op = "GaussianCopula.ScoreSamples"
	if err := c.state.RequireFitted("GaussianCopula", "ScoreSamples"); err != nil {
		return nil, err
	}
	U, err := validatePseudo(op, X)
	if err != nil {
		return nil, err
	}
	u, v := columns(U)
	return sampleScoresGaussian(u, v, c.rho)
}

// Score returns the total log-likelihood of X.
func (c *GaussianCopula) Score(X mat.Matrix) (float64, error) {
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

// AIC returns 2*(k - logL) with k = 1.
func (c *GaussianCopula) AIC(X mat.Matrix) (float64, error) {
	scores, err := c.ScoreSamples(X)
	if err != nil {
		return 0, err
	}
	return aic(scores, c.NumParams()), nil
}

// BIC returns -2*logL + k*ln(n) with k = 1.
func (c *GaussianCopula) BIC(X mat.Matrix) (float64, error) {
	scores, err := c.ScoreSamples(X)
	if err != nil {
		return 0, err
	}
	return bic(scores, c.NumParams()), nil
}

// CDF evaluates the copula cumulative distribution at each (u, v) row by
// quadrature of the conditional CDF over the first margin.
func (c *GaussianCopula) CDF(X mat.Matrix) ([]float64, error) {
	const op = "GaussianCopula.CDF"
	if err := c.state.RequireFitted("GaussianCopula", "CDF"); err != nil {
		return nil, err
	}
	U, err := validatePseudo(op, X)
	if err != nil {
		return nil, err
	}
	u, v := columns(U)
	out := make([]float64, len(u))
	h := func(cond, given float64) float64 {
		return hValueGaussian(cond, given, c.rho)
	}
	for i := range u {
		out[i] = cdfByQuadrature(h, u[i], v[i])
	}
	return out, nil
}

// PartialDerivative evaluates the h-function
//
//	h(u | v) = Phi( (Phi^{-1}(u) - rho*Phi^{-1}(v)) / sqrt(1-rho^2) )
//
// with the same margin-swap semantics as the Student's t copula.
func (c *GaussianCopula) PartialDerivative(X mat.Matrix, firstMargin bool) ([]float64, error) {
	const op = "GaussianCopula.PartialDerivative"
	if err := c.state.RequireFitted("GaussianCopula", "PartialDerivative"); err != nil {
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
		out[i] = hValueGaussian(u[i], v[i], c.rho)
	}
	return out, nil
}

// InversePartialDerivative computes the closed-form inverse h-function
//
//	u = Phi( Phi^{-1}(p)*sqrt(1-rho^2) + rho*Phi^{-1}(v) ).
func (c *GaussianCopula) InversePartialDerivative(X mat.Matrix, firstMargin bool) ([]float64, error) {
	const op = "GaussianCopula.InversePartialDerivative"
	if err := c.state.RequireFitted("GaussianCopula", "InversePartialDerivative"); err != nil {
		return nil, err
	}
	U, err := validatePseudo(op, X)
	if err != nil {
		return nil, err
	}
	U = applyMarginSwap(U, firstMargin)
	p, v := columns(U)

	norm := distuv.Normal{Mu: 0, Sigma: 1}
	out := make([]float64, len(p))
	for i := range p {
		pInv := norm.Quantile(p[i])
		vInv := norm.Quantile(v[i])
		out[i] = norm.CDF(pInv*math.Sqrt(1.0-c.rho*c.rho) + c.rho*vInv)
	}
	return out, nil
}

// Sample draws n pseudo-observations from the fitted copula as an n-by-2
// matrix of uniforms. Draws are deterministic for a given seed.
func (c *GaussianCopula) Sample(n int, seed uint64) (*mat.Dense, error) {
	const op = "GaussianCopula.Sample"
	if err := c.state.RequireFitted("GaussianCopula", "Sample"); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, errors.NewValueError(op, "n must be at least 1")
	}
	sigma := mat.NewSymDense(2, []float64{1, c.rho, c.rho, 1})
	src := xrand.NewSource(seed)
	dist, ok := distmv.NewNormal([]float64{0, 0}, sigma, src)
	if !ok {
		return nil, errors.NewValidationError("rho", "correlation matrix is not positive definite", c.rho)
	}
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	out := mat.NewDense(n, 2, nil)
	buf := make([]float64, 2)
	for i := 0; i < n; i++ {
		dist.Rand(buf)
		out.Set(i, 0, norm.CDF(buf[0]))
		out.Set(i, 1, norm.CDF(buf[1]))
	}
	return out, nil
}

// hValueGaussian evaluates the Gaussian h-function for a conditioned margin
// u and conditioning margin v.
func hValueGaussian(u, v, rho float64) float64 {
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	uInv := norm.Quantile(u)
	vInv := norm.Quantile(v)
	return norm.CDF((uInv - rho*vInv) / math.Sqrt(1.0-rho*rho))
}

// negLogLikelihoodGaussian is the scalar optimization objective of the MLE
// fitting strategy.
func negLogLikelihoodGaussian(u, v []float64, rho float64) float64 {
	scores, err := sampleScoresGaussian(u, v, rho)
	if err != nil {
		return math.Inf(1)
	}
	sum := 0.0
	for _, s := range scores {
		sum -= s
	}
	return sum
}

// sampleScoresGaussian computes the per-observation log-density of the
// bivariate Gaussian copula. rho outside [-1, 1] is a ValidationError, never
// a silent NaN.
func sampleScoresGaussian(u, v []float64, rho float64) ([]float64, error) {
	if rho < -1.0 || rho > 1.0 || math.IsNaN(rho) {
		return nil, errors.NewValidationError("rho", "must lie in [-1, 1]", rho)
	}

	norm := distuv.Normal{Mu: 0, Sigma: 1}
	a := 1.0 - rho*rho
	out := make([]float64, len(u))
	for i := range u {
		x := norm.Quantile(u[i])
		y := norm.Quantile(v[i])
		out[i] = -0.5*math.Log(a) - (rho*rho*(x*x+y*y)-2.0*rho*x*y)/(2.0*a)
	}
	return out, nil
}
