package univariate

import (
	"fmt"
	"log/slog"
	"math"

	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/webbsledge/skfolio/pkg/errors"
	"github.com/webbsledge/skfolio/pkg/log"
)

// GaussianConfig holds the construction-time configuration of a Gaussian
// estimator. A nil field is estimated from the data; a non-nil field is held
// fixed during fitting.
type GaussianConfig struct {
	Loc   *float64
	Scale *float64
}

// Gaussian fits a univariate normal distribution by maximum likelihood.
//
// The maximum likelihood estimates have closed forms: the sample mean and
// the population (1/n) standard deviation, or the second moment about a
// fixed location.
type Gaussian struct {
	base
	cfg GaussianConfig

	// Fitted parameters, populated by Fit.
	loc   float64
	scale float64
}

// NewGaussian creates an unfitted Gaussian estimator.
func NewGaussian(cfg GaussianConfig) *Gaussian {
	g := &Gaussian{cfg: cfg}
	g.base = newBase(g)
	return g
}

func (g *Gaussian) familyName() string { return "Gaussian" }

func (g *Gaussian) numParams() int { return 2 }

func (g *Gaussian) fittedDist(src xrand.Source) continuousDist {
	return distuv.Normal{Mu: g.loc, Sigma: g.scale, Src: src}
}

// Params returns the fitted parameter mapping {loc, scale}.
func (g *Gaussian) Params() (map[string]float64, error) {
	if err := g.requireFitted("Params"); err != nil {
		return nil, err
	}
	return map[string]float64{"loc": g.loc, "scale": g.scale}, nil
}

// FittedRepr returns a human-readable representation of the fitted
// distribution, e.g. "Gaussian(0.00035, 0.0115)".
func (g *Gaussian) FittedRepr() (string, error) {
	if err := g.requireFitted("FittedRepr"); err != nil {
		return "", err
	}
	return fmt.Sprintf("Gaussian(%.3g, %.3g)", g.loc, g.scale), nil
}

// Fit estimates the free parameters from the single-column input X. Fixing
// both location and scale is a configuration error: nothing is left to
// estimate.
func (g *Gaussian) Fit(X mat.Matrix) error {
	const op = "Gaussian.Fit"
	xs, err := validateColumn(op, X)
	if err != nil {
		return err
	}
	if g.cfg.Loc != nil && g.cfg.Scale != nil {
		return errors.NewValidationError("loc/scale", "either loc or scale must be free to be fitted", g.cfg)
	}

	loc := stat.Mean(xs, nil)
	if g.cfg.Loc != nil {
		loc = *g.cfg.Loc
	}
	scale := math.Sqrt(stat.MomentAbout(2, xs, loc, nil))
	if g.cfg.Scale != nil {
		scale = *g.cfg.Scale
	}
	if scale <= 0 || math.IsNaN(scale) {
		return errors.NewValidationError("scale", "observations are degenerate: scale must be positive", scale)
	}

	g.loc = loc
	g.scale = scale
	g.state.SetDimensions(len(xs), 1)
	g.state.SetFitted()
	slog.Debug("fitted univariate distribution",
		log.KeyEstimator, g.familyName(),
		log.KeySamples, len(xs),
		log.KeyParams, map[string]float64{"loc": g.loc, "scale": g.scale},
	)
	return nil
}
