package univariate

import (
	"fmt"
	"log/slog"
	"math"

	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/webbsledge/skfolio/pkg/log"
)

// StudentTConfig holds the construction-time configuration of a StudentT
// estimator. A nil field is estimated from the data; a non-nil field is held
// fixed during fitting. The degrees of freedom are always estimated and
// expose no fixed-value override.
type StudentTConfig struct {
	Loc   *float64
	Scale *float64
}

// StudentT fits a univariate Student's t distribution by maximum likelihood.
//
// The free parameters are searched with Nelder-Mead on the negative
// log-likelihood; degrees of freedom and scale are optimized in log space to
// keep them positive. The starting degrees of freedom come from the method of
// moments on the excess kurtosis.
type StudentT struct {
	base
	cfg StudentTConfig

	// Fitted parameters, populated by Fit.
	dof   float64
	loc   float64
	scale float64
}

// NewStudentT creates an unfitted StudentT estimator.
func NewStudentT(cfg StudentTConfig) *StudentT {
	s := &StudentT{cfg: cfg}
	s.base = newBase(s)
	return s
}

func (s *StudentT) familyName() string { return "StudentT" }

func (s *StudentT) numParams() int { return 3 }

func (s *StudentT) fittedDist(src xrand.Source) continuousDist {
	return distuv.StudentsT{Mu: s.loc, Sigma: s.scale, Nu: s.dof, Src: src}
}

// Params returns the fitted parameter mapping {dof, loc, scale}.
func (s *StudentT) Params() (map[string]float64, error) {
	if err := s.requireFitted("Params"); err != nil {
		return nil, err
	}
	return map[string]float64{"dof": s.dof, "loc": s.loc, "scale": s.scale}, nil
}

// FittedRepr returns a human-readable representation of the fitted
// distribution, e.g. "StudentT(2.75, 0.000618, 0.00681)".
func (s *StudentT) FittedRepr() (string, error) {
	if err := s.requireFitted("FittedRepr"); err != nil {
		return "", err
	}
	return fmt.Sprintf("StudentT(%.3g, %.3g, %.3g)", s.dof, s.loc, s.scale), nil
}

// Fit estimates the free parameters from the single-column input X. Unlike
// the two-parameter families, fixing both location and scale is allowed
// here: the degrees of freedom are always estimated.
func (s *StudentT) Fit(X mat.Matrix) error {
	const op = "StudentT.Fit"
	xs, err := validateColumn(op, X)
	if err != nil {
		return err
	}

	mean := stat.Mean(xs, nil)
	std := math.Sqrt(stat.MomentAbout(2, xs, mean, nil))
	if std <= 0 || math.IsNaN(std) {
		std = 1.0
	}

	// Method-of-moments start: excess kurtosis of a t law is 6/(dof-4).
	dof0 := 10.0
	if g2 := stat.ExKurtosis(xs, nil); g2 > 0.3 {
		dof0 = math.Min(math.Max(4.0+6.0/g2, 2.1), 30.0)
	}
	loc0 := mean
	scale0 := std
	if dof0 > 2 {
		scale0 = std * math.Sqrt((dof0-2.0)/dof0)
	}

	// Free parameters in optimization order: log(dof), then loc and
	// log(scale) unless fixed.
	theta0 := []float64{math.Log(dof0)}
	if s.cfg.Loc == nil {
		theta0 = append(theta0, loc0)
	}
	if s.cfg.Scale == nil {
		theta0 = append(theta0, math.Log(scale0))
	}

	unpack := func(theta []float64) (dof, loc, scale float64) {
		dof = math.Exp(theta[0])
		idx := 1
		if s.cfg.Loc != nil {
			loc = *s.cfg.Loc
		} else {
			loc = theta[idx]
			idx++
		}
		if s.cfg.Scale != nil {
			scale = *s.cfg.Scale
		} else {
			scale = math.Exp(theta[idx])
		}
		return dof, loc, scale
	}

	nll := func(theta []float64) float64 {
		dof, loc, scale := unpack(theta)
		d := distuv.StudentsT{Mu: loc, Sigma: scale, Nu: dof}
		sum := 0.0
		for _, x := range xs {
			sum -= d.LogProb(x)
		}
		return sum
	}

	theta, err := minimizeNLL(op, nll, theta0)
	if err != nil {
		return err
	}
	s.dof, s.loc, s.scale = unpack(theta)
	s.state.SetDimensions(len(xs), 1)
	s.state.SetFitted()
	slog.Debug("fitted univariate distribution",
		log.KeyEstimator, s.familyName(),
		log.KeySamples, len(xs),
		log.KeyParams, map[string]float64{"dof": s.dof, "loc": s.loc, "scale": s.scale},
	)
	return nil
}
