package univariate

import (
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/webbsledge/skfolio/core/model"
	"github.com/webbsledge/skfolio/pkg/errors"
	"github.com/webbsledge/skfolio/pkg/log"
)

// Criterion selects the information criterion used to rank candidate
// families.
type Criterion int

const (
	// CriterionAIC ranks candidates by the Akaike information criterion.
	CriterionAIC Criterion = iota
	// CriterionBIC ranks candidates by the Bayesian information criterion.
	CriterionBIC
)

// SelectBest fits every candidate estimator on X and returns the one with
// the lowest information criterion. The candidates are fitted in place; the
// returned estimator is one of them.
func SelectBest(X mat.Matrix, candidates []model.UnivariateDistribution, criterion Criterion) (model.UnivariateDistribution, error) {
	const op = "univariate.SelectBest"
	if len(candidates) == 0 {
		return nil, errors.NewValidationError("candidates", "at least one candidate estimator is required", len(candidates))
	}

	var best model.UnivariateDistribution
	var bestValue float64
	for _, candidate := range candidates {
		if err := candidate.Fit(X); err != nil {
			return nil, errors.Wrap(err, op)
		}
		var value float64
		var err error
		switch criterion {
		case CriterionBIC:
			value, err = candidate.BIC(X)
		default:
			value, err = candidate.AIC(X)
		}
		if err != nil {
			return nil, errors.Wrap(err, op)
		}
		if best == nil || value < bestValue {
			best, bestValue = candidate, value
		}
	}

	repr, err := best.FittedRepr()
	if err != nil {
		return nil, err
	}
	slog.Debug("selected univariate distribution",
		log.KeyOperation, op,
		log.KeyEstimator, repr,
	)
	return best, nil
}
