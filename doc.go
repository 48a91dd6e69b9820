// Package skfolio provides parametric probability-distribution estimation
// for portfolio modeling: univariate marginal laws (Gaussian, Student's t,
// Johnson SU) and bivariate dependence structures (Student's t and Gaussian
// copulas), all behind a uniform fit/score/sample contract.
//
// The estimators live in two packages:
//
//   - distribution/univariate fits marginal laws to a single return column
//     and exposes log-density, CDF, quantiles, seeded sampling and AIC/BIC
//     scoring for model selection.
//   - distribution/copula fits a bivariate dependence model to
//     pseudo-observations with uniform margins and adds the copula-specific
//     h-function and its inverse, the building blocks of conditional
//     scenario simulation.
//
// Shared infrastructure sits under core (fitted-state management, bounded
// likelihood optimizers) and pkg (structured errors, logging setup).
//
// A minimal end-to-end use:
//
//	marginal := univariate.NewStudentT(univariate.StudentTConfig{})
//	if err := marginal.Fit(returns); err != nil {
//		return err
//	}
//	dep := copula.NewStudentTCopula(copula.StudentTCopulaConfig{})
//	if err := dep.Fit(pseudoObservations); err != nil {
//		return err
//	}
//	scenarios, err := dep.Sample(10_000, seed)
package skfolio
