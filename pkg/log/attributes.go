package log

// Attribute keys shared by the fit diagnostics emitted across estimators.
const (
	KeyEstimator = "estimator"
	KeyOperation = "operation"
	KeySamples   = "n_samples"
	KeyParams    = "params"
	KeyRho       = "rho"
	KeyDof       = "dof"
	KeyStrategy  = "strategy"
)
