// Package model provides fitted-state management and the estimator
// interfaces shared by all distribution estimators.
package model

import (
	"sync"

	"github.com/webbsledge/skfolio/pkg/errors"
)

// StateManager manages the fitted state of an estimator in a thread-safe
// manner. Estimators compose a StateManager instead of embedding a base
// estimator type.
//
// The flag itself is guarded, but an estimator instance as a whole is not
// safe for a concurrent Fit and query; callers needing that must synchronize
// externally. Distinct instances are fully independent.
type StateManager struct {
	Fitted bool
	mu     sync.RWMutex

	NFeatures int
	NSamples  int
}

// NewStateManager creates a new StateManager instance.
func NewStateManager() *StateManager {
	return &StateManager{
		Fitted: false,
	}
}

// IsFitted returns whether the estimator has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Fitted
}

// SetFitted marks the estimator as fitted.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = true
}

// Reset resets the fitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = false
	s.NFeatures = 0
	s.NSamples = 0
}

// SetDimensions records the number of samples and features seen during Fit.
func (s *StateManager) SetDimensions(nSamples, nFeatures int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.NSamples = nSamples
	s.NFeatures = nFeatures
}

// GetDimensions returns the number of samples and features seen during Fit.
func (s *StateManager) GetDimensions() (nSamples, nFeatures int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.NSamples, s.NFeatures
}

// RequireFitted returns a NotFittedError naming the estimator and method if
// Fit has not completed successfully.
func (s *StateManager) RequireFitted(estimatorName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(estimatorName, method)
	}
	return nil
}
