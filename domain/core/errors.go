package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound           = errors.New("resource not found")
	ErrExperimentNotFound = fmt.Errorf("%w: experiment", ErrNotFound)
	ErrRunNotFound        = fmt.Errorf("%w: run", ErrNotFound)
	ErrUnitNotFound       = fmt.Errorf("%w: unit", ErrNotFound)

	// Validation errors
	ErrEmptyRoster        = errors.New("roster has no units")
	ErrDuplicateUnit      = errors.New("duplicate unit identifier")
	ErrTreatedCountRange  = errors.New("treated count must be strictly between 0 and roster size")
	ErrLengthMismatch     = errors.New("outcome and treatment vectors differ in length")
	ErrNonBinaryTreatment = errors.New("treatment indicator must be 0 or 1")
	ErrDegenerateArms     = errors.New("both treatment arms must contain at least one unit")
	ErrNonPositiveTrials  = errors.New("trial count must be positive")

	// Domain errors for closed-form estimators
	ErrNegativeVariance      = errors.New("variance cannot be negative")
	ErrCovarianceOutOfRange  = errors.New("covariance inconsistent with variances")
	ErrNegativeVarianceBound = errors.New("sampling variance expression is negative")

	// Determinism errors
	ErrNonDeterministic = errors.New("non-deterministic result")
	ErrSeedMismatch     = errors.New("seed mismatch")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewTreatedCountError(m, n int) error {
	return fmt.Errorf("%w: got m=%d with N=%d", ErrTreatedCountRange, m, n)
}

func NewCovarianceError(cov, bound float64) error {
	return fmt.Errorf("%w: |%g| > %g", ErrCovarianceOutOfRange, cov, bound)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyRoster) ||
		errors.Is(err, ErrDuplicateUnit) ||
		errors.Is(err, ErrTreatedCountRange) ||
		errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, ErrNonBinaryTreatment) ||
		errors.Is(err, ErrDegenerateArms) ||
		errors.Is(err, ErrNonPositiveTrials)
}
