package engine

import (
	"errors"
	"fmt"
)

const (
	// DefaultLimit is the number of resources resolved when a request
	// does not set one.
	DefaultLimit = 1000

	// DefaultMaxLimit caps the resources a single request may resolve.
	DefaultMaxLimit = 10000
)

// LimitExceededError is returned when a request asks for more resources
// than the generator allows.
type LimitExceededError struct {
	Class string // The class requested
	Limit int    // Requested resource limit
	Max   int    // Maximum allowed limit
}

// Error implements the error interface.
func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("class %s: limit %d exceeds maximum %d", e.Class, e.Limit, e.Max)
}

// IsLimitExceededError returns true if the error is a LimitExceededError.
// Uses errors.As to handle wrapped errors.
func IsLimitExceededError(err error) bool {
	var le *LimitExceededError
	return errors.As(err, &le)
}

// effectiveLimit applies the default and the cap to a requested limit.
func effectiveLimit(class string, requested, max int) (int, error) {
	switch {
	case requested < 0:
		return 0, fmt.Errorf("class %s: limit %d must not be negative", class, requested)
	case requested == 0:
		if max > 0 {
			return min(DefaultLimit, max), nil
		}
		return DefaultLimit, nil
	}
	if max > 0 && requested > max {
		return 0, &LimitExceededError{Class: class, Limit: requested, Max: max}
	}
	return requested, nil
}
