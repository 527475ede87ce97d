package endpoint

import (
	"errors"
	"fmt"
)

// ResolutionErrorCode categorizes resolution failures.
type ResolutionErrorCode string

const (
	// ErrCodeTransport indicates the request never produced a response.
	ErrCodeTransport ResolutionErrorCode = "TRANSPORT"

	// ErrCodeStatus indicates the endpoint answered with a non-2xx status.
	ErrCodeStatus ResolutionErrorCode = "HTTP_STATUS"

	// ErrCodeDecode indicates the response body was not SPARQL JSON results.
	ErrCodeDecode ResolutionErrorCode = "DECODE"

	// ErrCodeEmptyClass indicates a class with no instances where one was required.
	ErrCodeEmptyClass ResolutionErrorCode = "EMPTY_CLASS"

	// ErrCodeQuery indicates the query could not be built.
	ErrCodeQuery ResolutionErrorCode = "QUERY"
)

// ResolutionError reports a failure to look up resources.
//
// Resolution errors are never retried. A batch whose resolution fails
// produces no statements.
type ResolutionError struct {
	Code ResolutionErrorCode

	// Message is a human-readable description.
	Message string

	// Endpoint is the URL queried, when known.
	Endpoint string

	// StatusCode is set for ErrCodeStatus.
	StatusCode int

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Endpoint != "" {
		msg += " (endpoint=" + e.Endpoint + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// IsResolutionError reports whether err is or wraps a *ResolutionError.
func IsResolutionError(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re)
}

// IsEmptyClass reports whether err is an empty-class resolution error.
func IsEmptyClass(err error) bool {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Code == ErrCodeEmptyClass
	}
	return false
}
