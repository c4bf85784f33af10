package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingData means a series or field needed for a derivation was not supplied.
	// Callers fall back to synthetic data instead of surfacing it.
	ErrMissingData = errors.New("insufficient input data")

	// ErrDivisionGuard means a ratio denominator was zero or close enough to it.
	ErrDivisionGuard = errors.New("denominator too close to zero")
)

// ExternalServiceError reports a failed call to the prediction service.
type ExternalServiceError struct {
	Status int // 0 when no response was received
	Body   string
	Err    error
}

func (e *ExternalServiceError) Error() string {
	msg := "prediction service error"
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	switch {
	case e.Body != "":
		msg += ": " + e.Body
	case e.Err != nil:
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}
