package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("validation error")
	// ErrCannotConnect is returned when a provider cannot be reached
	ErrCannotConnect = errors.New("cannot connect to provider")
	// ErrProviderResponse is returned when a provider answers with an error or an unexpected shape
	ErrProviderResponse = errors.New("unexpected provider response")
)

// ErrorKind classifies conversion failures.
type ErrorKind string

const (
	// KindValidation covers invalid amounts and currency codes, rejected before any network call.
	KindValidation ErrorKind = "validation"
	// KindConnectivity covers DNS failures, timeouts and refused connections.
	KindConnectivity ErrorKind = "connectivity"
	// KindProvider covers non-2xx statuses and unexpected response shapes.
	KindProvider ErrorKind = "provider"
	// KindUnknown is anything not classified by the core.
	KindUnknown ErrorKind = "unknown"
)

// ConversionError is the error type returned by quote and conversion operations.
type ConversionError struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

// Error implements error.
func (e *ConversionError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

// Unwrap returns the underlying cause.
func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels so callers can use errors.Is(err, ErrValidation).
func (e *ConversionError) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrCannotConnect:
		return e.Kind == KindConnectivity
	case ErrProviderResponse:
		return e.Kind == KindProvider
	}
	return false
}

// NewValidationError builds a KindValidation error.
func NewValidationError(op string, err error) *ConversionError {
	return &ConversionError{Kind: KindValidation, Op: op, Message: err.Error(), Err: err}
}

// NewConnectivityError builds a KindConnectivity error. The message always
// starts with "cannot connect" so it reads the same whatever the cause.
func NewConnectivityError(op, target string, err error) *ConversionError {
	return &ConversionError{
		Kind:    KindConnectivity,
		Op:      op,
		Message: fmt.Sprintf("cannot connect to %s: %v", target, err),
		Err:     err,
	}
}

// NewProviderError builds a KindProvider error.
func NewProviderError(op string, err error) *ConversionError {
	return &ConversionError{Kind: KindProvider, Op: op, Message: err.Error(), Err: err}
}

// KindOf classifies err. Nil errors have no kind.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ce *ConversionError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}
