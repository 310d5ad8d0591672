package errors

import (
	"errors"
	"fmt"
)

// Domain error types for business logic

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists indicates a resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal error
	ErrInternal = errors.New("internal error")

	// ErrTimeout indicates an operation timeout
	ErrTimeout = errors.New("operation timeout")

	// ErrUnavailable indicates a service is unavailable
	ErrUnavailable = errors.New("service unavailable")
)

// Iteration-specific errors

var (
	// ErrGatewayUnavailable indicates the broker cannot provide the
	// account/position snapshot at all; the iteration cannot proceed
	ErrGatewayUnavailable = errors.New("trading gateway unavailable")

	// ErrCheckpointUnavailable indicates the checkpoint store cannot be
	// written; iteration state can no longer be recovered after a crash
	ErrCheckpointUnavailable = errors.New("checkpoint store unavailable")

	// ErrAnalysisFailed indicates a single ticker's analysis call failed;
	// recoverable, the ticker is downgraded to HOLD
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrOrderRejected indicates an order was rejected by the broker;
	// recoverable, recorded against the trade and the iteration continues
	ErrOrderRejected = errors.New("order rejected by broker")

	// ErrStateInvariant indicates a step update violated the workflow
	// state invariants at a merge boundary
	ErrStateInvariant = errors.New("workflow state invariant violated")

	// ErrIterationFailed indicates the iteration terminated in the error phase
	ErrIterationFailed = errors.New("iteration terminated with error")
)

// Broker-specific errors

var (
	// ErrInsufficientBalance indicates insufficient account balance
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidSymbol indicates an invalid ticker symbol
	ErrInvalidSymbol = errors.New("invalid ticker symbol")

	// ErrPositionNotFound indicates position not found
	ErrPositionNotFound = errors.New("position not found")

	// ErrMarketClosed indicates the market is closed
	ErrMarketClosed = errors.New("market is closed")
)

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
