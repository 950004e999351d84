package errors

import "fmt"

// ErrorCategory separates errors the engine must stop on from errors the
// execution layer is expected to recover from.
type ErrorCategory string

const (
	// Contract violations: out-of-order bars, double entry. Processing
	// halts rather than continuing with undefined indicator/position state.
	ErrorCategoryContract ErrorCategory = "CONTRACT"

	// Configuration problems found before the session starts.
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"

	// Order submission failures reported by the execution collaborator.
	// Retryable by that layer; the engine only reflects the pending state.
	ErrorCategoryOrder ErrorCategory = "ORDER"
)

// EngineError is a categorized error with the component and operation that
// produced it.
type EngineError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
	Retryable  bool
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// IsFatal returns whether this error should stop bar processing
func (e *EngineError) IsFatal() bool {
	return e.Category == ErrorCategoryContract || e.Category == ErrorCategoryConfiguration
}

// IsRetryable returns whether the execution layer may retry the operation
func (e *EngineError) IsRetryable() bool {
	return e.Retryable
}

// NewContractViolation creates a fatal contract-violation error
func NewContractViolation(component, operation, message string) *EngineError {
	return &EngineError{
		Category:  ErrorCategoryContract,
		Component: component,
		Operation: operation,
		Message:   message,
	}
}

// NewConfigurationError creates a fatal configuration error
func NewConfigurationError(component, operation, message string) *EngineError {
	return &EngineError{
		Category:  ErrorCategoryConfiguration,
		Component: component,
		Operation: operation,
		Message:   message,
	}
}

// NewOrderError wraps an execution-layer failure as a retryable order error
func NewOrderError(component, operation string, err error) *EngineError {
	return &EngineError{
		Category:   ErrorCategoryOrder,
		Component:  component,
		Operation:  operation,
		Message:    "order submission failed",
		Underlying: err,
		Retryable:  true,
	}
}
