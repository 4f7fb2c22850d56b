package oauth

import "fmt"

// Category classifies flow failures. Every failure an attempt can produce
// maps to exactly one category so callers branch on structure, not on
// error-string contents.
type Category int

const (
	// ConfigurationError means required configuration is missing or invalid.
	// Detected before any network call or browser launch.
	ConfigurationError Category = iota

	// BindFailure means the loopback listener could not bind its port.
	BindFailure

	// CallbackError means the provider reported an error in the callback,
	// or the callback failed validation (e.g. state mismatch).
	CallbackError

	// TimeoutError means no callback arrived within the configured bound.
	// Fatal to the attempt, retryable by the caller.
	TimeoutError

	// ExchangeError means the token endpoint rejected the code or returned
	// a malformed payload.
	ExchangeError

	// TransportError means a network failure occurred during the exchange.
	// Retryable.
	TransportError
)

// String returns a human-readable name for the failure category.
func (c Category) String() string {
	switch c {
	case ConfigurationError:
		return "configuration error"
	case BindFailure:
		return "bind failure"
	case CallbackError:
		return "callback error"
	case TimeoutError:
		return "timeout"
	case ExchangeError:
		return "exchange error"
	case TransportError:
		return "transport error"
	default:
		return "unknown error"
	}
}

// bindFailureHint is appended to bind failures so users know how to recover.
const bindFailureHint = "try another port or run with elevated privileges"

// FlowError is a flow failure with its category. All terminal failures of
// Authenticate are *FlowError values; the process never aborts because of
// one.
type FlowError struct {
	// Category classifies the failure.
	Category Category

	// Message is a concise human-readable status line.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *FlowError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Category, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Category, e.Err)
	}
	return e.Category.String()
}

// Unwrap returns the underlying cause for error chain inspection.
func (e *FlowError) Unwrap() error {
	return e.Err
}

// newFlowError creates a FlowError with a formatted message.
func newFlowError(cat Category, format string, args ...interface{}) *FlowError {
	return &FlowError{Category: cat, Message: fmt.Sprintf(format, args...)}
}

// wrapFlowError creates a FlowError wrapping an underlying cause.
func wrapFlowError(cat Category, err error, format string, args ...interface{}) *FlowError {
	return &FlowError{Category: cat, Message: fmt.Sprintf(format, args...), Err: err}
}
