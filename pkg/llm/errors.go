package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
)

// ErrorType classifies LLM call failures.
type ErrorType string

const (
	ErrorTypeAuth       ErrorType = "auth"
	ErrorTypeRateLimit  ErrorType = "rate_limit"
	ErrorTypeOverloaded ErrorType = "overloaded"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeBadRequest ErrorType = "bad_request"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error is a structured LLM error with classification and retryability.
type Error struct {
	Type      ErrorType
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable implements the retry.RetryableError interface.
// This allows the retry package to check retryability without importing llm.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// ClassifyError categorizes an Anthropic API error into a structured Error.
// Rate limits, overload, and timeouts are retryable; auth and request
// errors are not.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Type {
		case "authentication_error", "permission_error":
			return &Error{Type: ErrorTypeAuth, Message: apiErr.Message, Retryable: false, Cause: err}
		case "rate_limit_error":
			return &Error{Type: ErrorTypeRateLimit, Message: apiErr.Message, Retryable: true, Cause: err}
		case "overloaded_error":
			return &Error{Type: ErrorTypeOverloaded, Message: apiErr.Message, Retryable: true, Cause: err}
		case "invalid_request_error", "not_found_error":
			return &Error{Type: ErrorTypeBadRequest, Message: apiErr.Message, Retryable: false, Cause: err}
		case "api_error":
			return &Error{Type: ErrorTypeUnknown, Message: apiErr.Message, Retryable: true, Cause: err}
		}
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "context deadline exceeded") || strings.Contains(lower, "timeout"):
		return &Error{Type: ErrorTypeTimeout, Message: "request timed out", Retryable: true, Cause: err}
	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "connection reset"):
		return &Error{Type: ErrorTypeUnknown, Message: "connection failed", Retryable: true, Cause: err}
	}

	return &Error{Type: ErrorTypeUnknown, Message: "llm call failed", Retryable: false, Cause: err}
}
