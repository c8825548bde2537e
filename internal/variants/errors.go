package variants

import (
	"errors"
	"fmt"
	"net/http"
)

// Generation errors. Every failure returned by Generate matches exactly one of these.
var (
	// ErrEmptyExcerpt is returned when the excerpt is blank after trimming.
	ErrEmptyExcerpt = errors.New("excerpt is empty")

	// ErrNotConfigured is returned in remote mode when no usable API key is set.
	ErrNotConfigured = errors.New("generation API key not configured")

	// ErrInvalidAPIKey is returned when the service rejects the credential.
	ErrInvalidAPIKey = errors.New("generation API key rejected")

	// ErrTimeout is returned when the request exceeds its deadline or the transport fails.
	ErrTimeout = errors.New("generation request timed out")

	// ErrRateLimit is returned when the service reports an exceeded quota.
	ErrRateLimit = errors.New("generation rate limit exceeded")

	// ErrContentPolicy is returned when the service refuses the request content.
	ErrContentPolicy = errors.New("generation request rejected by content policy")

	// ErrInvalidResponse is returned for malformed responses or when no valid variant remains.
	ErrInvalidResponse = errors.New("invalid response from generation service")

	// ErrCanceled is returned when the caller cancels the request.
	ErrCanceled = errors.New("generation request canceled")
)

// GenerationError wraps errors with additional context about the generation failure.
type GenerationError struct {
	// Op is the operation that failed (e.g., "openAIBackend.Complete").
	Op string

	// Err is one of the package sentinel errors.
	Err error

	// Details provides additional context about the failure.
	Details string

	// StatusCode is the HTTP status reported by the service, if any.
	StatusCode int
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	msg := fmt.Sprintf("variants: %s failed: %v", e.Op, e.Err)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

// Unwrap returns the underlying error for error unwrapping.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is implements error matching.
func (e *GenerationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(op string, err error, details string) *GenerationError {
	return &GenerationError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapGenerationError wraps an error as a GenerationError if it isn't already one.
func WrapGenerationError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return err
	}

	return NewGenerationError(op, err, details)
}

// errorForStatus maps an HTTP status code to the generation error taxonomy.
func errorForStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized:
		return ErrInvalidAPIKey
	case code == http.StatusRequestTimeout:
		return ErrTimeout
	case code == http.StatusTooManyRequests:
		return ErrRateLimit
	case code >= 400 && code < 500:
		return ErrContentPolicy
	default:
		return ErrInvalidResponse
	}
}

// statusError builds the GenerationError for a failed HTTP exchange.
func statusError(op string, code int, details string) error {
	return &GenerationError{
		Op:         op,
		Err:        errorForStatus(code),
		Details:    details,
		StatusCode: code,
	}
}

// UserMessage returns a message suitable for display for a generation error.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyExcerpt):
		return "The excerpt is empty. Capture or enter some text first."
	case errors.Is(err, ErrNotConfigured):
		return "AI API key not configured. Set OPENAI_API_KEY (or GEMINI_API_KEY with GENERATION_PROVIDER=gemini) or switch to mock mode."
	case errors.Is(err, ErrInvalidAPIKey):
		return "AI key is invalid. Please check your API key configuration."
	case errors.Is(err, ErrTimeout):
		return "Request timed out. Please try again."
	case errors.Is(err, ErrRateLimit):
		return "Rate limit exceeded. Please wait and try again."
	case errors.Is(err, ErrContentPolicy):
		return "Content could not be processed by AI service."
	case errors.Is(err, ErrCanceled):
		return "Request was canceled."
	default:
		return "Invalid response from AI service. Please try again."
	}
}
