package generation

import (
	"context"
	"errors"
	"fmt"
)

// Common errors returned by the generation package
var (
	// ErrInvalidConfig is returned when the client configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrNotConfigured is returned when no generation backend is available,
	// typically because no API key was supplied
	ErrNotConfigured = errors.New("generation service is not configured")

	// ErrInvalidResponse is returned when a successful response from the model
	// cannot be decoded or carries no content
	ErrInvalidResponse = errors.New("invalid response from language model")
)

// maxBodyCapture bounds how much of an upstream error body is kept.
const maxBodyCapture = 4096

// UpstreamError is returned when the remote service answers with a non-success
// status. It is never retried.
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
}

// NewUpstreamError builds an UpstreamError, truncating the captured body.
func NewUpstreamError(provider string, status int, body []byte) *UpstreamError {
	if len(body) > maxBodyCapture {
		body = body[:maxBodyCapture]
	}
	return &UpstreamError{Provider: provider, Status: status, Body: string(body)}
}

func (e *UpstreamError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("upstream error %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("%s error %d: %s", e.Provider, e.Status, e.Body)
}

// IsCredentialFailure reports whether the upstream rejected our credentials.
func (e *UpstreamError) IsCredentialFailure() bool {
	return e.Status == 401 || e.Status == 403
}

// TransientError wraps a network-level failure (DNS, connection reset,
// per-attempt timeout) that may succeed on a later attempt.
type TransientError struct {
	Cause   error
	Timeout bool
}

func (e *TransientError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("transient failure (timeout): %v", e.Cause)
	}
	return fmt.Sprintf("transient failure: %v", e.Cause)
}

func (e *TransientError) Unwrap() error { return e.Cause }

// ExhaustedRetriesError is returned once every allowed attempt has failed with
// a transient error. LastCause holds the final TransientError.
type ExhaustedRetriesError struct {
	Attempts  int
	LastCause error
}

func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("generation failed after %d attempts: %v", e.Attempts, e.LastCause)
}

func (e *ExhaustedRetriesError) Unwrap() error { return e.LastCause }

// IsTimeout reports whether err is, or wraps, a timeout-class transient failure.
func IsTimeout(err error) bool {
	var te *TransientError
	if errors.As(err, &te) {
		return te.Timeout
	}
	return errors.Is(err, context.DeadlineExceeded)
}
