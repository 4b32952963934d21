package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/phrazzld/recruiter-api/internal/api/shared"
	"github.com/phrazzld/recruiter-api/internal/generation"
	"github.com/phrazzld/recruiter-api/internal/redact"
	"github.com/phrazzld/recruiter-api/internal/service/recruiting"
)

// Error categories reported to clients alongside the message.
const (
	CategoryValidation       = "validation"
	CategoryRateLimited      = "rate_limited"
	CategoryTimeout          = "timeout"
	CategoryUnavailable      = "unavailable"
	CategoryMisconfigured    = "misconfigured"
	CategoryUpstreamRejected = "upstream_rejected"
	CategoryInternal         = "internal"
)

// User-facing messages. They never carry upstream or internal detail.
const (
	msgValidation       = "Validation failed"
	msgInvalidFormat    = "Invalid request format"
	msgTimeout          = "The request took too long to process. Please try again."
	msgUnavailable      = "Unable to connect to external services. Please try again later."
	msgMisconfigured    = "The AI service is not configured correctly."
	msgUpstreamRejected = "The AI service is currently unavailable. Please try again later."
	msgInternal         = "An unexpected error occurred"
)

// errorMapping is the client-facing view of an error.
type errorMapping struct {
	status   int
	category string
	message  string
}

func mapError(err error) errorMapping {
	var (
		validationErr *recruiting.ValidationError
		mismatchErr   *shared.TypeMismatchError
		exhaustedErr  *generation.ExhaustedRetriesError
		upstreamErr   *generation.UpstreamError
	)

	switch {
	case err == nil:
		return errorMapping{http.StatusInternalServerError, CategoryInternal, msgInternal}

	case errors.As(err, &validationErr), errors.As(err, &mismatchErr):
		return errorMapping{http.StatusBadRequest, CategoryValidation, msgValidation}

	case errors.Is(err, shared.ErrMalformedBody):
		return errorMapping{http.StatusBadRequest, CategoryValidation, msgInvalidFormat}

	case errors.As(err, &exhaustedErr):
		if generation.IsTimeout(exhaustedErr.LastCause) {
			return errorMapping{http.StatusGatewayTimeout, CategoryTimeout, msgTimeout}
		}
		return errorMapping{http.StatusServiceUnavailable, CategoryUnavailable, msgUnavailable}

	case errors.Is(err, generation.ErrNotConfigured):
		return errorMapping{http.StatusServiceUnavailable, CategoryMisconfigured, msgMisconfigured}

	case errors.As(err, &upstreamErr):
		if upstreamErr.IsCredentialFailure() {
			return errorMapping{http.StatusServiceUnavailable, CategoryMisconfigured, msgMisconfigured}
		}
		return errorMapping{http.StatusBadGateway, CategoryUpstreamRejected, msgUpstreamRejected}

	case errors.Is(err, generation.ErrInvalidResponse):
		return errorMapping{http.StatusBadGateway, CategoryUpstreamRejected, msgUpstreamRejected}

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errorMapping{http.StatusServiceUnavailable, CategoryUnavailable, msgUnavailable}

	default:
		return errorMapping{http.StatusInternalServerError, CategoryInternal, msgInternal}
	}
}

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	return mapError(err).status
}

// MapErrorToCategory returns the error category reported to clients.
func MapErrorToCategory(err error) string {
	return mapError(err).category
}

// GetSafeErrorMessage returns a sanitized, user-friendly message for err.
func GetSafeErrorMessage(err error) string {
	return mapError(err).message
}

// ValidationDetails returns the per-field messages carried by err, if any.
func ValidationDetails(err error) []string {
	var validationErr *recruiting.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Details
	}
	var mismatchErr *shared.TypeMismatchError
	if errors.As(err, &mismatchErr) {
		return []string{typeMismatchMessage(mismatchErr)}
	}
	return nil
}

func typeMismatchMessage(err *shared.TypeMismatchError) string {
	switch err.Expected {
	case "[]string":
		return err.Field + " must be an array of strings"
	case "string":
		return err.Field + " must be a string"
	default:
		return err.Field + " has an invalid type"
	}
}

// errorBody builds the error response body for err.
func errorBody(r *http.Request, err error, debug bool) shared.ErrorResponse {
	m := mapError(err)
	body := shared.NewErrorResponse(r, m.status, m.category, m.message)
	body.Details = ValidationDetails(err)
	if debug && err != nil && m.category != CategoryValidation {
		body.Detail = redact.Error(err)
	}
	return body
}

// HandleAPIError writes the categorized error response for err and logs the
// redacted error. With debug set, the redacted error text is also returned
// to the client.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, debug bool) {
	m := mapError(err)
	opts := []shared.ResponseOption{shared.WithErrorDetail(debug && m.category != CategoryValidation)}
	if details := ValidationDetails(err); len(details) > 0 {
		opts = append(opts, shared.WithDetails(details))
	}
	shared.RespondWithErrorAndLog(w, r, m.status, m.category, m.message, err, opts...)
}
