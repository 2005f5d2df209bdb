// Package errors classifies failures returned by the portal API client.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx answer from the portal API. Detail carries the
// server's "detail" (or "error") text when the body had one.
type APIError struct {
	StatusCode int
	Detail     string
	// Body is the raw response body when it was not a JSON error document.
	Body string
	// Err is set when the client failed before sending, e.g. a session that
	// could not be refreshed.
	Err error
}

func NewAPIError(status int, detail string) *APIError {
	return &APIError{StatusCode: status, Detail: detail}
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("portal API %d %s: %s", e.StatusCode, e.Code(), e.Detail)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *APIError) Unwrap() error { return e.Err }

// Code is a stable symbolic name for the status.
func (e *APIError) Code() string {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusRequestEntityTooLarge:
		return "TOO_LARGE"
	case http.StatusUnprocessableEntity:
		return "UNPROCESSABLE"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case http.StatusServiceUnavailable:
		return "UNAVAILABLE"
	}
	if e.StatusCode >= http.StatusInternalServerError {
		return "INTERNAL_SERVER_ERROR"
	}
	return "UNKNOWN"
}

// UserMessage returns the server's explanation for client errors. Server
// errors return "" so callers fall back to their own generic wording.
func (e *APIError) UserMessage() string {
	if e.StatusCode >= http.StatusInternalServerError {
		return ""
	}
	return e.Detail
}

// DefaultDetail is the text used when the response carried none.
func DefaultDetail(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusNotFound:
		return "Resource not found"
	case http.StatusTooManyRequests:
		return "Rate limit exceeded"
	case http.StatusInternalServerError:
		return "Internal server error"
	}
	return http.StatusText(status)
}

// AsAPIError unwraps err to an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func IsAPIError(err error) bool {
	_, ok := AsAPIError(err)
	return ok
}

func hasStatus(err error, status int) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == status
}

func IsNotFound(err error) bool     { return hasStatus(err, http.StatusNotFound) }
func IsUnauthorized(err error) bool { return hasStatus(err, http.StatusUnauthorized) }
func IsForbidden(err error) bool    { return hasStatus(err, http.StatusForbidden) }

// NetworkError means no HTTP response was received.
type NetworkError struct {
	Operation string
	URL       string
	Err       error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Operation, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
