package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Structured codes the API uses for authentication failures
const (
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeTokenExpired      = "TOKEN_EXPIRED"
	CodeInvalidToken      = "INVALID_TOKEN"
	CodeMissingAuthHeader = "MISSING_AUTH_HEADER"
)

// APIError is a non-2xx response from the remote API. Conflict responses
// carry hints pointing at the record that caused them.
type APIError struct {
	Status  int
	Code    string
	Message string

	BookingID      string
	PaymentID      string
	ActiveTicketID string

	Method string
	Path   string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// NetworkError is a transport failure: the request never produced a response
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// AsAPIError extracts an *APIError from err
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNetworkError reports whether err is a transport failure
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Status
	}
	return 0
}

// IsAuthFailure reports whether err means the bearer token is no longer
// accepted. It switches on status and structured code only.
func IsAuthFailure(err error) bool {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return false
	}
	if apiErr.Status == http.StatusUnauthorized {
		return true
	}
	switch apiErr.Code {
	case CodeUnauthorized, CodeTokenExpired, CodeInvalidToken, CodeMissingAuthHeader:
		return true
	}
	return false
}

// MessageOf returns a message suitable for a toast
func MessageOf(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if IsNetworkError(err) {
		return NetworkErrorMessage
	}
	if apiErr, ok := AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// NetworkErrorMessage is shown for every transport failure
const NetworkErrorMessage = "Network error. Please check your connection and try again."
