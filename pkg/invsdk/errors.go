package invsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ============================================================================
// Sentinel Errors
// ============================================================================

// Status kinds. Every *APIError matches exactly one of these (or none for
// statuses outside the list) via errors.Is.
var (
	ErrBadRequest   = errors.New("invsdk: bad request")
	ErrUnauthorized = errors.New("invsdk: unauthorized")
	ErrForbidden    = errors.New("invsdk: forbidden")
	ErrNotFound     = errors.New("invsdk: not found")
	ErrConflict     = errors.New("invsdk: conflict")
	ErrServer       = errors.New("invsdk: server error")
)

// Endpoint specific failures. These are carried by an *APIError alongside
// the status kind.
var (
	// ErrInvalidCredentials is returned by Login when the backend answers 401.
	ErrInvalidCredentials = errors.New("invsdk: invalid credentials")

	// ErrUserNotFound is returned by Login when the backend answers 404.
	ErrUserNotFound = errors.New("invsdk: user not found")

	// ErrInvalidRefreshToken is returned by Refresh when the backend answers 401.
	ErrInvalidRefreshToken = errors.New("invsdk: invalid refresh token")
)

var (
	// ErrNoAccessToken is returned by Session calls when the Authenticator
	// holds no access token.
	ErrNoAccessToken = errors.New("invsdk: no access token")

	// ErrInsufficientRole is returned before a request is sent when the
	// current role may not call the endpoint.
	ErrInsufficientRole = errors.New("invsdk: insufficient role")
)

// ============================================================================
// APIError
// ============================================================================

// APIError is a non-2xx response from the backend.
type APIError struct {
	// StatusCode is the HTTP status of the response
	StatusCode int

	// Message is the human readable reason. It prefers the backend's
	// {"message": ...} body and falls back to a default for the status.
	Message string

	// cause is the endpoint specific sentinel, if any
	cause error
}

// Error implements the error interface. The message is shown to users as is.
func (e *APIError) Error() string {
	return e.Message
}

// Unwrap exposes the status kind and the endpoint specific sentinel.
func (e *APIError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if kind := statusKind(e.StatusCode); kind != nil {
		errs = append(errs, kind)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// NetworkError is returned when a request produced no response at all.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// statusOverride replaces the message of a specific status for one endpoint.
type statusOverride struct {
	Message string
	Err     error
}

// statusOverrides maps a status code to the error an endpoint reports for it.
type statusOverrides map[int]statusOverride

func statusKind(code int) error {
	switch {
	case code == http.StatusBadRequest:
		return ErrBadRequest
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusConflict:
		return ErrConflict
	case code >= 500:
		return ErrServer
	default:
		return nil
	}
}

// defaultStatusMessage is the message used when neither an override nor the
// backend body provides one.
func defaultStatusMessage(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "Bad Request: Invalid data sent to the server."
	case http.StatusUnauthorized:
		return "Unauthorized: Authentication required."
	case http.StatusForbidden:
		return "Forbidden: Insufficient permissions."
	case http.StatusNotFound:
		return "Not Found: Resource not found."
	case http.StatusInternalServerError:
		return "Internal Server Error: Server-side error occurred."
	default:
		return fmt.Sprintf("Request failed (%d): An unexpected error occurred.", code)
	}
}

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-2xx response into an *APIError.
//
// Precedence: an endpoint override for the status, then the backend's
// {"message": ...} body, then a non-JSON body as plain text, then the
// status default.
func parseErrorResponse(statusCode int, body []byte, overrides statusOverrides) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	if o, ok := overrides[statusCode]; ok {
		return &APIError{StatusCode: statusCode, Message: o.Message, cause: o.Err}
	}

	msg := defaultStatusMessage(statusCode)

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Message != "" {
			msg = errResp.Message
		}
	} else if text := strings.TrimSpace(string(body)); text != "" {
		msg = text
	}

	return &APIError{StatusCode: statusCode, Message: msg}
}
