// Package domain defines the core domain models for reqguard.
package domain

import (
	"fmt"
	"net/http"
	"strings"
)

// DomainError represents a request rejection with a structured error code.
//
// Codes have the form RG-<AREA>-<NNNN>, where the first three digits of
// the numeric part are the HTTP status the rejection maps to.
type DomainError struct {
	Code    string // Error code (e.g., "RG-AUTH-4010")
	Message string // Human-readable message, sent to the client verbatim
	Details string // Optional additional details, never sent to the client
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// StatusCode returns the HTTP status encoded in the error code.
func (e *DomainError) StatusCode() int {
	return codeToHTTPStatus(e.Code)
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// codeToHTTPStatus maps an RG-* code to its HTTP status.
// Unknown or malformed codes map to 500.
func codeToHTTPStatus(code string) int {
	idx := strings.LastIndex(code, "-")
	if idx < 0 || len(code)-idx-1 != 4 {
		return http.StatusInternalServerError
	}
	status := 0
	for _, c := range code[idx+1 : idx+4] {
		if c < '0' || c > '9' {
			return http.StatusInternalServerError
		}
		status = status*10 + int(c-'0')
	}
	if http.StatusText(status) == "" {
		return http.StatusInternalServerError
	}
	return status
}

// ============================================================================
// Authentication Errors (AUTH)
// ============================================================================

var (
	// ErrAuthHeaderFormat indicates the Auth header is absent.
	ErrAuthHeaderFormat = NewDomainError("RG-AUTH-4000", "Auth header incorrect format")

	// ErrBadToken indicates the Auth token does not match any accepted window.
	ErrBadToken = NewDomainError("RG-AUTH-4010", "Bad authentication token")
)

// ============================================================================
// Request Errors (REQ)
// ============================================================================

var (
	// ErrUnparsableBody indicates a non-GET request without a usable JSON body.
	ErrUnparsableBody = NewDomainError("RG-REQ-4000", "Unparsable body.")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("RG-SYS-5000", "internal server error")

	// ErrRateLimited indicates too many requests from one client.
	ErrRateLimited = NewDomainError("RG-SYS-4290", "too many requests")

	// ErrUpstreamUnavailable indicates the upstream API could not be reached.
	ErrUpstreamUnavailable = NewDomainError("RG-SYS-5020", "upstream unavailable")
)
