package api

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNoCredential is returned before any network I/O when a protected
	// endpoint is called without a stored token.
	ErrNoCredential = errors.New("not signed in")

	// ErrUnauthorized is returned on HTTP 401. The stored token has already
	// been cleared when callers see it.
	ErrUnauthorized = errors.New("session expired")

	// ErrMalformedResponse indicates a 2xx body that is not a valid envelope.
	ErrMalformedResponse = errors.New("malformed response from server")
)

// APIError is a server-rejected request: any non-2xx status other than a
// 401 on a protected endpoint, or a 2xx envelope with success=false.
// Fields holds the server's per-field errors when it sent a field map.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error (status %d)", e.Status)
	}

	return fmt.Sprintf("API error (status %d): %s", e.Status, e.Message)
}

// TransportError wraps failures below HTTP: DNS, refused connections,
// timeouts, cancelled contexts.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationError carries client-side field errors keyed by field name.
// Requests that fail validation are never sent. Server field errors arrive
// as APIError.Fields instead.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldErrors returns the per-field errors carried by err, whether they
// came from local validation or from the server.
func FieldErrors(err error) map[string]string {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Fields
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Fields
	}

	return nil
}

// IsAuth reports whether err should send the user back to the login screen.
func IsAuth(err error) bool {
	return errors.Is(err, ErrNoCredential) || errors.Is(err, ErrUnauthorized)
}

// IsCanceled reports whether err only means the caller went away.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// UserMessage turns any error produced by this package into the text shown
// in a notification.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		apiErr  *APIError
		valErr  *ValidationError
		tranErr *TransportError
	)

	switch {
	case errors.Is(err, ErrNoCredential):
		return "Please sign in to continue."
	case errors.Is(err, ErrUnauthorized):
		return "Your session has expired. Please sign in again."
	case errors.As(err, &valErr):
		return "Please correct the highlighted fields."
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}

		return "The server rejected the request."
	case errors.Is(err, ErrMalformedResponse):
		return "The server sent an unexpected response."
	case errors.As(err, &tranErr):
		return "Could not reach the server. Check your connection and try again."
	default:
		return err.Error()
	}
}
