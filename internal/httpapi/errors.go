package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// AuthError indicates that authentication has failed or expired for a
// service. It is returned when a 401 response is received.
type AuthError struct {
	Service string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.Service, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// APIError is a non-2xx response. Body holds the raw server payload so
// callers can log what the server said.
type APIError struct {
	Service    string
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	msg := e.Message()
	if msg == "" {
		return fmt.Sprintf(
			"%s API error (%d) on %s %s",
			e.Service, e.StatusCode, e.Method, e.Path,
		)
	}
	return fmt.Sprintf(
		"%s API error (%d) on %s %s: %s",
		e.Service, e.StatusCode, e.Method, e.Path, msg,
	)
}

// errorResponse covers the error envelopes the services are known to send.
type errorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// Message extracts a human-readable message from the payload, falling
// back to the raw body text.
func (e *APIError) Message() string {
	var resp errorResponse
	if json.Unmarshal(e.Body, &resp) == nil {
		switch {
		case resp.Message != "":
			return resp.Message
		case resp.Error != "":
			return resp.Error
		case len(resp.Errors) > 0:
			return strings.Join(resp.Errors, "; ")
		}
	}
	return strings.TrimSpace(string(e.Body))
}

// AsAPIError returns the APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
