package foxpays

import (
	"errors"
	"fmt"
	"strings"
)

// maxRawBody caps how much of a malformed provider response is kept for logs.
const maxRawBody = 512

// ConfigError means the client was asked to work without a base URL or token.
// It is raised before any network call.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "foxpays: not configured: " + e.Reason
}

// APIError is a failure the provider itself reported: a non-2xx status or a
// JSON envelope with success=false.
type APIError struct {
	HTTPStatus int
	Message    string
	Errors     map[string][]string
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("foxpays: provider error (http %d): %s", e.HTTPStatus, e.Message)
	}
	fields := make([]string, 0, len(e.Errors))
	for f := range e.Errors {
		fields = append(fields, f)
	}
	return fmt.Sprintf("foxpays: provider error (http %d): %s [fields: %s]",
		e.HTTPStatus, e.Message, strings.Join(fields, ","))
}

// TransportError is a network failure or a response body that is not the JSON
// envelope (the provider occasionally serves HTML error pages on its own 500s).
// RawBody holds the truncated body for diagnostics.
type TransportError struct {
	Cause   error
	RawBody string
}

func (e *TransportError) Error() string {
	if e.RawBody != "" {
		return fmt.Sprintf("foxpays: malformed provider response: %v (body: %q)", e.Cause, e.RawBody)
	}
	return fmt.Sprintf("foxpays: provider unreachable: %v", e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func IsAPI(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxRawBody {
		return s[:maxRawBody]
	}
	return s
}
