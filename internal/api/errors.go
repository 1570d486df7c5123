package api

import (
	"encoding/json"
	"fmt"
)

// HTTPError is a non-2xx response from the chat service.
//
// Message holds the server-supplied human-readable "error" field when the
// response body carried one, otherwise it is empty. Callers classify
// transport-layer failures with errors.As:
//
//	var httpErr *api.HTTPError
//	if errors.As(err, &httpErr) { ... }
type HTTPError struct {
	StatusCode int
	Message    string
	Body       []byte
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("chat API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("chat API error (status %d)", e.StatusCode)
}

// newHTTPError builds an HTTPError from a response body, extracting the
// "error" field if the body is a JSON error object.
func newHTTPError(statusCode int, body []byte) *HTTPError {
	var errBody struct {
		Error string `json:"error"`
	}
	// Body may be empty or non-JSON; the status code alone is still useful.
	_ = json.Unmarshal(body, &errBody)

	return &HTTPError{
		StatusCode: statusCode,
		Message:    errBody.Error,
		Body:       body,
	}
}
