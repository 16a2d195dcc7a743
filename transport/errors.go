package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized indicates an authorization failure that survived the
// refresh-and-retry policy. If a session existed it has already been torn
// down via Credentials.ForceLogout by the time a caller sees this.
var ErrUnauthorized = errors.New("unauthorized")

// RequestError is a transport-level failure: the request never produced an
// HTTP response (network unreachable, timeout, cancelled context).
type RequestError struct {
	Method string
	URL    string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// APIError is a structured failure reported by the backend: a non-2xx status
// whose body carries a human-readable message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// errorEnvelope matches the backend's failure payloads. Endpoints report
// either {"success": false, "error": "..."} or a bare {"detail": "..."}.
type errorEnvelope struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func apiError(status int, body []byte) *APIError {
	var env errorEnvelope
	msg := ""
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Error != "" {
			msg = env.Error
		} else if env.Detail != "" {
			msg = env.Detail
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: msg}
}
