package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies transport failures by HTTP status family.
type ErrorKind string

const (
	ErrorKindBadRequest   ErrorKind = "bad_request"
	ErrorKindUnauthorized ErrorKind = "unauthorized"
	ErrorKindNotFound     ErrorKind = "not_found"
	ErrorKindServer       ErrorKind = "server_error"
	ErrorKindUnexpected   ErrorKind = "unexpected_status"
	ErrorKindTransport    ErrorKind = "transport"
)

// Error is a classified failure from the captioning service. Detail
// carries server-supplied reasons parsed from the response body, if any.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Detail     []string
	Err        error
}

// Error formats the failure for logs.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Kind == ErrorKindTransport {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if len(e.Detail) > 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, strings.Join(e.Detail, "; "))
	}
	return fmt.Sprintf("%s (status %d)", e.Kind, e.StatusCode)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Reason derives a user-facing message: server detail entries first,
// then the underlying error, then a generic fallback with the code.
func (e *Error) Reason() string {
	if e == nil {
		return ""
	}
	if len(e.Detail) > 0 {
		return strings.Join(e.Detail, "; ")
	}
	if e.Kind == ErrorKindTransport && e.Err != nil {
		return e.Err.Error()
	}

	switch e.Kind {
	case ErrorKindBadRequest:
		return "The service rejected the request."
	case ErrorKindUnauthorized:
		return "Not authorized to use the captioning service."
	case ErrorKindNotFound:
		return "The requested job was not found."
	case ErrorKindServer:
		return "The captioning service reported an internal error."
	default:
		return fmt.Sprintf("Unexpected response from the captioning service (status %d).", e.StatusCode)
	}
}

// classifyStatus maps a non-success HTTP status to an error kind.
func classifyStatus(code int) ErrorKind {
	switch {
	case code == http.StatusBadRequest:
		return ErrorKindBadRequest
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrorKindUnauthorized
	case code == http.StatusNotFound:
		return ErrorKindNotFound
	case code >= 500:
		return ErrorKindServer
	default:
		return ErrorKindUnexpected
	}
}

// detailEntry matches one element of a structured validation error list.
type detailEntry struct {
	Msg     string `json:"msg"`
	Message string `json:"message"`
}

// parseDetail extracts reasons from an error body. The service returns
// either {"detail": "..."} or {"detail": [{"msg": "..."}, ...]}.
func parseDetail(body []byte) []string {
	if len(body) == 0 {
		return nil
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return nil
	}

	var single string
	if err := json.Unmarshal(envelope.Detail, &single); err == nil {
		if single == "" {
			return nil
		}
		return []string{single}
	}

	var entries []detailEntry
	if err := json.Unmarshal(envelope.Detail, &entries); err != nil {
		return nil
	}

	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		switch {
		case entry.Msg != "":
			out = append(out, entry.Msg)
		case entry.Message != "":
			out = append(out, entry.Message)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
