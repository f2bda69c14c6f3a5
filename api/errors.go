package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRequest is returned before any network call when a request
// payload fails validation.
var ErrInvalidRequest = errors.New("api: invalid request")

// RequestError reports a non-success upstream response. Body is the raw
// response body as received.
type RequestError struct {
	Op      string
	Status  int
	Message string
	Body    []byte
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("api: %s: status %d: %s", e.Op, e.Status, e.Message)
}

// NetworkError reports a transport level failure; no response was received.
type NetworkError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("api: %s: %v", e.Op, e.Err)
}

// Unwrap returns the transport error.
func (e *NetworkError) Unwrap() error { return e.Err }

// StatusOf returns the upstream status carried by err, or 0.
func StatusOf(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status
	}
	return 0
}

func newRequestError(op string, status int, body []byte) *RequestError {
	return &RequestError{
		Op:      op,
		Status:  status,
		Message: messageFromBody(body),
		Body:    append([]byte(nil), body...),
	}
}

// messageFromBody extracts a human readable message from an error body,
// preferring the backend's {message} field.
func messageFromBody(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > 256 {
		msg = msg[:256]
	}
	return msg
}

func invalid(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrInvalidRequest, op, err)
}
