// Package apierr defines the single error kind surfaced by the SDK: a
// human-readable message plus the decoded error response, when there is one.
package apierr

import (
	"errors"
	"fmt"
)

// Conditions reported by the SDK. They are matched with errors.Is; the
// concrete value returned to callers is usually an *Error wrapping one of them.
var (
	ErrNotVersionControlled = errors.New("not version controlled")
	ErrMetadataNotFound     = errors.New("metadata not found")
	ErrInvalidMetadata      = errors.New("invalid metadata")
	ErrRegistrationTimeout  = errors.New("registration timed out")
	ErrRegistrationFailed   = errors.New("registration failed")
	ErrServiceDeleted       = errors.New("service deleted")
	ErrServiceNotReady      = errors.New("service not ready")
)

// Error carries a message and an optional structured payload. Payload holds
// the decoded response envelope when the platform returned one.
type Error struct {
	Message    string
	Payload    map[string]any
	StatusCode int
	cause      error
}

// New returns an Error with the given message and no payload.
func New(msg string) *Error {
	return &Error{Message: msg}
}

// Newf formats a message into an Error.
func Newf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error whose message is msg and which matches cause with
// errors.Is / errors.As.
func Wrap(cause error, msg string) *Error {
	return &Error{Message: msg, cause: cause}
}

// FromEnvelope builds an Error from a non-success envelope. The envelope's
// message field becomes the message; the whole envelope becomes the payload.
func FromEnvelope(statusCode int, envelope map[string]any) *Error {
	msg, _ := envelope["message"].(string)
	if msg == "" {
		if status, ok := envelope["status"].(string); ok {
			msg = fmt.Sprintf("platform returned status %q", status)
		} else {
			msg = "platform returned a non-success envelope"
		}
	}
	return &Error{Message: msg, Payload: envelope, StatusCode: statusCode}
}

// WithPayload attaches a payload and returns e.
func (e *Error) WithPayload(payload map[string]any) *Error {
	e.Payload = payload
	return e
}

// WithStatus records the HTTP status code and returns e.
func (e *Error) WithStatus(code int) *Error {
	e.StatusCode = code
	return e
}

func (e *Error) Error() string {
	if e.cause != nil && e.Message == "" {
		return e.cause.Error()
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.cause.Error(), e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
