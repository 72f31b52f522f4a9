// Package apperror classifies request failures into a small closed set of
// kinds so that a single place can decide how they are reported to clients.
package apperror

import (
	"errors"
	"fmt"
)

// Kind identifies the class of a failure.
type Kind string

const (
	// KindUnclassified is any error that was never classified.
	KindUnclassified Kind = ""
	// KindNotFound means the requested object does not exist.
	KindNotFound Kind = "NOT_FOUND"
	// KindInvalidInput means the request itself cannot be served.
	KindInvalidInput Kind = "INVALID_INPUT"
	// KindUpstream means the storage provider failed.
	KindUpstream Kind = "UPSTREAM_FAILURE"
)

// Error is a classified failure. Message is what clients see; Cause is kept
// for logs only. Raw, when set, is the provider's own error body.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
	Raw     interface{}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// NotFound creates a KindNotFound error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// InvalidInput creates a KindInvalidInput error.
func InvalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

// Upstream creates a KindUpstream error wrapping the provider failure.
func Upstream(message string, cause error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Cause: cause}
}

// WithRaw attaches the provider's error body and returns the receiver.
func (e *Error) WithRaw(raw interface{}) *Error {
	e.Raw = raw
	return e
}

// RawOf returns the provider error body carried by err, if any.
func RawOf(err error) (interface{}, bool) {
	var e *Error
	if errors.As(err, &e) && e.Raw != nil {
		return e.Raw, true
	}
	return nil, false
}

// KindOf reports the kind of err, or KindUnclassified when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnclassified
}

// Message returns the client-facing text for err. Unclassified errors expose
// their own text.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
