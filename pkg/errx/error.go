package errx

import (
	"errors"
	"fmt"
)

// Error is a typed, user-facing failure. The message is shown to the caller
// verbatim; Err is kept for logs only.
type Error struct {
	// Code is the unique error code
	Code string `json:"code"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// Type categorizes the error
	Type Type `json:"type"`

	// HTTPStatus is the status code the adapter responds with
	HTTPStatus int `json:"http_status"`

	// Details carries log-only context such as the offending field
	Details map[string]any `json:"details,omitempty"`

	// Err is the underlying error (not exported in JSON)
	Err error `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail to the error and returns the error for chaining
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause attaches the error that triggered this one
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// New creates a new Error with the default status of its type
func New(message string, errType Type) *Error {
	return &Error{
		Code:       string(errType),
		Message:    message,
		Type:       errType,
		HTTPStatus: errType.HTTPStatus(),
	}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsType reports whether err carries an *Error of the given type
func IsType(err error, t Type) bool {
	e, ok := As(err)
	return ok && e.Type == t
}

// HasCode reports whether err carries an *Error created from code
func HasCode(err error, code *ErrorCode) bool {
	e, ok := As(err)
	return ok && code != nil && e.Code == code.Code
}
