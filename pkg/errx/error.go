package errx

import (
	"errors"
	"fmt"
)

// Error is a rich error carrying the wire-level result code, the HTTP status
// the transport should answer with, and any extra fields the envelope needs.
type Error struct {
	// Code is the machine-readable result identifier (e.g. "merge_required").
	Code string `json:"result_id"`

	// Message is the human-readable error message
	Message string `json:"info,omitempty"`

	// HTTPStatus is the status code the transport answers with
	HTTPStatus int `json:"-"`

	// Details contains additional envelope fields
	Details map[string]interface{} `json:"-"`

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

// WithDetail adds an envelope field and returns the error for chaining
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithMessage replaces the human-readable message (chainable)
func (e *Error) WithMessage(message string) *Error {
	e.Message = message
	return e
}

// WithMessagef replaces the message with a formatted one (chainable)
func (e *Error) WithMessagef(format string, args ...interface{}) *Error {
	e.Message = fmt.Sprintf(format, args...)
	return e
}

// Envelope returns the wire representation: result_id, info, and every detail
// field flattened into one JSON object.
func (e *Error) Envelope() map[string]interface{} {
	body := map[string]interface{}{
		"result_id": e.Code,
	}
	if e.Message != "" {
		body["info"] = e.Message
	}
	for k, v := range e.Details {
		body[k] = v
	}
	return body
}

// New creates an unregistered error with an explicit code and status
func New(code string, httpStatus int, message string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Internal creates a 500 internal_error
func Internal(message string) *Error {
	return New("internal_error", 500, message)
}

// Wrap wraps an existing error as an internal_error, preserving an existing
// *Error as-is so registered codes survive layer crossings.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}
	return &Error{
		Code:       "internal_error",
		Message:    message,
		HTTPStatus: 500,
		Err:        err,
	}
}

// Is checks if an error matches the target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
