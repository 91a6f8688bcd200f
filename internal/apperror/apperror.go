// Package apperror defines the error kinds shared by every shop component.
//
// Domain packages declare their own sentinels wrapping one of these kinds,
// and the HTTP boundary maps a kind to a status code with errors.Is.
package apperror

import "errors"

var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
	ErrUnsupported   = errors.New("unsupported operation")
	ErrVerification  = errors.New("verification failed")
	ErrExternal      = errors.New("external service error")
	ErrNotConfigured = errors.New("not configured")
)

// Message returns the text meant for API clients: the outermost detail
// without the kind suffix appended by wrapping.
func Message(err error) string {
	var d *detailed
	if errors.As(err, &d) {
		return d.msg
	}
	return err.Error()
}

type detailed struct {
	msg  string
	kind error
}

func (e *detailed) Error() string { return e.msg }
func (e *detailed) Unwrap() error { return e.kind }

// New returns an error of the given kind whose client-facing message is msg.
func New(kind error, msg string) error {
	return &detailed{msg: msg, kind: kind}
}

// Validation is shorthand for New(ErrValidation, msg).
func Validation(msg string) error {
	return New(ErrValidation, msg)
}
