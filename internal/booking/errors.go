package booking

import "errors"

// Code classifies a booking failure so the HTTP layer can pick a status
// without string matching.
type Code string

const (
	CodeInvalid   Code = "invalid"
	CodeNotFound  Code = "not_found"
	CodeForbidden Code = "forbidden"
	CodeConflict  Code = "conflict"
)

// Error is a classified, caller-visible booking failure.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

// Invalid reports malformed or missing input.
func Invalid(message string) *Error {
	return &Error{Code: CodeInvalid, Message: message}
}

// NotFoundErr reports an absent doctor or appointment.
func NotFoundErr(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

// Forbidden reports an actor that does not own the resource.
func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

// Conflict reports an unavailable slot or an invalid state transition.
func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// AsError unwraps err into a classified booking error, if it is one.
func AsError(err error) (*Error, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
