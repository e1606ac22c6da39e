// Package apperr holds the error kinds shared by every service. Service
// packages declare their sentinels with these constructors so the HTTP
// layer can map any of them with errors.Is on the kind.
package apperr

import "errors"

var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrForbidden   = errors.New("forbidden")
	ErrUnavailable = errors.New("dependency unavailable")
)

// Error is a client safe message tagged with a kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func Validation(msg string) *Error  { return &Error{Kind: ErrValidation, Msg: msg} }
func NotFound(msg string) *Error    { return &Error{Kind: ErrNotFound, Msg: msg} }
func Conflict(msg string) *Error    { return &Error{Kind: ErrConflict, Msg: msg} }
func Forbidden(msg string) *Error   { return &Error{Kind: ErrForbidden, Msg: msg} }
func Unavailable(msg string) *Error { return &Error{Kind: ErrUnavailable, Msg: msg} }

// Message returns the client message of err when it carries one.
func Message(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg, true
	}
	return "", false
}
