package pasetotoken

import (
	"errors"
	"fmt"
)

var (
	ErrExpired     = errors.New("token expired")
	ErrNotYetValid = errors.New("token not yet valid")
)

type ErrConfig struct{ Msg string }

func (e ErrConfig) Error() string { return "paseto config error: " + e.Msg }

type ErrInvalidToken struct{ Err error }

func (e ErrInvalidToken) Error() string { return fmt.Sprintf("invalid token: %v", e.Err) }
func (e ErrInvalidToken) Unwrap() error { return e.Err }

// IsInvalidToken reports whether err is a verification failure rather than
// a configuration problem.
func IsInvalidToken(err error) bool {
	var e ErrInvalidToken
	return errors.As(err, &e)
}
