package auth

import "github.com/imedbrahmi/hospital_backend/internal/service/apperr"

var (
	ErrMissingFields      = apperr.Validation("Please fill all fields")
	ErrPasswordMismatch   = apperr.Validation("Password and confirm password are not the same")
	ErrUserExists         = apperr.Validation("User already exist")
	ErrInvalidCredentials = apperr.NotFound("invalid email or password")
	ErrRoleMismatch       = apperr.Forbidden("You are not authorized to access this resource")
	ErrUserNotFound       = apperr.NotFound("User not found")
)
