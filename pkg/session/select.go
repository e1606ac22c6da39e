// Package session turns the staff and patient cookies into a single
// authenticated identity for a route.
package session

import (
	"errors"

	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
)

// Category is declared per route at registration time.
type Category int

const (
	// Staff routes belong to the dashboard.
	Staff Category = iota + 1
	// Patient routes belong to the patient portal.
	Patient
	// Mixed routes accept either identity.
	Mixed
)

func (c Category) String() string {
	switch c {
	case Staff:
		return "staff"
	case Patient:
		return "patient"
	case Mixed:
		return "mixed"
	}
	return "unknown"
}

const (
	MsgNotAuthenticated = "User is not authenticated"
	MsgStaffRequired    = "Dashboard routes require a valid admin authentication. Please login to the dashboard."
	MsgPatientRequired  = "Patient routes require patient authentication. Please login to the patient portal."
	MsgInvalidToken     = "Invalid or expired token"
)

// ErrUnauthenticated is wrapped by every AuthError.
var ErrUnauthenticated = errors.New("unauthenticated")

// AuthError is a 401 with a client facing message.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return ErrUnauthenticated }

// Candidates are the identities that survived verification. A nil field
// means the cookie was absent or rejected.
type Candidates struct {
	Staff   *authorize.Identity
	Patient *authorize.Identity
	// AnyCookie is true when at least one cookie was sent, valid or not.
	AnyCookie bool
}

// Select picks the identity for a route category. It performs no I/O.
func Select(cat Category, c Candidates) (*authorize.Identity, error) {
	switch cat {
	case Staff:
		if c.Staff != nil {
			return c.Staff, nil
		}
		return nil, failure(c, MsgStaffRequired)

	case Patient:
		if c.Patient != nil {
			return c.Patient, nil
		}
		return nil, failure(c, MsgPatientRequired)

	case Mixed:
		switch {
		case c.Staff != nil && c.Patient != nil:
			if c.Staff.UserID == c.Patient.UserID {
				if c.Staff.Role == authorize.RolePatient {
					return c.Patient, nil
				}
				return c.Staff, nil
			}
			return c.Patient, nil
		case c.Staff != nil:
			return c.Staff, nil
		case c.Patient != nil:
			return c.Patient, nil
		}
		return nil, failure(c, MsgInvalidToken)
	}

	return nil, failure(c, MsgInvalidToken)
}

func failure(c Candidates, msg string) *AuthError {
	if !c.AnyCookie {
		return &AuthError{Message: MsgNotAuthenticated}
	}
	return &AuthError{Message: msg}
}
