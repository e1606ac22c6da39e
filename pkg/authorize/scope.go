package authorize

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNoClinic is a configuration problem on the caller's account.
	ErrNoClinic       = errors.New("You are not assigned to any clinic")
	ErrClinicMismatch = errors.New("You are not authorized for this clinic")
	ErrNotOwner       = errors.New("You can only access your own resources")
)

// Target describes the tenant coordinates of a resource.
//
// ClinicID is the owning clinic, OwnerID the doctor responsible for it and
// SubjectID the patient it is about. Any of them may be nil.
type Target struct {
	ClinicID  *uuid.UUID
	OwnerID   *uuid.UUID
	SubjectID *uuid.UUID
}

func sameID(a, b *uuid.UUID) bool {
	return a != nil && b != nil && *a == *b
}

// Scope decides whether the caller may touch a resource located at t.
// Services call it before any write.
func Scope(id *Identity, t Target) error {
	if id == nil {
		return ErrNoSubjectInContext
	}

	switch id.Role {
	case RoleSuperAdmin:
		return nil

	case RoleAdmin, RoleReceptionist:
		if !id.HasClinic() {
			return ErrNoClinic
		}
		// Patients are not tenant owned.
		if t.ClinicID == nil {
			return nil
		}
		if !sameID(id.ClinicID, t.ClinicID) {
			return ErrClinicMismatch
		}
		return nil

	case RoleDoctor:
		if t.OwnerID != nil && *t.OwnerID != id.UserID {
			return ErrNotOwner
		}
		if t.ClinicID != nil && id.HasClinic() && !sameID(id.ClinicID, t.ClinicID) {
			return ErrClinicMismatch
		}
		return nil

	case RolePatient:
		if t.SubjectID == nil || *t.SubjectID != id.UserID {
			return ErrNotOwner
		}
		return nil
	}

	return ErrForbidden
}

// Filter narrows list queries to what the caller may see. Nil fields do not
// filter.
type Filter struct {
	ClinicID  *uuid.UUID
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
}

// ListFilter returns the row filter for the caller's role.
func ListFilter(id *Identity) (Filter, error) {
	if id == nil {
		return Filter{}, ErrNoSubjectInContext
	}

	switch id.Role {
	case RoleSuperAdmin:
		return Filter{}, nil
	case RoleAdmin, RoleReceptionist:
		if !id.HasClinic() {
			return Filter{}, ErrNoClinic
		}
		c := *id.ClinicID
		return Filter{ClinicID: &c}, nil
	case RoleDoctor:
		u := id.UserID
		return Filter{DoctorID: &u}, nil
	case RolePatient:
		u := id.UserID
		return Filter{PatientID: &u}, nil
	}
	return Filter{}, ErrForbidden
}
