// Package clinical holds the visibility rules shared by medical records
// and prescriptions.
package clinical

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/internal/service/apperr"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
)

var (
	ErrPatientNotFound = apperr.NotFound("Patient not found")
	ErrDoctorNotFound  = apperr.NotFound("Doctor not found")
	ErrDoctorNoClinic  = apperr.Validation("Doctor must be assigned to a clinic")
	ErrOnlyDoctors     = apperr.Forbidden("Only doctors can create clinical documents")

	ErrAppointmentMissing = apperr.NotFound("Appointment not found")
	ErrAppointmentPatient = apperr.Validation("Appointment does not belong to this patient")
)

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*repo.User, error)
}

// Author checks that actor may author a clinical document and returns the
// clinic it belongs to.
func Author(actor *authorize.Identity) (uuid.UUID, error) {
	if actor == nil {
		return uuid.Nil, authorize.ErrNoSubjectInContext
	}
	if actor.Role != authorize.RoleDoctor {
		return uuid.Nil, ErrOnlyDoctors
	}
	if !actor.HasClinic() {
		return uuid.Nil, ErrDoctorNoClinic
	}
	return *actor.ClinicID, nil
}

// Patient loads id and checks that it is a live patient account.
func Patient(ctx context.Context, users UserStore, id uuid.UUID) (*repo.User, error) {
	u, err := users.GetByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	if u.Role != authorize.RolePatient {
		return nil, ErrPatientNotFound
	}
	return u, nil
}

type AppointmentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*repo.Appointment, error)
}

// Appointment checks an optional appointment reference on a document being
// created for patientID in clinicID. A nil id is accepted.
func Appointment(ctx context.Context, appointments AppointmentStore, id *uuid.UUID, patientID, clinicID uuid.UUID) error {
	if id == nil {
		return nil
	}
	a, err := appointments.GetByID(ctx, *id)
	if err != nil {
		if repo.IsNotFound(err) {
			return ErrAppointmentMissing
		}
		return fmt.Errorf("get appointment: %w", err)
	}
	if a.PatientID != patientID {
		return ErrAppointmentPatient
	}
	if a.ClinicID != clinicID {
		return authorize.ErrClinicMismatch
	}
	return nil
}

// ByPatient returns the filter for the documents of patientID as seen by
// actor: a patient sees only their own, a doctor only those they wrote and
// clinic staff only those of their clinic.
func ByPatient(actor *authorize.Identity, patientID uuid.UUID) (repo.RecordFilter, error) {
	if actor == nil {
		return repo.RecordFilter{}, authorize.ErrNoSubjectInContext
	}
	if actor.Role == authorize.RolePatient && actor.UserID != patientID {
		return repo.RecordFilter{}, authorize.ErrNotOwner
	}
	scope, err := authorize.ListFilter(actor)
	if err != nil {
		return repo.RecordFilter{}, err
	}
	return repo.RecordFilter{ClinicID: scope.ClinicID, DoctorID: scope.DoctorID, PatientID: &patientID}, nil
}

// ByDoctor returns the filter for the documents written by doctorID.
// Patients never list by doctor.
func ByDoctor(ctx context.Context, actor *authorize.Identity, users UserStore, doctorID uuid.UUID) (repo.RecordFilter, error) {
	if actor == nil {
		return repo.RecordFilter{}, authorize.ErrNoSubjectInContext
	}
	if actor.Role == authorize.RolePatient {
		return repo.RecordFilter{}, authorize.ErrForbidden
	}
	doctor, err := users.GetByID(ctx, doctorID)
	if err != nil {
		if repo.IsNotFound(err) {
			return repo.RecordFilter{}, ErrDoctorNotFound
		}
		return repo.RecordFilter{}, fmt.Errorf("get doctor: %w", err)
	}
	if doctor.Role != authorize.RoleDoctor {
		return repo.RecordFilter{}, ErrDoctorNotFound
	}
	if err := authorize.Scope(actor, authorize.Target{ClinicID: doctor.ClinicID, OwnerID: &doctor.ID}); err != nil {
		return repo.RecordFilter{}, err
	}
	scope, err := authorize.ListFilter(actor)
	if err != nil {
		return repo.RecordFilter{}, err
	}
	return repo.RecordFilter{ClinicID: scope.ClinicID, DoctorID: &doctorID}, nil
}

// Target locates a clinical document for authorize.Scope.
func Target(clinicID, doctorID, patientID uuid.UUID) authorize.Target {
	return authorize.Target{ClinicID: &clinicID, OwnerID: &doctorID, SubjectID: &patientID}
}
