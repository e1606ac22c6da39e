package authorize

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func ptr(u uuid.UUID) *uuid.UUID { return &u }

func TestScope(t *testing.T) {
	clinicX := uuid.New()
	clinicY := uuid.New()
	doctor := uuid.New()
	otherDoctor := uuid.New()
	patient := uuid.New()

	tests := []struct {
		name   string
		id     *Identity
		target Target
		want   error
	}{
		{
			name:   "superadmin is unrestricted",
			id:     &Identity{UserID: uuid.New(), Role: RoleSuperAdmin},
			target: Target{ClinicID: ptr(clinicY)},
		},
		{
			name:   "admin of clinic X updating clinic Y appointment",
			id:     &Identity{UserID: uuid.New(), Role: RoleAdmin, ClinicID: ptr(clinicX)},
			target: Target{ClinicID: ptr(clinicY), OwnerID: ptr(doctor), SubjectID: ptr(patient)},
			want:   ErrClinicMismatch,
		},
		{
			name:   "admin in own clinic",
			id:     &Identity{UserID: uuid.New(), Role: RoleAdmin, ClinicID: ptr(clinicX)},
			target: Target{ClinicID: ptr(clinicX)},
		},
		{
			name:   "receptionist without clinic",
			id:     &Identity{UserID: uuid.New(), Role: RoleReceptionist},
			target: Target{ClinicID: ptr(clinicX)},
			want:   ErrNoClinic,
		},
		{
			name:   "admin reading a patient profile",
			id:     &Identity{UserID: uuid.New(), Role: RoleAdmin, ClinicID: ptr(clinicX)},
			target: Target{SubjectID: ptr(patient)},
		},
		{
			name:   "doctor owning the resource",
			id:     &Identity{UserID: doctor, Role: RoleDoctor, ClinicID: ptr(clinicX)},
			target: Target{ClinicID: ptr(clinicX), OwnerID: ptr(doctor)},
		},
		{
			name:   "doctor touching a colleague's resource",
			id:     &Identity{UserID: doctor, Role: RoleDoctor, ClinicID: ptr(clinicX)},
			target: Target{ClinicID: ptr(clinicX), OwnerID: ptr(otherDoctor)},
			want:   ErrNotOwner,
		},
		{
			name:   "doctor in another clinic",
			id:     &Identity{UserID: doctor, Role: RoleDoctor, ClinicID: ptr(clinicX)},
			target: Target{ClinicID: ptr(clinicY), OwnerID: ptr(doctor)},
			want:   ErrClinicMismatch,
		},
		{
			name:   "patient reading own resource",
			id:     &Identity{UserID: patient, Role: RolePatient},
			target: Target{ClinicID: ptr(clinicX), SubjectID: ptr(patient)},
		},
		{
			name:   "patient reading someone else's resource",
			id:     &Identity{UserID: patient, Role: RolePatient},
			target: Target{SubjectID: ptr(uuid.New())},
			want:   ErrNotOwner,
		},
		{
			name: "patient with no subject on target",
			id:   &Identity{UserID: patient, Role: RolePatient},
			want: ErrNotOwner,
		},
		{
			name: "unknown role",
			id:   &Identity{UserID: uuid.New(), Role: Role("Nurse")},
			want: ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Scope(tt.id, tt.target)
			if tt.want == nil {
				if err != nil {
					t.Errorf("Scope() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Scope() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestListFilter(t *testing.T) {
	clinic := uuid.New()
	user := uuid.New()

	f, err := ListFilter(&Identity{UserID: user, Role: RoleAdmin, ClinicID: ptr(clinic)})
	if err != nil || f.ClinicID == nil || *f.ClinicID != clinic {
		t.Errorf("admin filter = %+v, %v", f, err)
	}

	f, err = ListFilter(&Identity{UserID: user, Role: RoleDoctor})
	if err != nil || f.DoctorID == nil || *f.DoctorID != user {
		t.Errorf("doctor filter = %+v, %v", f, err)
	}

	f, err = ListFilter(&Identity{UserID: user, Role: RolePatient})
	if err != nil || f.PatientID == nil || *f.PatientID != user {
		t.Errorf("patient filter = %+v, %v", f, err)
	}

	f, err = ListFilter(&Identity{UserID: user, Role: RoleSuperAdmin})
	if err != nil || f.ClinicID != nil || f.DoctorID != nil || f.PatientID != nil {
		t.Errorf("superadmin filter = %+v, %v", f, err)
	}

	if _, err := ListFilter(&Identity{UserID: user, Role: RoleReceptionist}); !errors.Is(err, ErrNoClinic) {
		t.Errorf("receptionist without clinic: %v", err)
	}
}
