package medicalrecord

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/internal/service/clinical"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
)

type fakeRecords struct {
	rows map[uuid.UUID]*repo.MedicalRecord
}

func (f *fakeRecords) Create(_ context.Context, m *repo.MedicalRecord) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.VisitDate == "" {
		m.VisitDate = "2024-01-15"
	}
	c := *m
	f.rows[m.ID] = &c
	return nil
}

func (f *fakeRecords) GetByID(_ context.Context, id uuid.UUID) (*repo.MedicalRecord, error) {
	m, ok := f.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c := *m
	return &c, nil
}

func (f *fakeRecords) List(_ context.Context, flt repo.RecordFilter) ([]*repo.MedicalRecord, error) {
	out := []*repo.MedicalRecord{}
	for _, m := range f.rows {
		switch {
		case flt.ClinicID != nil && m.ClinicID != *flt.ClinicID,
			flt.DoctorID != nil && m.DoctorID != *flt.DoctorID,
			flt.PatientID != nil && m.PatientID != *flt.PatientID:
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeRecords) Update(_ context.Context, m *repo.MedicalRecord) error {
	c := *m
	f.rows[m.ID] = &c
	return nil
}

func (f *fakeRecords) SoftDelete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.rows[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeUsers map[uuid.UUID]*repo.User

func (f fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*repo.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, repo.ErrNotFound
}

type fakeAppointments map[uuid.UUID]*repo.Appointment

func (f fakeAppointments) GetByID(_ context.Context, id uuid.UUID) (*repo.Appointment, error) {
	if a, ok := f[id]; ok {
		return a, nil
	}
	return nil, repo.ErrNotFound
}

type fixture struct {
	svc     Service
	records *fakeRecords
	clinic  uuid.UUID
	doctor  *authorize.Identity
	patient *repo.User
	appt    *repo.Appointment
}

func newFixture() *fixture {
	clinic := uuid.New()
	f := &fixture{
		records: &fakeRecords{rows: map[uuid.UUID]*repo.MedicalRecord{}},
		clinic:  clinic,
		patient: &repo.User{ID: uuid.New(), FirstName: "Leila", LastName: "Mansour", Role: authorize.RolePatient},
	}
	f.doctor = &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleDoctor, ClinicID: &clinic}
	f.appt = &repo.Appointment{ID: uuid.New(), PatientID: f.patient.ID, DoctorID: f.doctor.UserID, ClinicID: clinic}
	doctorRow := &repo.User{ID: f.doctor.UserID, Role: authorize.RoleDoctor, ClinicID: &clinic}
	f.svc = New(f.records,
		fakeUsers{f.patient.ID: f.patient, doctorRow.ID: doctorRow},
		fakeAppointments{f.appt.ID: f.appt})
	return f
}

func (f *fixture) create(t *testing.T) *repo.MedicalRecord {
	t.Helper()
	hr := 72.0
	m, err := f.svc.Create(context.Background(), f.doctor, CreateRequest{
		PatientID:     f.patient.ID,
		AppointmentID: &f.appt.ID,
		Diagnosis:     "  Seasonal influenza ",
		Treatment:     "Rest and fluids",
		VitalSigns:    repo.VitalSigns{BloodPressure: "12/8", HeartRate: &hr},
	})
	require.NoError(t, err)
	return m
}

func TestCreate(t *testing.T) {
	f := newFixture()
	m := f.create(t)

	assert.Equal(t, "Seasonal influenza", m.Diagnosis)
	assert.Equal(t, f.clinic, m.ClinicID)
	assert.Equal(t, f.doctor.UserID, m.DoctorID)
	assert.Equal(t, "Leila Mansour", m.Patient.FullName())
	assert.Len(t, f.records.rows, 1)
}

func TestCreateFailures(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	neg := -1.0
	other, elsewhere, missing := uuid.New(), uuid.New(), uuid.New()
	f.svc.(*recordService).appointments = fakeAppointments{
		f.appt.ID: f.appt,
		other:     {ID: other, PatientID: uuid.New(), ClinicID: f.clinic},
		elsewhere: {ID: elsewhere, PatientID: f.patient.ID, ClinicID: uuid.New()},
	}

	tests := []struct {
		name  string
		actor *authorize.Identity
		req   CreateRequest
		want  error
	}{
		{"admin cannot author", &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleAdmin, ClinicID: &f.clinic},
			CreateRequest{PatientID: f.patient.ID, Diagnosis: "Flu"}, clinical.ErrOnlyDoctors},
		{"doctor without clinic", &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleDoctor},
			CreateRequest{PatientID: f.patient.ID, Diagnosis: "Flu"}, clinical.ErrDoctorNoClinic},
		{"missing diagnosis", f.doctor, CreateRequest{PatientID: f.patient.ID}, ErrRequired},
		{"unknown patient", f.doctor, CreateRequest{PatientID: uuid.New(), Diagnosis: "Flu"}, clinical.ErrPatientNotFound},
		{"foreign appointment", f.doctor, CreateRequest{PatientID: f.patient.ID, Diagnosis: "Flu", AppointmentID: &other}, clinical.ErrAppointmentPatient},
		{"appointment in another clinic", f.doctor, CreateRequest{PatientID: f.patient.ID, Diagnosis: "Flu", AppointmentID: &elsewhere}, authorize.ErrClinicMismatch},
		{"unknown appointment", f.doctor, CreateRequest{PatientID: f.patient.ID, Diagnosis: "Flu", AppointmentID: &missing}, clinical.ErrAppointmentMissing},
		{"negative vitals", f.doctor, CreateRequest{PatientID: f.patient.ID, Diagnosis: "Flu", VitalSigns: repo.VitalSigns{Weight: &neg}}, nil},
		{"short diagnosis", f.doctor, CreateRequest{PatientID: f.patient.ID, Diagnosis: "Fl"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tt.actor, tt.req)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
	assert.Empty(t, f.records.rows)
}

func TestVisibility(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m := f.create(t)

	self := &authorize.Identity{UserID: f.patient.ID, Role: authorize.RolePatient}
	got, err := f.svc.Get(ctx, self, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)

	list, err := f.svc.ByPatient(ctx, self, f.patient.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	otherDoctor := &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleDoctor, ClinicID: &f.clinic}
	_, err = f.svc.Get(ctx, otherDoctor, m.ID)
	assert.ErrorIs(t, err, authorize.ErrNotOwner)
	list, err = f.svc.ByPatient(ctx, otherDoctor, f.patient.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	y := uuid.New()
	foreign := &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleReceptionist, ClinicID: &y}
	_, err = f.svc.Get(ctx, foreign, m.ID)
	assert.ErrorIs(t, err, authorize.ErrClinicMismatch)

	admin := &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleAdmin, ClinicID: &f.clinic}
	list, err = f.svc.ByDoctor(ctx, admin, f.doctor.UserID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpdateAndDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m := f.create(t)

	diag := "Acute bronchitis"
	out, err := f.svc.Update(ctx, f.doctor, m.ID, UpdateRequest{Diagnosis: &diag})
	require.NoError(t, err)
	assert.Equal(t, diag, out.Diagnosis)
	assert.Equal(t, "Rest and fluids", out.Treatment)

	self := &authorize.Identity{UserID: f.patient.ID, Role: authorize.RolePatient}
	_, err = f.svc.Update(ctx, self, m.ID, UpdateRequest{Diagnosis: &diag})
	assert.ErrorIs(t, err, authorize.ErrForbidden)
	assert.ErrorIs(t, f.svc.Delete(ctx, self, m.ID), authorize.ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, f.doctor, m.ID))
	_, err = f.svc.Get(ctx, f.doctor, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
