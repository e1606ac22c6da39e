package prescription

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imedbrahmi/hospital_backend/internal/events"
	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/internal/service/clinical"
	"github.com/imedbrahmi/hospital_backend/internal/service/document"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
)

type fakePrescriptions struct {
	rows map[uuid.UUID]*repo.Prescription
}

func (f *fakePrescriptions) Create(_ context.Context, p *repo.Prescription) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Document = repo.Document{Status: repo.DocumentPending}
	c := *p
	f.rows[p.ID] = &c
	return nil
}

func (f *fakePrescriptions) GetByID(_ context.Context, id uuid.UUID) (*repo.Prescription, error) {
	if p, ok := f.rows[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakePrescriptions) List(_ context.Context, flt repo.RecordFilter) ([]*repo.Prescription, error) {
	out := []*repo.Prescription{}
	for _, p := range f.rows {
		if flt.PatientID != nil && p.PatientID != *flt.PatientID ||
			flt.DoctorID != nil && p.DoctorID != *flt.DoctorID ||
			flt.ClinicID != nil && p.ClinicID != *flt.ClinicID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePrescriptions) SetDocument(_ context.Context, id uuid.UUID, d repo.Document) error {
	p, ok := f.rows[id]
	if !ok {
		return repo.ErrNotFound
	}
	p.Document = d
	return nil
}

type fakeUsers map[uuid.UUID]*repo.User

func (f fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*repo.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, repo.ErrNotFound
}

type fakeRecords map[uuid.UUID]*repo.MedicalRecord

func (f fakeRecords) GetByID(_ context.Context, id uuid.UUID) (*repo.MedicalRecord, error) {
	if m, ok := f[id]; ok {
		return m, nil
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

// fakeDocuments records enqueued jobs and answers links from the state.
type fakeDocuments struct {
	queued []uuid.UUID
	err    error
}

func (f *fakeDocuments) Enqueue(_ context.Context, _ events.DocumentKind, id uuid.UUID, _ int64) error {
	if f.err != nil {
		return f.err
	}
	f.queued = append(f.queued, id)
	return nil
}

func (f *fakeDocuments) Link(_ context.Context, _ events.DocumentKind, _ uuid.UUID, d repo.Document) (*document.Link, error) {
	if d.Status == repo.DocumentReady {
		return &document.Link{Status: d.Status, URL: "memory://" + d.Key}, nil
	}
	return &document.Link{Status: repo.DocumentPending}, nil
}

type fixture struct {
	svc     Service
	store   *fakePrescriptions
	docs    *fakeDocuments
	clinic  uuid.UUID
	doctor  *authorize.Identity
	patient *repo.User
	record  *repo.MedicalRecord
	appt    *repo.Appointment
}

func newFixture() *fixture {
	clinic := uuid.New()
	f := &fixture{
		store:   &fakePrescriptions{rows: map[uuid.UUID]*repo.Prescription{}},
		docs:    &fakeDocuments{},
		clinic:  clinic,
		patient: &repo.User{ID: uuid.New(), FirstName: "Leila", LastName: "Mansour", Role: authorize.RolePatient},
	}
	f.doctor = &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleDoctor, ClinicID: &clinic}
	f.record = &repo.MedicalRecord{ID: uuid.New(), PatientID: f.patient.ID, ClinicID: clinic}
	f.appt = &repo.Appointment{ID: uuid.New(), PatientID: f.patient.ID, DoctorID: f.doctor.UserID, ClinicID: clinic}
	f.svc = New(f.store, fakeUsers{f.patient.ID: f.patient}, fakeRecords{f.record.ID: f.record},
		fakeAppointments{f.appt.ID: f.appt}, f.docs, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return f
}

func meds() []repo.Medication {
	return []repo.Medication{{Name: " Amoxicillin ", Dosage: "1g", Frequency: "2x/day", Duration: "7 days"}}
}

func TestCreateQueuesDocument(t *testing.T) {
	f := newFixture()
	p, err := f.svc.Create(context.Background(), f.doctor, CreateRequest{
		PatientID: f.patient.ID, MedicalRecordID: &f.record.ID, AppointmentID: &f.appt.ID, Medications: meds(),
	})
	require.NoError(t, err)
	assert.Equal(t, &f.appt.ID, p.AppointmentID)

	assert.Equal(t, "Amoxicillin", p.Medications[0].Name)
	assert.Equal(t, f.clinic, p.ClinicID)
	assert.Equal(t, repo.DocumentPending, p.Document.Status)
	assert.Equal(t, []uuid.UUID{p.ID}, f.docs.queued)

	link, err := f.svc.PDF(context.Background(), f.doctor, p.ID)
	require.NoError(t, err)
	assert.False(t, link.Ready())

	require.NoError(t, f.store.SetDocument(context.Background(), p.ID, repo.Document{Status: repo.DocumentReady, Key: "k"}))
	self := &authorize.Identity{UserID: f.patient.ID, Role: authorize.RolePatient}
	link, err = f.svc.PDF(context.Background(), self, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "memory://k", link.URL)
}

func TestCreateMarksFailedWhenQueueIsDown(t *testing.T) {
	f := newFixture()
	f.docs.err = errors.New("nats: no servers")

	p, err := f.svc.Create(context.Background(), f.doctor, CreateRequest{PatientID: f.patient.ID, Medications: meds()})
	require.NoError(t, err)
	assert.Equal(t, repo.DocumentFailed, p.Document.Status)
	assert.Equal(t, repo.DocumentFailed, f.store.rows[p.ID].Document.Status)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture()
	foreign := &repo.MedicalRecord{ID: uuid.New(), PatientID: uuid.New(), ClinicID: f.clinic}
	otherClinic := &repo.MedicalRecord{ID: uuid.New(), PatientID: f.patient.ID, ClinicID: uuid.New()}
	f.svc.(*prescriptionService).records = fakeRecords{foreign.ID: foreign, otherClinic.ID: otherClinic}
	strangerAppt := &repo.Appointment{ID: uuid.New(), PatientID: uuid.New(), ClinicID: f.clinic}
	elsewhereAppt := &repo.Appointment{ID: uuid.New(), PatientID: f.patient.ID, ClinicID: uuid.New()}
	f.svc.(*prescriptionService).appointments = fakeAppointments{strangerAppt.ID: strangerAppt, elsewhereAppt.ID: elsewhereAppt}
	missing := uuid.New()
	short := meds()
	short[0].Name = "A"

	tests := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{"no medications", CreateRequest{PatientID: f.patient.ID}, ErrRequired},
		{"no patient", CreateRequest{Medications: meds()}, ErrRequired},
		{"short name", CreateRequest{PatientID: f.patient.ID, Medications: short}, nil},
		{"unknown patient", CreateRequest{PatientID: uuid.New(), Medications: meds()}, clinical.ErrPatientNotFound},
		{"missing record", CreateRequest{PatientID: f.patient.ID, Medications: meds(), MedicalRecordID: &missing}, ErrRecordMissing},
		{"record of someone else", CreateRequest{PatientID: f.patient.ID, Medications: meds(), MedicalRecordID: &foreign.ID}, ErrRecordPatient},
		{"record of another clinic", CreateRequest{PatientID: f.patient.ID, Medications: meds(), MedicalRecordID: &otherClinic.ID}, authorize.ErrClinicMismatch},
		{"missing appointment", CreateRequest{PatientID: f.patient.ID, Medications: meds(), AppointmentID: &missing}, clinical.ErrAppointmentMissing},
		{"appointment of someone else", CreateRequest{PatientID: f.patient.ID, Medications: meds(), AppointmentID: &strangerAppt.ID}, clinical.ErrAppointmentPatient},
		{"appointment of another clinic", CreateRequest{PatientID: f.patient.ID, Medications: meds(), AppointmentID: &elsewhereAppt.ID}, authorize.ErrClinicMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), f.doctor, tt.req)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
	assert.Empty(t, f.store.rows)
	assert.Empty(t, f.docs.queued)
}

func TestAccess(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p, err := f.svc.Create(ctx, f.doctor, CreateRequest{PatientID: f.patient.ID, Medications: meds()})
	require.NoError(t, err)

	stranger := &authorize.Identity{UserID: uuid.New(), Role: authorize.RolePatient}
	_, err = f.svc.Get(ctx, stranger, p.ID)
	assert.ErrorIs(t, err, authorize.ErrNotOwner)
	_, err = f.svc.ByPatient(ctx, stranger, f.patient.ID)
	assert.ErrorIs(t, err, authorize.ErrNotOwner)

	receptionist := &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleReceptionist, ClinicID: &f.clinic}
	list, err := f.svc.ByPatient(ctx, receptionist, f.patient.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.svc.PDF(ctx, stranger, p.ID)
	assert.ErrorIs(t, err, authorize.ErrNotOwner)
	_, err = f.svc.Get(ctx, f.doctor, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
