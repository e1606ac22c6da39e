package medicalrecord

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/internal/service/apperr"
	"github.com/imedbrahmi/hospital_backend/internal/service/clinical"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
)

// ---------------------------------------------------------------------------
// Dependencies
// ---------------------------------------------------------------------------

type RecordStore interface {
	Create(ctx context.Context, m *repo.MedicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*repo.MedicalRecord, error)
	List(ctx context.Context, f repo.RecordFilter) ([]*repo.MedicalRecord, error)
	Update(ctx context.Context, m *repo.MedicalRecord) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type AppointmentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*repo.Appointment, error)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	PatientID     uuid.UUID
	AppointmentID *uuid.UUID
	VisitDate     string
	Diagnosis     string
	Symptoms      string
	Examination   string
	Treatment     string
	Notes         string
	VitalSigns    repo.VitalSigns
}

type UpdateRequest struct {
	VisitDate   *string
	Diagnosis   *string
	Symptoms    *string
	Examination *string
	Treatment   *string
	Notes       *string
	VitalSigns  *repo.VitalSigns
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, actor *authorize.Identity, req CreateRequest) (*repo.MedicalRecord, error)
	ByPatient(ctx context.Context, actor *authorize.Identity, patientID uuid.UUID) ([]*repo.MedicalRecord, error)
	ByDoctor(ctx context.Context, actor *authorize.Identity, doctorID uuid.UUID) ([]*repo.MedicalRecord, error)
	Get(ctx context.Context, actor *authorize.Identity, id uuid.UUID) (*repo.MedicalRecord, error)
	Update(ctx context.Context, actor *authorize.Identity, id uuid.UUID, req UpdateRequest) (*repo.MedicalRecord, error)
	Delete(ctx context.Context, actor *authorize.Identity, id uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type recordService struct {
	records      RecordStore
	users        clinical.UserStore
	appointments AppointmentStore
}

func New(records RecordStore, users clinical.UserStore, appointments AppointmentStore) Service {
	return &recordService{records: records, users: users, appointments: appointments}
}

func validate(m *repo.MedicalRecord) error {
	var f apperr.Fields
	f.Length("Diagnosis", m.Diagnosis, 3, 500)
	f.Length("Treatment", m.Treatment, 0, 1000)
	f.Length("Notes", m.Notes, 0, 2000)
	if m.VisitDate != "" {
		f.Date("Visit date", m.VisitDate)
	}
	v := m.VitalSigns
	for _, n := range []*float64{v.HeartRate, v.Temperature, v.Weight, v.Height} {
		f.Check(n == nil || *n >= 0, "Vital signs cannot be negative")
	}
	return f.Err()
}

func (s *recordService) Create(ctx context.Context, actor *authorize.Identity, req CreateRequest) (*repo.MedicalRecord, error) {
	clinicID, err := clinical.Author(actor)
	if err != nil {
		return nil, err
	}
	if req.PatientID == uuid.Nil || strings.TrimSpace(req.Diagnosis) == "" {
		return nil, ErrRequired
	}

	m := &repo.MedicalRecord{
		PatientID:     req.PatientID,
		DoctorID:      actor.UserID,
		ClinicID:      clinicID,
		AppointmentID: req.AppointmentID,
		VisitDate:     strings.TrimSpace(req.VisitDate),
		Diagnosis:     strings.TrimSpace(req.Diagnosis),
		Symptoms:      strings.TrimSpace(req.Symptoms),
		Examination:   strings.TrimSpace(req.Examination),
		Treatment:     strings.TrimSpace(req.Treatment),
		Notes:         strings.TrimSpace(req.Notes),
		VitalSigns:    req.VitalSigns,
	}
	if err := validate(m); err != nil {
		return nil, err
	}

	patient, err := clinical.Patient(ctx, s.users, req.PatientID)
	if err != nil {
		return nil, err
	}
	if err := clinical.Appointment(ctx, s.appointments, req.AppointmentID, patient.ID, clinicID); err != nil {
		return nil, err
	}

	if err := s.records.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create medical record: %w", err)
	}
	m.Patient = patient.Ref()
	return m, nil
}

func (s *recordService) ByPatient(ctx context.Context, actor *authorize.Identity, patientID uuid.UUID) ([]*repo.MedicalRecord, error) {
	f, err := clinical.ByPatient(actor, patientID)
	if err != nil {
		return nil, err
	}
	return s.records.List(ctx, f)
}

func (s *recordService) ByDoctor(ctx context.Context, actor *authorize.Identity, doctorID uuid.UUID) ([]*repo.MedicalRecord, error) {
	f, err := clinical.ByDoctor(ctx, actor, s.users, doctorID)
	if err != nil {
		return nil, err
	}
	return s.records.List(ctx, f)
}

func (s *recordService) load(ctx context.Context, actor *authorize.Identity, id uuid.UUID) (*repo.MedicalRecord, error) {
	m, err := s.records.GetByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get medical record: %w", err)
	}
	if err := authorize.Scope(actor, clinical.Target(m.ClinicID, m.DoctorID, m.PatientID)); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *recordService) Get(ctx context.Context, actor *authorize.Identity, id uuid.UUID) (*repo.MedicalRecord, error) {
	return s.load(ctx, actor, id)
}

func (s *recordService) Update(ctx context.Context, actor *authorize.Identity, id uuid.UUID, req UpdateRequest) (*repo.MedicalRecord, error) {
	if actor != nil && actor.Role == authorize.RolePatient {
		return nil, authorize.ErrForbidden
	}
	m, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&m.VisitDate, req.VisitDate)
	set(&m.Diagnosis, req.Diagnosis)
	set(&m.Symptoms, req.Symptoms)
	set(&m.Examination, req.Examination)
	set(&m.Treatment, req.Treatment)
	set(&m.Notes, req.Notes)
	if req.VitalSigns != nil {
		m.VitalSigns = *req.VitalSigns
	}
	if err := validate(m); err != nil {
		return nil, err
	}

	if err := s.records.Update(ctx, m); err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update medical record: %w", err)
	}
	return m, nil
}

func (s *recordService) Delete(ctx context.Context, actor *authorize.Identity, id uuid.UUID) error {
	if actor != nil && actor.Role == authorize.RolePatient {
		return authorize.ErrForbidden
	}
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	if err := s.records.SoftDelete(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete medical record: %w", err)
	}
	return nil
}
