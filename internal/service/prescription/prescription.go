package prescription

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/imedbrahmi/hospital_backend/internal/events"
	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/internal/service/apperr"
	"github.com/imedbrahmi/hospital_backend/internal/service/clinical"
	"github.com/imedbrahmi/hospital_backend/internal/service/document"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
)

// ---------------------------------------------------------------------------
// Dependencies
// ---------------------------------------------------------------------------

type PrescriptionStore interface {
	Create(ctx context.Context, p *repo.Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*repo.Prescription, error)
	List(ctx context.Context, f repo.RecordFilter) ([]*repo.Prescription, error)
	SetDocument(ctx context.Context, id uuid.UUID, d repo.Document) error
}

type RecordStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*repo.MedicalRecord, error)
}

// Documents is the slice of document.Service prescriptions use.
type Documents interface {
	Enqueue(ctx context.Context, kind events.DocumentKind, id uuid.UUID, revision int64) error
	Link(ctx context.Context, kind events.DocumentKind, id uuid.UUID, doc repo.Document) (*document.Link, error)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	PatientID        uuid.UUID
	AppointmentID    *uuid.UUID
	MedicalRecordID  *uuid.UUID
	PrescriptionDate string
	Medications      []repo.Medication
	Notes            string
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, actor *authorize.Identity, req CreateRequest) (*repo.Prescription, error)
	ByPatient(ctx context.Context, actor *authorize.Identity, patientID uuid.UUID) ([]*repo.Prescription, error)
	ByDoctor(ctx context.Context, actor *authorize.Identity, doctorID uuid.UUID) ([]*repo.Prescription, error)
	Get(ctx context.Context, actor *authorize.Identity, id uuid.UUID) (*repo.Prescription, error)
	PDF(ctx context.Context, actor *authorize.Identity, id uuid.UUID) (*document.Link, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type prescriptionService struct {
	prescriptions PrescriptionStore
	users         clinical.UserStore
	records       RecordStore
	appointments  clinical.AppointmentStore
	documents     Documents
	logger        *slog.Logger
}

func New(
	prescriptions PrescriptionStore,
	users clinical.UserStore,
	records RecordStore,
	appointments clinical.AppointmentStore,
	documents Documents,
	logger *slog.Logger,
) Service {
	return &prescriptionService{
		prescriptions: prescriptions,
		users:         users,
		records:       records,
		appointments:  appointments,
		documents:     documents,
		logger:        logger,
	}
}

func normalize(req *CreateRequest) error {
	if req.PatientID == uuid.Nil || len(req.Medications) == 0 {
		return ErrRequired
	}
	var f apperr.Fields
	for i := range req.Medications {
		m := &req.Medications[i]
		m.Name = strings.TrimSpace(m.Name)
		m.Dosage = strings.TrimSpace(m.Dosage)
		m.Frequency = strings.TrimSpace(m.Frequency)
		m.Duration = strings.TrimSpace(m.Duration)
		m.Instructions = strings.TrimSpace(m.Instructions)

		f.Length("Medication name", m.Name, 2, 0)
		f.Required("Dosage", m.Dosage)
		f.Required("Frequency", m.Frequency)
		f.Required("Duration", m.Duration)
	}
	req.Notes = strings.TrimSpace(req.Notes)
	f.Length("Notes", req.Notes, 0, 500)
	req.PrescriptionDate = strings.TrimSpace(req.PrescriptionDate)
	if req.PrescriptionDate != "" {
		f.Date("Prescription date", req.PrescriptionDate)
	}
	return f.Err()
}

func (s *prescriptionService) Create(ctx context.Context, actor *authorize.Identity, req CreateRequest) (*repo.Prescription, error) {
	clinicID, err := clinical.Author(actor)
	if err != nil {
		return nil, err
	}
	if err := normalize(&req); err != nil {
		return nil, err
	}

	patient, err := clinical.Patient(ctx, s.users, req.PatientID)
	if err != nil {
		return nil, err
	}
	if req.MedicalRecordID != nil {
		m, err := s.records.GetByID(ctx, *req.MedicalRecordID)
		if err != nil {
			if repo.IsNotFound(err) {
				return nil, ErrRecordMissing
			}
			return nil, fmt.Errorf("get medical record: %w", err)
		}
		if m.PatientID != patient.ID {
			return nil, ErrRecordPatient
		}
		if m.ClinicID != clinicID {
			return nil, authorize.ErrClinicMismatch
		}
	}
	if err := clinical.Appointment(ctx, s.appointments, req.AppointmentID, patient.ID, clinicID); err != nil {
		return nil, err
	}

	p := &repo.Prescription{
		PatientID:        patient.ID,
		DoctorID:         actor.UserID,
		ClinicID:         clinicID,
		AppointmentID:    req.AppointmentID,
		MedicalRecordID:  req.MedicalRecordID,
		PrescriptionDate: req.PrescriptionDate,
		Medications:      req.Medications,
		Notes:            req.Notes,
	}
	if err := s.prescriptions.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create prescription: %w", err)
	}
	p.Patient = patient.Ref()

	s.enqueue(ctx, p)
	return p, nil
}

func (s *prescriptionService) ByPatient(ctx context.Context, actor *authorize.Identity, patientID uuid.UUID) ([]*repo.Prescription, error) {
	f, err := clinical.ByPatient(actor, patientID)
	if err != nil {
		return nil, err
	}
	return s.prescriptions.List(ctx, f)
}

func (s *prescriptionService) ByDoctor(ctx context.Context, actor *authorize.Identity, doctorID uuid.UUID) ([]*repo.Prescription, error) {
	f, err := clinical.ByDoctor(ctx, actor, s.users, doctorID)
	if err != nil {
		return nil, err
	}
	return s.prescriptions.List(ctx, f)
}

func (s *prescriptionService) Get(ctx context.Context, actor *authorize.Identity, id uuid.UUID) (*repo.Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get prescription: %w", err)
	}
	if err := authorize.Scope(actor, clinical.Target(p.ClinicID, p.DoctorID, p.PatientID)); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *prescriptionService) PDF(ctx context.Context, actor *authorize.Identity, id uuid.UUID) (*document.Link, error) {
	p, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.documents.Link(ctx, events.KindPrescription, p.ID, p.Document)
}

// enqueue asks for the PDF. When the job cannot be queued the document is
// marked failed so the next PDF request queues it again.
func (s *prescriptionService) enqueue(ctx context.Context, p *repo.Prescription) {
	err := s.documents.Enqueue(ctx, events.KindPrescription, p.ID, p.Document.Revision)
	if err == nil {
		return
	}
	s.logger.Warn("prescription: render job not queued", "prescription_id", p.ID, "error", err)
	p.Document = repo.Document{Status: repo.DocumentFailed, Error: "Document queue unavailable", Revision: p.Document.Revision}
	if err := s.prescriptions.SetDocument(ctx, p.ID, p.Document); err != nil {
		s.logger.Error("prescription: cannot mark document failed", "prescription_id", p.ID, "error", err)
	}
}
