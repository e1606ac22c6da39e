// Package document renders prescription and invoice PDFs out of band. The
// owning services mark a document pending and enqueue a render job; the
// worker renders, uploads and only then marks it ready.
package document

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/imedbrahmi/hospital_backend/config"
	"github.com/imedbrahmi/hospital_backend/internal/events"
	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/pkg/s3"
)

// ---------------------------------------------------------------------------
// Dependencies
// ---------------------------------------------------------------------------

type PrescriptionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*repo.Prescription, error)
	SetDocument(ctx context.Context, id uuid.UUID, d repo.Document) error
	ResetDocument(ctx context.Context, id uuid.UUID) (int64, error)
}

type InvoiceStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*repo.Invoice, error)
	SetDocument(ctx context.Context, id uuid.UUID, d repo.Document) error
	ResetDocument(ctx context.Context, id uuid.UUID) (int64, error)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Link is what the PDF endpoints answer with.
type Link struct {
	Status repo.DocumentStatus `json:"pdfStatus"`
	URL    string              `json:"pdfUrl,omitempty"`
}

// Ready reports whether the URL can be handed out.
func (l *Link) Ready() bool { return l.Status == repo.DocumentReady }

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Enqueue(ctx context.Context, kind events.DocumentKind, id uuid.UUID, revision int64) error
	Link(ctx context.Context, kind events.DocumentKind, id uuid.UUID, doc repo.Document) (*Link, error)
	Render(ctx context.Context, job events.RenderJob) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type documentService struct {
	prescriptions PrescriptionStore
	invoices      InvoiceStore
	objects       s3.ObjectStore
	publisher     events.Publisher
	subjects      events.Subjects
	renderer      Renderer
	timeout       time.Duration
	logger        *slog.Logger
}

func New(
	prescriptions PrescriptionStore,
	invoices InvoiceStore,
	objects s3.ObjectStore,
	publisher events.Publisher,
	subjects events.Subjects,
	cfg config.DocumentsConfig,
	logger *slog.Logger,
) Service {
	timeout := time.Duration(cfg.RenderTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &documentService{
		prescriptions: prescriptions,
		invoices:      invoices,
		objects:       objects,
		publisher:     publisher,
		subjects:      subjects,
		renderer:      Renderer{Hospital: cfg.HospitalName, Currency: cfg.Currency},
		timeout:       timeout,
		logger:        logger,
	}
}

func (s *documentService) Enqueue(ctx context.Context, kind events.DocumentKind, id uuid.UUID, revision int64) error {
	job := events.RenderJob{Kind: kind, ID: id, Revision: revision}
	if err := s.publisher.Publish(ctx, s.subjects.DocumentRender(), job); err != nil {
		return fmt.Errorf("enqueue %s %s: %w", kind, id, err)
	}
	return nil
}

func (s *documentService) setDocument(ctx context.Context, kind events.DocumentKind, id uuid.UUID, d repo.Document) error {
	switch kind {
	case events.KindPrescription:
		return s.prescriptions.SetDocument(ctx, id, d)
	case events.KindInvoice:
		return s.invoices.SetDocument(ctx, id, d)
	}
	return ErrUnknownKind
}

func (s *documentService) resetDocument(ctx context.Context, kind events.DocumentKind, id uuid.UUID) (int64, error) {
	switch kind {
	case events.KindPrescription:
		return s.prescriptions.ResetDocument(ctx, id)
	case events.KindInvoice:
		return s.invoices.ResetDocument(ctx, id)
	}
	return 0, ErrUnknownKind
}

// Link presigns a ready document. A failed one is put back in the queue
// and reported as pending.
func (s *documentService) Link(ctx context.Context, kind events.DocumentKind, id uuid.UUID, doc repo.Document) (*Link, error) {
	switch doc.Status {
	case repo.DocumentReady:
		url, err := s.objects.PresignDownload(ctx, doc.Key)
		if err != nil {
			s.logger.Error("document: presign failed", "kind", kind, "id", id, "error", err)
			return nil, ErrStorage
		}
		return &Link{Status: repo.DocumentReady, URL: url}, nil

	case repo.DocumentFailed:
		rev, err := s.resetDocument(ctx, kind, id)
		if err != nil {
			return nil, fmt.Errorf("reset document: %w", err)
		}
		if err := s.Enqueue(ctx, kind, id, rev); err != nil {
			s.logger.Warn("document: re-enqueue failed", "kind", kind, "id", id, "error", err)
		}
	}
	return &Link{Status: repo.DocumentPending}, nil
}

// Render is the worker side of a job: render, upload, then mark ready. Any
// failure is recorded on the row so the next PDF request retries it. A job
// whose revision is no longer the row's is dropped; the newer job owns the
// document.
func (s *documentService) Render(ctx context.Context, job events.RenderJob) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.render(ctx, job)
	if err != nil {
		if repo.IsNotFound(err) {
			// Deleted after the job was queued.
			return nil
		}
		s.fail(ctx, job, err)
		return err
	}
	if out.revision != job.Revision {
		s.superseded(job, out.revision)
		return nil
	}

	key := s3.DocumentKey(out.clinicID, string(job.Kind), job.ID, job.Revision)
	if err := s.objects.Upload(ctx, key, "application/pdf", bytes.NewReader(out.pdf), int64(len(out.pdf))); err != nil {
		err = fmt.Errorf("upload %s: %w", key, err)
		s.fail(ctx, job, err)
		return err
	}
	ready := repo.Document{Status: repo.DocumentReady, Key: key, Revision: job.Revision}
	if err := s.setDocument(ctx, job.Kind, job.ID, ready); err != nil {
		if repo.IsNotFound(err) {
			// Reset or deleted while rendering.
			s.superseded(job, -1)
			return nil
		}
		return fmt.Errorf("mark ready: %w", err)
	}
	s.logger.Info("document: rendered", "kind", job.Kind, "id", job.ID, "revision", job.Revision, "bytes", len(out.pdf))
	return nil
}

func (s *documentService) superseded(job events.RenderJob, current int64) {
	s.logger.Debug("document: stale render job dropped",
		"kind", job.Kind, "id", job.ID, "revision", job.Revision, "current", current)
}

type rendered struct {
	clinicID uuid.UUID
	revision int64
	pdf      []byte
}

// render skips the PDF itself when the job is stale.
func (s *documentService) render(ctx context.Context, job events.RenderJob) (rendered, error) {
	switch job.Kind {
	case events.KindPrescription:
		rx, err := s.prescriptions.GetByID(ctx, job.ID)
		if err != nil {
			return rendered{}, err
		}
		out := rendered{clinicID: rx.ClinicID, revision: rx.Document.Revision}
		if out.revision == job.Revision {
			out.pdf, err = s.renderer.Prescription(rx)
		}
		return out, err
	case events.KindInvoice:
		inv, err := s.invoices.GetByID(ctx, job.ID)
		if err != nil {
			return rendered{}, err
		}
		out := rendered{clinicID: inv.ClinicID, revision: inv.Document.Revision}
		if out.revision == job.Revision {
			out.pdf, err = s.renderer.Invoice(inv)
		}
		return out, err
	}
	return rendered{}, ErrUnknownKind
}

// failedMessage is stored on the row; the cause only goes to the log.
const failedMessage = "Document rendering failed"

func (s *documentService) fail(ctx context.Context, job events.RenderJob, cause error) {
	s.logger.Error("document: render failed", "kind", job.Kind, "id", job.ID, "error", cause)
	failed := repo.Document{Status: repo.DocumentFailed, Error: failedMessage, Revision: job.Revision}
	if err := s.setDocument(ctx, job.Kind, job.ID, failed); err != nil && !repo.IsNotFound(err) {
		s.logger.Error("document: cannot record failure", "kind", job.Kind, "id", job.ID, "error", err)
	}
}
