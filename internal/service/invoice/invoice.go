package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

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

// Documents is the slice of document.Service invoices use.
type Documents interface {
	Enqueue(ctx context.Context, kind events.DocumentKind, id uuid.UUID, revision int64) error
	Link(ctx context.Context, kind events.DocumentKind, id uuid.UUID, doc repo.Document) (*document.Link, error)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	PatientID     uuid.UUID
	AppointmentID *uuid.UUID
	Items         []repo.InvoiceItem
	Tax           float64
	Discount      float64
	DueDate       string
	Notes         string
}

type PaymentRequest struct {
	Amount        float64
	Method        repo.PaymentMethod
	TransactionID string
	Notes         string
}

// PaymentResult is the invoice after a payment together with its balance.
type PaymentResult struct {
	Invoice   *repo.Invoice `json:"invoice"`
	TotalPaid float64       `json:"totalPaid"`
	Remaining float64       `json:"remaining"`
}

type ListQuery struct {
	Status    string
	PatientID *uuid.UUID
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, actor *authorize.Identity, req CreateRequest) (*repo.Invoice, error)
	List(ctx context.Context, actor *authorize.Identity, q ListQuery) ([]*repo.Invoice, error)
	MyInvoices(ctx context.Context, actor *authorize.Identity) ([]*repo.Invoice, error)
	ByPatient(ctx context.Context, actor *authorize.Identity, patientID uuid.UUID) ([]*repo.Invoice, error)
	Get(ctx context.Context, actor *authorize.Identity, id uuid.UUID) (*repo.Invoice, error)
	AddPayment(ctx context.Context, actor *authorize.Identity, id uuid.UUID, req PaymentRequest) (*PaymentResult, error)
	Cancel(ctx context.Context, actor *authorize.Identity, id uuid.UUID) (*repo.Invoice, error)
	PDF(ctx context.Context, actor *authorize.Identity, id uuid.UUID) (*document.Link, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type invoiceService struct {
	store        Store
	users        UserStore
	appointments clinical.AppointmentStore
	documents    Documents
	logger       *slog.Logger
	now          func() time.Time
}

func New(store Store, users UserStore, appointments clinical.AppointmentStore, documents Documents, logger *slog.Logger) Service {
	return &invoiceService{
		store:        store,
		users:        users,
		appointments: appointments,
		documents:    documents,
		logger:       logger,
		now:          time.Now,
	}
}

func billing(actor *authorize.Identity) (uuid.UUID, error) {
	if actor == nil {
		return uuid.Nil, authorize.ErrNoSubjectInContext
	}
	if actor.Role != authorize.RoleAdmin && actor.Role != authorize.RoleReceptionist {
		return uuid.Nil, authorize.ErrForbidden
	}
	if !actor.HasClinic() {
		return uuid.Nil, ErrNoClinic
	}
	return *actor.ClinicID, nil
}

func (s *invoiceService) Create(ctx context.Context, actor *authorize.Identity, req CreateRequest) (*repo.Invoice, error) {
	clinicID, err := billing(actor)
	if err != nil {
		return nil, err
	}
	if req.PatientID == uuid.Nil || len(req.Items) == 0 {
		return nil, ErrRequired
	}

	totals, err := Compute(req.Items, req.Tax, req.Discount)
	if err != nil {
		return nil, err
	}
	var f apperr.Fields
	req.DueDate = strings.TrimSpace(req.DueDate)
	if req.DueDate != "" {
		f.Date("Due date", req.DueDate)
	}
	req.Notes = strings.TrimSpace(req.Notes)
	f.Length("Notes", req.Notes, 0, 1000)
	if err := f.Err(); err != nil {
		return nil, err
	}

	patient, err := clinical.Patient(ctx, s.users, req.PatientID)
	if err != nil {
		return nil, err
	}
	if err := clinical.Appointment(ctx, s.appointments, req.AppointmentID, patient.ID, clinicID); err != nil {
		return nil, err
	}

	// Nothing is owed on a zero-total invoice, so it starts Paid.
	inv := &repo.Invoice{
		PatientID:     patient.ID,
		ClinicID:      clinicID,
		CreatedBy:     actor.UserID,
		AppointmentID: req.AppointmentID,
		Items:         totals.Items,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Discount:      totals.Discount,
		Total:         totals.Total,
		Status:        DeriveStatus(repo.InvoicePending, totals.Total, 0),
		DueDate:       req.DueDate,
		Notes:         req.Notes,
	}
	err = s.store.InTx(ctx, func(tx InvoiceStore) error {
		seq, err := tx.NextNumber(ctx)
		if err != nil {
			return err
		}
		inv.InvoiceNumber = Number(s.now(), seq)
		return tx.Create(ctx, inv)
	})
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	inv.Patient = patient.Ref()

	s.enqueue(ctx, inv)
	return inv, nil
}

func (s *invoiceService) List(ctx context.Context, actor *authorize.Identity, q ListQuery) ([]*repo.Invoice, error) {
	if actor == nil {
		return nil, authorize.ErrNoSubjectInContext
	}
	switch actor.Role {
	case authorize.RoleSuperAdmin, authorize.RoleAdmin, authorize.RoleReceptionist:
	default:
		return nil, authorize.ErrForbidden
	}
	scope, err := authorize.ListFilter(actor)
	if err != nil {
		return nil, err
	}

	f := repo.InvoiceFilter{ClinicID: scope.ClinicID, PatientID: q.PatientID}
	if q.Status != "" {
		f.Status = repo.InvoiceStatus(q.Status)
		if !validStatus(f.Status) {
			return nil, ErrInvalidStatus
		}
	}
	return s.store.Invoices().List(ctx, f)
}

func (s *invoiceService) MyInvoices(ctx context.Context, actor *authorize.Identity) ([]*repo.Invoice, error) {
	if actor == nil {
		return nil, authorize.ErrNoSubjectInContext
	}
	if actor.Role != authorize.RolePatient {
		return nil, ErrOnlyPatients
	}
	return s.store.Invoices().List(ctx, repo.InvoiceFilter{PatientID: &actor.UserID})
}

// ByPatient lists the invoices of one patient. Doctors have no billing view.
func (s *invoiceService) ByPatient(ctx context.Context, actor *authorize.Identity, patientID uuid.UUID) ([]*repo.Invoice, error) {
	if actor == nil {
		return nil, authorize.ErrNoSubjectInContext
	}
	if actor.Role == authorize.RoleDoctor {
		return nil, authorize.ErrForbidden
	}
	if actor.Role == authorize.RolePatient && actor.UserID != patientID {
		return nil, authorize.ErrNotOwner
	}
	scope, err := authorize.ListFilter(actor)
	if err != nil {
		return nil, err
	}
	return s.store.Invoices().List(ctx, repo.InvoiceFilter{ClinicID: scope.ClinicID, PatientID: &patientID})
}

func check(actor *authorize.Identity, inv *repo.Invoice) error {
	if actor != nil && actor.Role == authorize.RoleDoctor {
		return authorize.ErrForbidden
	}
	return authorize.Scope(actor, authorize.Target{ClinicID: &inv.ClinicID, SubjectID: &inv.PatientID})
}

func (s *invoiceService) Get(ctx context.Context, actor *authorize.Identity, id uuid.UUID) (*repo.Invoice, error) {
	inv, err := s.store.Invoices().GetByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if err := check(actor, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *invoiceService) AddPayment(ctx context.Context, actor *authorize.Identity, id uuid.UUID, req PaymentRequest) (*PaymentResult, error) {
	if actor == nil {
		return nil, authorize.ErrNoSubjectInContext
	}
	if actor.Role == authorize.RoleDoctor || actor.Role == authorize.RolePatient {
		return nil, authorize.ErrForbidden
	}
	req.Method = repo.PaymentMethod(strings.TrimSpace(string(req.Method)))
	switch {
	case req.Amount == 0 || req.Method == "":
		return nil, ErrPaymentRequired
	case req.Amount < 0:
		return nil, ErrPaymentAmount
	case !validMethod(req.Method):
		return nil, ErrPaymentMethod
	}

	var out *PaymentResult
	err := s.store.InTx(ctx, func(tx InvoiceStore) error {
		inv, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			if repo.IsNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		if err := check(actor, inv); err != nil {
			return err
		}
		if inv.Status == repo.InvoiceCancelled {
			return ErrCancelled
		}

		p := repo.Payment{
			Amount:        Round2(req.Amount),
			Method:        req.Method,
			PaidAt:        s.now().UTC(),
			TransactionID: strings.TrimSpace(req.TransactionID),
			Notes:         strings.TrimSpace(req.Notes),
			RecordedBy:    actor.UserID,
		}
		if err := tx.AddPayment(ctx, inv.ID, &p); err != nil {
			return err
		}
		inv.Payments = append(inv.Payments, p)

		paid := 0.0
		for _, pm := range inv.Payments {
			paid += pm.Amount
		}
		inv.AmountPaid = Round2(paid)
		inv.Status = DeriveStatus(inv.Status, inv.Total, inv.AmountPaid)
		if err := tx.SetPaymentState(ctx, inv.ID, inv.AmountPaid, inv.Status); err != nil {
			return err
		}
		rev, err := tx.ResetDocument(ctx, inv.ID)
		if err != nil {
			return err
		}
		inv.Document = repo.Document{Status: repo.DocumentPending, Revision: rev}

		out = &PaymentResult{
			Invoice:   inv,
			TotalPaid: inv.AmountPaid,
			Remaining: Round2(max(inv.Total-inv.AmountPaid, 0)),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.enqueue(ctx, out.Invoice)
	return out, nil
}

func (s *invoiceService) Cancel(ctx context.Context, actor *authorize.Identity, id uuid.UUID) (*repo.Invoice, error) {
	if actor == nil {
		return nil, authorize.ErrNoSubjectInContext
	}
	if actor.Role != authorize.RoleSuperAdmin && actor.Role != authorize.RoleAdmin {
		return nil, authorize.ErrForbidden
	}

	var out *repo.Invoice
	err := s.store.InTx(ctx, func(tx InvoiceStore) error {
		inv, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			if repo.IsNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		if err := check(actor, inv); err != nil {
			return err
		}
		switch inv.Status {
		case repo.InvoicePaid:
			return ErrPaidCancel
		case repo.InvoiceCancelled:
			out = inv
			return nil
		}

		inv.Status = repo.InvoiceCancelled
		if err := tx.SetPaymentState(ctx, inv.ID, inv.AmountPaid, inv.Status); err != nil {
			return err
		}
		rev, err := tx.ResetDocument(ctx, inv.ID)
		if err != nil {
			return err
		}
		inv.Document = repo.Document{Status: repo.DocumentPending, Revision: rev}
		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Document.Status == repo.DocumentPending {
		s.enqueue(ctx, out)
	}
	return out, nil
}

func (s *invoiceService) PDF(ctx context.Context, actor *authorize.Identity, id uuid.UUID) (*document.Link, error) {
	inv, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.documents.Link(ctx, events.KindInvoice, inv.ID, inv.Document)
}

// enqueue asks for a fresh PDF. A job that cannot be queued leaves the
// document failed so the PDF endpoint queues it again.
func (s *invoiceService) enqueue(ctx context.Context, inv *repo.Invoice) {
	err := s.documents.Enqueue(ctx, events.KindInvoice, inv.ID, inv.Document.Revision)
	if err == nil {
		return
	}
	s.logger.Warn("invoice: render job not queued", "invoice_id", inv.ID, "error", err)
	inv.Document = repo.Document{Status: repo.DocumentFailed, Error: "Document queue unavailable", Revision: inv.Document.Revision}
	if err := s.store.Invoices().SetDocument(ctx, inv.ID, inv.Document); err != nil {
		s.logger.Error("invoice: cannot mark document failed", "invoice_id", inv.ID, "error", err)
	}
}
