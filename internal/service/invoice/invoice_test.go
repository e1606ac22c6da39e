package invoice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imedbrahmi/hospital_backend/internal/events"
	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/internal/service/clinical"
	"github.com/imedbrahmi/hospital_backend/internal/service/document"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
)

// memInvoices is an in-memory InvoiceStore. InTx restores the rows when fn
// fails.
type memInvoices struct {
	rows map[uuid.UUID]*repo.Invoice
	seq  int64
}

func clone(inv *repo.Invoice) *repo.Invoice {
	c := *inv
	c.Items = slices.Clone(inv.Items)
	c.Payments = slices.Clone(inv.Payments)
	return &c
}

func (m *memInvoices) Invoices() InvoiceStore { return m }

func (m *memInvoices) InTx(_ context.Context, fn func(InvoiceStore) error) error {
	snap := make(map[uuid.UUID]*repo.Invoice, len(m.rows))
	for id, inv := range m.rows {
		snap[id] = clone(inv)
	}
	seq := m.seq
	if err := fn(m); err != nil {
		m.rows, m.seq = snap, seq
		return err
	}
	return nil
}

func (m *memInvoices) NextNumber(context.Context) (int64, error) {
	m.seq++
	return m.seq, nil
}

func (m *memInvoices) Create(_ context.Context, inv *repo.Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	inv.Document = repo.Document{Status: repo.DocumentPending}
	m.rows[inv.ID] = clone(inv)
	return nil
}

func (m *memInvoices) GetByID(_ context.Context, id uuid.UUID) (*repo.Invoice, error) {
	if inv, ok := m.rows[id]; ok {
		return clone(inv), nil
	}
	return nil, repo.ErrNotFound
}

func (m *memInvoices) GetForUpdate(ctx context.Context, id uuid.UUID) (*repo.Invoice, error) {
	return m.GetByID(ctx, id)
}

func (m *memInvoices) List(_ context.Context, f repo.InvoiceFilter) ([]*repo.Invoice, error) {
	out := []*repo.Invoice{}
	for _, inv := range m.rows {
		if f.ClinicID != nil && inv.ClinicID != *f.ClinicID ||
			f.PatientID != nil && inv.PatientID != *f.PatientID ||
			f.Status != "" && inv.Status != f.Status {
			continue
		}
		out = append(out, clone(inv))
	}
	return out, nil
}

func (m *memInvoices) AddPayment(_ context.Context, id uuid.UUID, p *repo.Payment) error {
	inv, ok := m.rows[id]
	if !ok {
		return repo.ErrNotFound
	}
	p.ID = uuid.New()
	inv.Payments = append(inv.Payments, *p)
	return nil
}

func (m *memInvoices) SetPaymentState(_ context.Context, id uuid.UUID, paid float64, status repo.InvoiceStatus) error {
	inv, ok := m.rows[id]
	if !ok {
		return repo.ErrNotFound
	}
	inv.AmountPaid, inv.Status = paid, status
	return nil
}

func (m *memInvoices) SetDocument(_ context.Context, id uuid.UUID, d repo.Document) error {
	inv, ok := m.rows[id]
	if !ok || inv.Document.Revision != d.Revision {
		return repo.ErrNotFound
	}
	inv.Document = d
	return nil
}

func (m *memInvoices) ResetDocument(_ context.Context, id uuid.UUID) (int64, error) {
	inv, ok := m.rows[id]
	if !ok {
		return 0, repo.ErrNotFound
	}
	inv.Document = repo.Document{Status: repo.DocumentPending, Revision: inv.Document.Revision + 1}
	return inv.Document.Revision, nil
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

type fakeDocuments struct {
	queued    []uuid.UUID
	revisions []int64
	err       error
}

func (f *fakeDocuments) Enqueue(_ context.Context, kind events.DocumentKind, id uuid.UUID, revision int64) error {
	if f.err != nil {
		return f.err
	}
	f.queued = append(f.queued, id)
	f.revisions = append(f.revisions, revision)
	return nil
}

func (f *fakeDocuments) Link(_ context.Context, _ events.DocumentKind, _ uuid.UUID, doc repo.Document) (*document.Link, error) {
	return &document.Link{Status: doc.Status}, nil
}

type fixture struct {
	svc       Service
	store     *memInvoices
	documents *fakeDocuments
	clinic    uuid.UUID
	admin     *authorize.Identity
	patient   *repo.User
	appt      *repo.Appointment
}

func newFixture() *fixture {
	clinic := uuid.New()
	f := &fixture{
		store:     &memInvoices{rows: map[uuid.UUID]*repo.Invoice{}},
		documents: &fakeDocuments{},
		clinic:    clinic,
		admin:     &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleReceptionist, ClinicID: &clinic},
		patient:   &repo.User{ID: uuid.New(), FirstName: "Sami", LastName: "Trabelsi", Role: authorize.RolePatient},
	}
	f.appt = &repo.Appointment{ID: uuid.New(), PatientID: f.patient.ID, ClinicID: clinic}
	svc := New(f.store, fakeUsers{f.patient.ID: f.patient}, fakeAppointments{f.appt.ID: f.appt}, f.documents,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.(*invoiceService).now = func() time.Time { return time.Date(2024, time.May, 2, 9, 0, 0, 0, time.UTC) }
	f.svc = svc
	return f
}

func (f *fixture) create(t *testing.T) *repo.Invoice {
	t.Helper()
	inv, err := f.svc.Create(context.Background(), f.admin, CreateRequest{
		PatientID: f.patient.ID,
		Items: []repo.InvoiceItem{
			{Description: "Consultation", Quantity: 2, UnitPrice: 50},
			{Description: "Blood test", Quantity: 1, UnitPrice: 30},
		},
		Tax:      10,
		Discount: 5,
	})
	require.NoError(t, err)
	return inv
}

func TestCreate(t *testing.T) {
	f := newFixture()
	inv := f.create(t)

	assert.Equal(t, "INV-2024-0502-0001", inv.InvoiceNumber)
	assert.Equal(t, 130.0, inv.Subtotal)
	assert.Equal(t, 135.0, inv.Total)
	assert.Equal(t, repo.InvoicePending, inv.Status)
	assert.Equal(t, f.clinic, inv.ClinicID)
	assert.Equal(t, []uuid.UUID{inv.ID}, f.documents.queued)

	second := f.create(t)
	assert.Equal(t, "INV-2024-0502-0002", second.InvoiceNumber)
}

func TestCreateZeroTotalIsPaid(t *testing.T) {
	f := newFixture()
	inv, err := f.svc.Create(context.Background(), f.admin, CreateRequest{
		PatientID: f.patient.ID,
		Items:     []repo.InvoiceItem{{Description: "Free checkup", Quantity: 1, UnitPrice: 0}},
	})
	require.NoError(t, err)

	assert.Zero(t, inv.Total)
	assert.Equal(t, repo.InvoicePaid, inv.Status)
	assert.Equal(t, repo.InvoicePaid, f.store.rows[inv.ID].Status)

	discounted, err := f.svc.Create(context.Background(), f.admin, CreateRequest{
		PatientID: f.patient.ID,
		Items:     []repo.InvoiceItem{{Description: "Consultation", Quantity: 1, UnitPrice: 40}},
		Discount:  40,
	})
	require.NoError(t, err)
	assert.Equal(t, repo.InvoicePaid, discounted.Status)
}

func TestCreateWithAppointment(t *testing.T) {
	f := newFixture()
	inv, err := f.svc.Create(context.Background(), f.admin, CreateRequest{
		PatientID:     f.patient.ID,
		AppointmentID: &f.appt.ID,
		Items:         []repo.InvoiceItem{{Description: "Consultation", Quantity: 1, UnitPrice: 40}},
	})
	require.NoError(t, err)
	assert.Equal(t, &f.appt.ID, inv.AppointmentID)
}

func TestCreateFailures(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	items := []repo.InvoiceItem{{Description: "Consultation", Quantity: 1, UnitPrice: 20}}
	doctor := &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleDoctor, ClinicID: &f.clinic}
	stranger := &repo.Appointment{ID: uuid.New(), PatientID: uuid.New(), ClinicID: f.clinic}
	elsewhere := &repo.Appointment{ID: uuid.New(), PatientID: f.patient.ID, ClinicID: uuid.New()}
	f.svc.(*invoiceService).appointments = fakeAppointments{stranger.ID: stranger, elsewhere.ID: elsewhere}
	missing := uuid.New()

	tests := []struct {
		name  string
		actor *authorize.Identity
		req   CreateRequest
		want  error
	}{
		{"doctor", doctor, CreateRequest{PatientID: f.patient.ID, Items: items}, authorize.ErrForbidden},
		{"no clinic", &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleAdmin}, CreateRequest{PatientID: f.patient.ID, Items: items}, ErrNoClinic},
		{"no items", f.admin, CreateRequest{PatientID: f.patient.ID}, ErrRequired},
		{"unknown patient", f.admin, CreateRequest{PatientID: uuid.New(), Items: items}, clinical.ErrPatientNotFound},
		{"negative total", f.admin, CreateRequest{PatientID: f.patient.ID, Items: items, Discount: 25}, ErrNegativeTotal},
		{"unknown appointment", f.admin, CreateRequest{PatientID: f.patient.ID, Items: items, AppointmentID: &missing}, clinical.ErrAppointmentMissing},
		{"appointment of another patient", f.admin, CreateRequest{PatientID: f.patient.ID, Items: items, AppointmentID: &stranger.ID}, clinical.ErrAppointmentPatient},
		{"appointment of another clinic", f.admin, CreateRequest{PatientID: f.patient.ID, Items: items, AppointmentID: &elsewhere.ID}, authorize.ErrClinicMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tt.actor, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.store.rows)
	assert.Zero(t, f.store.seq)
}

func TestAddPayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	inv := f.create(t)

	res, err := f.svc.AddPayment(ctx, f.admin, inv.ID, PaymentRequest{Amount: 35, Method: "Cash"})
	require.NoError(t, err)
	assert.Equal(t, repo.InvoicePartiallyPaid, res.Invoice.Status)
	assert.Equal(t, 35.0, res.TotalPaid)
	assert.Equal(t, 100.0, res.Remaining)

	res, err = f.svc.AddPayment(ctx, f.admin, inv.ID, PaymentRequest{Amount: 100, Method: "Credit Card"})
	require.NoError(t, err)
	assert.Equal(t, repo.InvoicePaid, res.Invoice.Status)
	assert.Zero(t, res.Remaining)
	assert.Len(t, f.store.rows[inv.ID].Payments, 2)
	assert.Len(t, f.documents.queued, 3)
	assert.Equal(t, []int64{0, 1, 2}, f.documents.revisions, "each payment queues a newer revision")
	assert.Equal(t, int64(2), f.store.rows[inv.ID].Document.Revision)

	_, err = f.svc.AddPayment(ctx, f.admin, inv.ID, PaymentRequest{Amount: 0, Method: "Cash"})
	assert.ErrorIs(t, err, ErrPaymentRequired)
	_, err = f.svc.AddPayment(ctx, f.admin, inv.ID, PaymentRequest{Amount: 5, Method: "Bitcoin"})
	assert.ErrorIs(t, err, ErrPaymentMethod)

	y := uuid.New()
	foreign := &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleAdmin, ClinicID: &y}
	_, err = f.svc.AddPayment(ctx, foreign, inv.ID, PaymentRequest{Amount: 5, Method: "Cash"})
	assert.ErrorIs(t, err, authorize.ErrClinicMismatch)
	assert.Len(t, f.store.rows[inv.ID].Payments, 2)
}

func TestCancel(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	inv := f.create(t)

	_, err := f.svc.Cancel(ctx, f.admin, inv.ID)
	assert.ErrorIs(t, err, authorize.ErrForbidden)

	admin := &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleAdmin, ClinicID: &f.clinic}
	out, err := f.svc.Cancel(ctx, admin, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, repo.InvoiceCancelled, out.Status)

	_, err = f.svc.AddPayment(ctx, f.admin, inv.ID, PaymentRequest{Amount: 10, Method: "Cash"})
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Empty(t, f.store.rows[inv.ID].Payments)

	paid := f.create(t)
	_, err = f.svc.AddPayment(ctx, f.admin, paid.ID, PaymentRequest{Amount: 135, Method: "Cash"})
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, admin, paid.ID)
	assert.ErrorIs(t, err, ErrPaidCancel)
}

func TestVisibility(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	inv := f.create(t)

	self := &authorize.Identity{UserID: f.patient.ID, Role: authorize.RolePatient}
	got, err := f.svc.Get(ctx, self, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNumber, got.InvoiceNumber)

	mine, err := f.svc.MyInvoices(ctx, self)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	stranger := &authorize.Identity{UserID: uuid.New(), Role: authorize.RolePatient}
	_, err = f.svc.Get(ctx, stranger, inv.ID)
	assert.ErrorIs(t, err, authorize.ErrNotOwner)
	_, err = f.svc.ByPatient(ctx, stranger, f.patient.ID)
	assert.ErrorIs(t, err, authorize.ErrNotOwner)

	doctor := &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleDoctor, ClinicID: &f.clinic}
	_, err = f.svc.Get(ctx, doctor, inv.ID)
	assert.ErrorIs(t, err, authorize.ErrForbidden)

	y := uuid.New()
	foreign := &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleAdmin, ClinicID: &y}
	list, err := f.svc.List(ctx, foreign, ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = f.svc.List(ctx, f.admin, ListQuery{Status: "Pending"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	_, err = f.svc.List(ctx, f.admin, ListQuery{Status: "Overdue"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestQueueFailureMarksDocumentFailed(t *testing.T) {
	f := newFixture()
	f.documents.err = errors.New("nats: no servers available")
	inv := f.create(t)

	assert.Equal(t, repo.DocumentFailed, inv.Document.Status)
	assert.Equal(t, repo.DocumentFailed, f.store.rows[inv.ID].Document.Status)

	link, err := f.svc.PDF(context.Background(), f.admin, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, repo.DocumentFailed, link.Status)
}
