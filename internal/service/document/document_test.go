package document

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imedbrahmi/hospital_backend/config"
	"github.com/imedbrahmi/hospital_backend/internal/events"
	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/pkg/s3"
)

// docs keeps document state per row the way the repo does: a write for an
// old revision misses, a reset starts a new one.
type docs map[uuid.UUID]repo.Document

func (d docs) set(id uuid.UUID, doc repo.Document) error {
	if d[id].Revision != doc.Revision {
		return repo.ErrNotFound
	}
	d[id] = doc
	return nil
}

func (d docs) reset(id uuid.UUID) (int64, error) {
	rev := d[id].Revision + 1
	d[id] = repo.Document{Status: repo.DocumentPending, Revision: rev}
	return rev, nil
}

type fakePrescriptions struct {
	rows map[uuid.UUID]*repo.Prescription
	docs docs
}

func (f *fakePrescriptions) GetByID(_ context.Context, id uuid.UUID) (*repo.Prescription, error) {
	p, ok := f.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c := *p
	c.Document = f.docs[id]
	return &c, nil
}

func (f *fakePrescriptions) SetDocument(_ context.Context, id uuid.UUID, d repo.Document) error {
	return f.docs.set(id, d)
}

func (f *fakePrescriptions) ResetDocument(_ context.Context, id uuid.UUID) (int64, error) {
	return f.docs.reset(id)
}

type fakeInvoices struct {
	rows map[uuid.UUID]*repo.Invoice
	docs docs
	// afterGet runs once the row has been read.
	afterGet func(id uuid.UUID)
}

func (f *fakeInvoices) GetByID(_ context.Context, id uuid.UUID) (*repo.Invoice, error) {
	i, ok := f.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c := *i
	c.Document = f.docs[id]
	if f.afterGet != nil {
		f.afterGet(id)
	}
	return &c, nil
}

func (f *fakeInvoices) SetDocument(_ context.Context, id uuid.UUID, d repo.Document) error {
	return f.docs.set(id, d)
}

func (f *fakeInvoices) ResetDocument(_ context.Context, id uuid.UUID) (int64, error) {
	return f.docs.reset(id)
}

type fixture struct {
	svc      Service
	rx       *fakePrescriptions
	inv      *fakeInvoices
	objects  *s3.Memory
	recorder *events.Recorder
}

func newFixture() *fixture {
	f := &fixture{
		rx:       &fakePrescriptions{rows: map[uuid.UUID]*repo.Prescription{}, docs: docs{}},
		inv:      &fakeInvoices{rows: map[uuid.UUID]*repo.Invoice{}, docs: docs{}},
		objects:  s3.NewMemory(),
		recorder: &events.Recorder{},
	}
	f.svc = New(f.rx, f.inv, f.objects, f.recorder, events.Subjects{Prefix: "hospital"},
		config.DocumentsConfig{HospitalName: "Hôpital Test", Currency: "TND"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	return f
}

func prescription() *repo.Prescription {
	return &repo.Prescription{
		ID: uuid.New(), ClinicID: uuid.New(), PrescriptionDate: "2024-01-15",
		Medications: []repo.Medication{{Name: "Paracétamol", Dosage: "500mg", Frequency: "3x/day", Duration: "5 days"}},
		Notes:       "Take after meals",
		Patient:     &repo.UserRef{FirstName: "Leila", LastName: "Mansour", Email: "leila@mail.tn"},
		Doctor:      &repo.UserRef{FirstName: "Sami", LastName: "Trabelsi", Department: "Cardiology"},
		Clinic:      &repo.ClinicRef{Name: "Clinique Les Oliviers", Address: "Tunis"},
	}
}

func TestRendererProducesPDF(t *testing.T) {
	r := Renderer{Hospital: "Hospital", Currency: "TND", Now: func() time.Time { return time.Unix(0, 0) }}

	data, err := r.Prescription(prescription())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	data, err = r.Invoice(&repo.Invoice{
		InvoiceNumber: "INV-2024-0115-0001", Status: repo.InvoicePartiallyPaid,
		Items:    []repo.InvoiceItem{{Description: "Consultation", Quantity: 2, UnitPrice: 50, Total: 100}},
		Subtotal: 100, Total: 100, AmountPaid: 40,
		Payments: []repo.Payment{{Amount: 40, Method: "Cash", PaidAt: time.Unix(0, 0)}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRenderUploadsThenMarksReady(t *testing.T) {
	f := newFixture()
	rx := prescription()
	f.rx.rows[rx.ID] = rx

	require.NoError(t, f.svc.Render(context.Background(), events.RenderJob{Kind: events.KindPrescription, ID: rx.ID}))

	d := f.rx.docs[rx.ID]
	assert.Equal(t, repo.DocumentReady, d.Status)
	assert.Equal(t, s3.DocumentKey(rx.ClinicID, "prescription", rx.ID, 0), d.Key)
	body, ct, ok := f.objects.Object(d.Key)
	require.True(t, ok)
	assert.Equal(t, "application/pdf", ct)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))

	link, err := f.svc.Link(context.Background(), events.KindPrescription, rx.ID, d)
	require.NoError(t, err)
	assert.True(t, link.Ready())
	assert.Equal(t, "memory://"+d.Key, link.URL)
}

func TestRenderFailureIsRecorded(t *testing.T) {
	f := newFixture()
	f.objects.FailUploads = errors.New("bucket offline")
	inv := &repo.Invoice{ID: uuid.New(), ClinicID: uuid.New(), InvoiceNumber: "INV-2024-0115-0002"}
	f.inv.rows[inv.ID] = inv

	err := f.svc.Render(context.Background(), events.RenderJob{Kind: events.KindInvoice, ID: inv.ID})
	require.Error(t, err)

	d := f.inv.docs[inv.ID]
	assert.Equal(t, repo.DocumentFailed, d.Status)
	assert.Empty(t, d.Key)
	assert.Zero(t, f.objects.Len(), "nothing is advertised before the upload succeeds")
}

func TestRenderMissingRowIsDropped(t *testing.T) {
	f := newFixture()
	err := f.svc.Render(context.Background(), events.RenderJob{Kind: events.KindInvoice, ID: uuid.New()})
	assert.NoError(t, err)
	assert.Empty(t, f.inv.docs)
}

func TestLinkStates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := uuid.New()

	link, err := f.svc.Link(ctx, events.KindInvoice, id, repo.Document{Status: repo.DocumentPending})
	require.NoError(t, err)
	assert.False(t, link.Ready())
	assert.Empty(t, f.recorder.Events())

	link, err = f.svc.Link(ctx, events.KindInvoice, id, repo.Document{Status: repo.DocumentFailed, Error: "x"})
	require.NoError(t, err)
	assert.Equal(t, repo.DocumentPending, link.Status)
	assert.Equal(t, repo.DocumentPending, f.inv.docs[id].Status)

	got := f.recorder.Events()
	require.Len(t, got, 1)
	assert.Equal(t, "hospital.document.render", got[0].Subject)
	assert.Equal(t, events.RenderJob{Kind: events.KindInvoice, ID: id, Revision: 1}, got[0].Payload)

	_, err = f.svc.Link(ctx, events.KindInvoice, id, repo.Document{Status: repo.DocumentReady, Key: "missing"})
	assert.ErrorIs(t, err, ErrStorage)
}

func invoice() *repo.Invoice {
	return &repo.Invoice{ID: uuid.New(), ClinicID: uuid.New(), InvoiceNumber: "INV-2024-0115-0003", Total: 50}
}

func TestRenderDropsStaleJob(t *testing.T) {
	f := newFixture()
	inv := invoice()
	f.inv.rows[inv.ID] = inv
	f.inv.docs[inv.ID] = repo.Document{Status: repo.DocumentPending, Revision: 2}

	err := f.svc.Render(context.Background(), events.RenderJob{Kind: events.KindInvoice, ID: inv.ID, Revision: 1})
	require.NoError(t, err)

	assert.Zero(t, f.objects.Len())
	assert.Equal(t, repo.Document{Status: repo.DocumentPending, Revision: 2}, f.inv.docs[inv.ID])
}

func TestRenderResetWhileRendering(t *testing.T) {
	f := newFixture()
	inv := invoice()
	f.inv.rows[inv.ID] = inv
	f.inv.afterGet = func(id uuid.UUID) {
		// A payment lands after the worker read the row.
		_, _ = f.inv.docs.reset(id)
	}

	err := f.svc.Render(context.Background(), events.RenderJob{Kind: events.KindInvoice, ID: inv.ID})
	require.NoError(t, err)

	d := f.inv.docs[inv.ID]
	assert.Equal(t, repo.DocumentPending, d.Status)
	assert.Equal(t, int64(1), d.Revision)
	assert.Empty(t, d.Key)
	_, _, ok := f.objects.Object(s3.DocumentKey(inv.ClinicID, "invoice", inv.ID, 1))
	assert.False(t, ok, "the stale upload does not touch the next revision's object")
}

func TestRenderCurrentRevisionMarksReady(t *testing.T) {
	f := newFixture()
	inv := invoice()
	f.inv.rows[inv.ID] = inv
	f.inv.docs[inv.ID] = repo.Document{Status: repo.DocumentPending, Revision: 3}

	require.NoError(t, f.svc.Render(context.Background(), events.RenderJob{Kind: events.KindInvoice, ID: inv.ID, Revision: 3}))

	d := f.inv.docs[inv.ID]
	assert.Equal(t, repo.DocumentReady, d.Status)
	assert.Equal(t, int64(3), d.Revision)
}
