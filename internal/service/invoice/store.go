package invoice

import (
	"context"

	"github.com/google/uuid"

	"github.com/imedbrahmi/hospital_backend/internal/repo"
)

type InvoiceStore interface {
	NextNumber(ctx context.Context) (int64, error)
	Create(ctx context.Context, inv *repo.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*repo.Invoice, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*repo.Invoice, error)
	List(ctx context.Context, f repo.InvoiceFilter) ([]*repo.Invoice, error)
	AddPayment(ctx context.Context, invoiceID uuid.UUID, p *repo.Payment) error
	SetPaymentState(ctx context.Context, id uuid.UUID, amountPaid float64, status repo.InvoiceStatus) error
	SetDocument(ctx context.Context, id uuid.UUID, d repo.Document) error
	ResetDocument(ctx context.Context, id uuid.UUID) (int64, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*repo.User, error)
}

type Store interface {
	Invoices() InvoiceStore
	InTx(ctx context.Context, fn func(tx InvoiceStore) error) error
}

type repoStore struct {
	c *repo.Client
}

func NewStore(c *repo.Client) Store { return repoStore{c: c} }

func (s repoStore) Invoices() InvoiceStore { return s.c.Invoices }

func (s repoStore) InTx(ctx context.Context, fn func(tx InvoiceStore) error) error {
	return s.c.WithTx(ctx, func(tx *repo.Client) error {
		return fn(tx.Invoices)
	})
}
