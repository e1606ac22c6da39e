package clinic

import (
	"context"

	"github.com/google/uuid"

	"github.com/imedbrahmi/hospital_backend/internal/repo"
)

type ClinicStore interface {
	Create(ctx context.Context, c *repo.Clinic) error
	GetByID(ctx context.Context, id uuid.UUID) (*repo.Clinic, error)
	List(ctx context.Context, activeOnly bool) ([]*repo.Clinic, error)
	EmailExists(ctx context.Context, email string, except *uuid.UUID) (bool, error)
	Update(ctx context.Context, c *repo.Clinic) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type UserStore interface {
	Create(ctx context.Context, u *repo.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*repo.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, u *repo.User) error
	AssignClinic(ctx context.Context, userID uuid.UUID, clinicID *uuid.UUID) error
	SetPassword(ctx context.Context, userID uuid.UUID, hash string) error
}

// Tx is the unit of work onboarding and updates run in.
type Tx interface {
	Clinics() ClinicStore
	Users() UserStore
}

type Store interface {
	Tx
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

type repoStore struct {
	c *repo.Client
}

// NewStore adapts the repository client.
func NewStore(c *repo.Client) Store { return repoStore{c: c} }

func (s repoStore) Clinics() ClinicStore { return s.c.Clinics }
func (s repoStore) Users() UserStore     { return s.c.Users }

func (s repoStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return s.c.WithTx(ctx, func(tx *repo.Client) error {
		return fn(repoStore{c: tx})
	})
}
