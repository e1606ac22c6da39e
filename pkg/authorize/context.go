package authorize

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNoSubjectInContext = errors.New("no subject found in context")
)

// Channel records which session cookie produced an identity.
type Channel string

const (
	ChannelStaff   Channel = "staff"
	ChannelPatient Channel = "patient"
)

// Identity is the authenticated caller, re-resolved from the database on
// every request.
type Identity struct {
	UserID     uuid.UUID
	Role       Role
	ClinicID   *uuid.UUID
	Department string
	FirstName  string
	LastName   string
	Email      string
	Channel    Channel
	SessionID  uuid.UUID
}

func (i *Identity) HasClinic() bool { return i != nil && i.ClinicID != nil && *i.ClinicID != uuid.Nil }

type ctxKeyIdentity struct{}

// WithIdentity stores the resolved identity in the context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity{}, id)
}

// IdentityFromContext returns the identity stored by the session middleware.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity{}).(*Identity)
	return id, ok && id != nil
}
