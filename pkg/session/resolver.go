package session

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
	pasetotoken "github.com/imedbrahmi/hospital_backend/pkg/paseto"
)

// IdentityLookup loads the current identity of a user. It returns
// (nil, nil) when the user no longer exists or is disabled.
type IdentityLookup func(ctx context.Context, userID uuid.UUID) (*authorize.Identity, error)

// Verifier is the subset of the token manager the resolver needs.
type Verifier interface {
	Verify(token string) (*pasetotoken.Claims, error)
}

type Resolver struct {
	tokens Verifier
	store  *Store
	lookup IdentityLookup
	logger *slog.Logger
}

func NewResolver(tokens Verifier, store *Store, lookup IdentityLookup, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{tokens: tokens, store: store, lookup: lookup, logger: logger}
}

// Resolve verifies both cookies independently and selects the identity for
// cat. Bad tokens are discarded silently; only infrastructure failures are
// returned as plain errors. Authentication failures are *AuthError.
func (r *Resolver) Resolve(ctx context.Context, cat Category, staffToken, patientToken string) (*authorize.Identity, error) {
	c := Candidates{AnyCookie: staffToken != "" || patientToken != ""}

	var err error
	if c.Staff, err = r.verify(ctx, staffToken, authorize.ChannelStaff); err != nil {
		return nil, err
	}
	if c.Patient, err = r.verify(ctx, patientToken, authorize.ChannelPatient); err != nil {
		return nil, err
	}

	return Select(cat, c)
}

func (r *Resolver) verify(ctx context.Context, token string, ch authorize.Channel) (*authorize.Identity, error) {
	if token == "" {
		return nil, nil
	}

	claims, err := r.tokens.Verify(token)
	if err != nil {
		if pasetotoken.IsInvalidToken(err) {
			r.logger.DebugContext(ctx, "session token rejected", "channel", ch, "error", err)
			return nil, nil
		}
		return nil, err
	}

	active, err := r.store.Active(ctx, claims.SessionID, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !active {
		r.logger.DebugContext(ctx, "session revoked or expired", "channel", ch, "session_id", claims.SessionID)
		return nil, nil
	}

	id, err := r.lookup(ctx, claims.UserID)
	if err != nil || id == nil {
		return nil, err
	}

	// A cookie only vouches for users of its own kind.
	switch {
	case ch == authorize.ChannelStaff && !id.Role.IsStaff(),
		ch == authorize.ChannelPatient && id.Role != authorize.RolePatient:
		return nil, nil
	}

	out := *id
	out.Channel = ch
	out.SessionID = claims.SessionID
	return &out, nil
}
