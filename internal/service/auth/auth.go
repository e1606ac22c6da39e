package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/internal/service/user"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
	pasetotoken "github.com/imedbrahmi/hospital_backend/pkg/paseto"
)

// ---------------------------------------------------------------------------
// Dependencies
// ---------------------------------------------------------------------------

type UserStore interface {
	Create(ctx context.Context, u *repo.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*repo.User, error)
	GetByEmail(ctx context.Context, email string) (*repo.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type TokenIssuer interface {
	Issue(userID, sessionID uuid.UUID) (string, *pasetotoken.Claims, error)
	TTL() time.Duration
}

// SessionStore is satisfied by *session.Store.
type SessionStore interface {
	Create(ctx context.Context, sessionID, userID uuid.UUID, ttl time.Duration) error
	Revoke(ctx context.Context, sessionID uuid.UUID) error
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type RegisterRequest struct {
	user.Profile
	ConfirmPassword string
}

type LoginRequest struct {
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
}

// DashboardRole is the login role the staff dashboard sends for every
// staff account.
const DashboardRole = "Admin"

// Session is a freshly issued login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Channel   authorize.Channel
	User      *repo.User
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	RegisterPatient(ctx context.Context, req RegisterRequest) (*Session, error)
	Login(ctx context.Context, req LoginRequest) (*Session, error)
	Logout(ctx context.Context, actor *authorize.Identity) error
	Me(ctx context.Context, actor *authorize.Identity) (*repo.User, error)
	Lookup(ctx context.Context, userID uuid.UUID) (*authorize.Identity, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type authService struct {
	users    UserStore
	accounts *user.Accounts
	tokens   TokenIssuer
	sessions SessionStore
	logger   *slog.Logger
}

func New(users UserStore, accounts *user.Accounts, tokens TokenIssuer, sessions SessionStore, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{users: users, accounts: accounts, tokens: tokens, sessions: sessions, logger: logger}
}

// ChannelFor returns the cookie a user of role signs in with.
func ChannelFor(role authorize.Role) authorize.Channel {
	if role == authorize.RolePatient {
		return authorize.ChannelPatient
	}
	return authorize.ChannelStaff
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func (s *authService) RegisterPatient(ctx context.Context, req RegisterRequest) (*Session, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	u, err := s.accounts.Build(req.Profile, authorize.RolePatient)
	if err != nil {
		return nil, err
	}

	taken, err := s.users.EmailExists(ctx, u.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrUserExists
	}

	if err := s.users.Create(ctx, u); err != nil {
		if repo.IsDuplicate(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create patient: %w", err)
	}

	return s.createSession(ctx, u)
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func (s *authService) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" || req.Role == "" {
		return nil, ErrMissingFields
	}
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := s.accounts.Hasher().Verify(u.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	if req.Role == DashboardRole {
		if !u.Role.IsStaff() {
			return nil, ErrRoleMismatch
		}
	} else if authorize.Role(req.Role) != u.Role {
		return nil, ErrRoleMismatch
	}

	return s.createSession(ctx, u)
}

// ---------------------------------------------------------------------------
// Logout / Me
// ---------------------------------------------------------------------------

func (s *authService) Logout(ctx context.Context, actor *authorize.Identity) error {
	if actor == nil {
		return authorize.ErrNoSubjectInContext
	}
	if actor.SessionID == uuid.Nil {
		return nil
	}
	return s.sessions.Revoke(ctx, actor.SessionID)
}

func (s *authService) Me(ctx context.Context, actor *authorize.Identity) (*repo.User, error) {
	if actor == nil {
		return nil, authorize.ErrNoSubjectInContext
	}
	u, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.accounts.Reveal(u); err != nil {
		s.logger.WarnContext(ctx, "failed to decrypt cin", "user_id", u.ID, "error", err)
	}
	return u, nil
}

// Lookup re-reads the caller on every request so role and clinic changes
// apply immediately. Deleted or disabled users resolve to nil.
func (s *authService) Lookup(ctx context.Context, userID uuid.UUID) (*authorize.Identity, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !u.IsActive || !u.Role.Valid() {
		return nil, nil
	}
	return &authorize.Identity{
		UserID:     u.ID,
		Role:       u.Role,
		ClinicID:   u.ClinicID,
		Department: u.DoctorDepartment,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
	}, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *authService) createSession(ctx context.Context, u *repo.User) (*Session, error) {
	sessionID := uuid.Must(uuid.NewV7())

	if err := s.sessions.Create(ctx, sessionID, u.ID, s.tokens.TTL()); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	token, claims, err := s.tokens.Issue(u.ID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "session created", "user_id", u.ID, "role", u.Role)
	return &Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt,
		Channel:   ChannelFor(u.Role),
		User:      u,
	}, nil
}
