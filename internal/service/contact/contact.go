package contact

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/imedbrahmi/hospital_backend/internal/events"
	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/internal/service/apperr"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
	"github.com/imedbrahmi/hospital_backend/pkg/util/phone"
)

// ---------------------------------------------------------------------------
// Dependencies
// ---------------------------------------------------------------------------

type MessageStore interface {
	Create(ctx context.Context, m *repo.ContactMessage) error
	List(ctx context.Context) ([]*repo.ContactMessage, error)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type SendRequest struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Message   string
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Send(ctx context.Context, req SendRequest) (*repo.ContactMessage, error)
	List(ctx context.Context, actor *authorize.Identity) ([]*repo.ContactMessage, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type contactService struct {
	messages  MessageStore
	phones    *phone.Normalizer
	publisher events.Publisher
	subjects  events.Subjects
	logger    *slog.Logger
}

func New(messages MessageStore, phones *phone.Normalizer, publisher events.Publisher, subjects events.Subjects, logger *slog.Logger) Service {
	return &contactService{
		messages:  messages,
		phones:    phones,
		publisher: publisher,
		subjects:  subjects,
		logger:    logger,
	}
}

func (s *contactService) Send(ctx context.Context, req SendRequest) (*repo.ContactMessage, error) {
	m := &repo.ContactMessage{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     strings.TrimSpace(req.Phone),
		Message:   strings.TrimSpace(req.Message),
	}
	if m.FirstName == "" || m.LastName == "" || m.Email == "" || m.Phone == "" || m.Message == "" {
		return nil, ErrMissingFields
	}

	var f apperr.Fields
	f.Length("First Name", m.FirstName, 3, 0)
	f.Length("Last Name", m.LastName, 3, 0)
	f.Email("Email", m.Email)
	f.Length("Message", m.Message, 10, 1000)
	if err := f.Err(); err != nil {
		return nil, err
	}
	e164, err := s.phones.Normalize(m.Phone)
	if err != nil {
		return nil, apperr.Validation("Phone must be a valid phone number")
	}
	m.Phone = e164

	if err := s.messages.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	if err := s.publisher.Publish(ctx, s.subjects.MessageReceived(), events.MessageEvent{MessageID: m.ID}); err != nil {
		s.logger.Warn("contact: publish failed", "message_id", m.ID, "error", err)
	}
	return m, nil
}

func (s *contactService) List(ctx context.Context, actor *authorize.Identity) ([]*repo.ContactMessage, error) {
	if actor == nil {
		return nil, authorize.ErrNoSubjectInContext
	}
	if actor.Role != authorize.RoleSuperAdmin && actor.Role != authorize.RoleAdmin {
		return nil, authorize.ErrForbidden
	}
	return s.messages.List(ctx)
}
