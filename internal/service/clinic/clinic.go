package clinic

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/internal/service/user"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type ClinicFields struct {
	Name               string
	Address            string
	Phone              string
	Email              string
	Services           []string
	ConsultationTariff float64
}

type OnboardRequest struct {
	Clinic ClinicFields
	// Either AdminID names an unassigned Admin or Admin describes a new one.
	AdminID *uuid.UUID
	Admin   user.Profile
}

type UpdateRequest struct {
	Name               *string
	Address            *string
	Phone              *string
	Email              *string
	Services           []string
	ConsultationTariff *float64
	IsActive           *bool

	// AdminID replaces the clinic admin; otherwise Admin patches the
	// current one.
	AdminID *uuid.UUID
	Admin   user.Profile
}

// Result is a clinic together with the admin an operation touched.
type Result struct {
	Clinic *repo.Clinic
	Admin  *repo.User
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	ListActive(ctx context.Context) ([]*repo.Clinic, error)
	ListAll(ctx context.Context) ([]*repo.Clinic, error)
	Get(ctx context.Context, id uuid.UUID) (*repo.Clinic, error)
	Onboard(ctx context.Context, actor *authorize.Identity, req OnboardRequest) (*Result, error)
	Update(ctx context.Context, actor *authorize.Identity, id uuid.UUID, req UpdateRequest) (*Result, error)
	Deactivate(ctx context.Context, actor *authorize.Identity, id uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type clinicService struct {
	store    Store
	accounts *user.Accounts
}

func New(store Store, accounts *user.Accounts) Service {
	return &clinicService{store: store, accounts: accounts}
}

func (s *clinicService) ListActive(ctx context.Context) ([]*repo.Clinic, error) {
	return s.store.Clinics().List(ctx, true)
}

func (s *clinicService) ListAll(ctx context.Context) ([]*repo.Clinic, error) {
	return s.store.Clinics().List(ctx, false)
}

func (s *clinicService) Get(ctx context.Context, id uuid.UUID) (*repo.Clinic, error) {
	c, err := s.store.Clinics().GetByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrClinicNotFound
		}
		return nil, fmt.Errorf("get clinic: %w", err)
	}
	return c, nil
}

func superAdmin(actor *authorize.Identity) error {
	if actor == nil {
		return authorize.ErrNoSubjectInContext
	}
	if actor.Role != authorize.RoleSuperAdmin {
		return authorize.ErrForbidden
	}
	return nil
}

func (s *clinicService) normalize(c *repo.Clinic) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Address = strings.TrimSpace(c.Address)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if c.Name == "" || c.Address == "" || c.Phone == "" || c.Email == "" {
		return ErrClinicFields
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return ErrInvalidClinicMail
	}
	p, err := s.accounts.NormalizePhone(c.Phone)
	if err != nil {
		return ErrInvalidPhone
	}
	c.Phone = p
	if c.ConsultationTariff < 0 {
		return ErrInvalidTariff
	}
	services := make([]string, 0, len(c.Services))
	for _, svc := range c.Services {
		if svc = strings.TrimSpace(svc); svc != "" {
			services = append(services, svc)
		}
	}
	c.Services = services
	return nil
}

// ---------------------------------------------------------------------------
// Onboard
// ---------------------------------------------------------------------------

func (s *clinicService) Onboard(ctx context.Context, actor *authorize.Identity, req OnboardRequest) (*Result, error) {
	if err := superAdmin(actor); err != nil {
		return nil, err
	}

	owner := actor.UserID
	c := &repo.Clinic{
		Name:               req.Clinic.Name,
		Address:            req.Clinic.Address,
		Phone:              req.Clinic.Phone,
		Email:              req.Clinic.Email,
		Services:           req.Clinic.Services,
		ConsultationTariff: req.Clinic.ConsultationTariff,
		OwnerID:            &owner,
		IsActive:           true,
	}
	if err := s.normalize(c); err != nil {
		return nil, err
	}

	// A new admin is validated before anything is written.
	var fresh *repo.User
	if req.AdminID == nil {
		if !req.Admin.Complete() {
			return nil, ErrAdminFields
		}
		u, err := s.accounts.Build(req.Admin, authorize.RoleAdmin)
		if err != nil {
			return nil, err
		}
		fresh = u
	}

	out := &Result{Clinic: c}
	err := s.store.InTx(ctx, func(tx Tx) error {
		taken, err := tx.Clinics().EmailExists(ctx, c.Email, nil)
		if err != nil {
			return fmt.Errorf("check clinic email: %w", err)
		}
		if taken {
			return ErrClinicEmailTaken
		}
		if err := tx.Clinics().Create(ctx, c); err != nil {
			if repo.IsDuplicate(err) {
				return ErrClinicEmailTaken
			}
			return fmt.Errorf("create clinic: %w", err)
		}

		if fresh == nil {
			admin, err := assignable(ctx, tx, *req.AdminID, nil)
			if err != nil {
				return err
			}
			if err := tx.Users().AssignClinic(ctx, admin.ID, &c.ID); err != nil {
				return fmt.Errorf("assign admin: %w", err)
			}
			admin.ClinicID = &c.ID
			out.Admin = admin
			return nil
		}

		taken, err = tx.Users().EmailExists(ctx, fresh.Email)
		if err != nil {
			return fmt.Errorf("check admin email: %w", err)
		}
		if taken {
			return ErrAdminEmailTaken
		}
		fresh.ClinicID = &c.ID
		if err := tx.Users().Create(ctx, fresh); err != nil {
			if repo.IsDuplicate(err) {
				return ErrAdminEmailTaken
			}
			return fmt.Errorf("create admin: %w", err)
		}
		out.Admin = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.Admin = out.Admin.Ref()
	return out, nil
}

// assignable loads an Admin that may be attached to clinic. current is the
// clinic the admin may already belong to.
func assignable(ctx context.Context, tx Tx, id uuid.UUID, current *uuid.UUID) (*repo.User, error) {
	u, err := tx.Users().GetByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	if u.Role != authorize.RoleAdmin {
		return nil, ErrNotAdmin
	}
	if u.ClinicID != nil {
		if current == nil {
			return nil, ErrAdminAssigned
		}
		if *u.ClinicID != *current {
			return nil, ErrAdminElsewhere
		}
	}
	return u, nil
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func (s *clinicService) Update(ctx context.Context, actor *authorize.Identity, id uuid.UUID, req UpdateRequest) (*Result, error) {
	if err := superAdmin(actor); err != nil {
		return nil, err
	}

	out := &Result{}
	err := s.store.InTx(ctx, func(tx Tx) error {
		c, err := tx.Clinics().GetByID(ctx, id)
		if err != nil {
			if repo.IsNotFound(err) {
				return ErrClinicNotFound
			}
			return fmt.Errorf("get clinic: %w", err)
		}

		applyClinic(c, req)
		if err := s.normalize(c); err != nil {
			return err
		}
		taken, err := tx.Clinics().EmailExists(ctx, c.Email, &c.ID)
		if err != nil {
			return fmt.Errorf("check clinic email: %w", err)
		}
		if taken {
			return ErrClinicEmailTaken
		}
		if err := tx.Clinics().Update(ctx, c); err != nil {
			if repo.IsDuplicate(err) {
				return ErrClinicEmailTaken
			}
			return fmt.Errorf("update clinic: %w", err)
		}
		out.Clinic = c

		switch {
		case req.AdminID != nil:
			out.Admin, err = s.replaceAdmin(ctx, tx, c, *req.AdminID)
		case !req.Admin.Empty() && c.Admin != nil:
			out.Admin, err = s.patchAdmin(ctx, tx, c.Admin.ID, req.Admin)
		}
		if err != nil {
			return err
		}
		if out.Admin != nil {
			c.Admin = out.Admin.Ref()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func applyClinic(c *repo.Clinic, req UpdateRequest) {
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Address != nil {
		c.Address = *req.Address
	}
	if req.Phone != nil {
		c.Phone = *req.Phone
	}
	if req.Email != nil {
		c.Email = *req.Email
	}
	if req.Services != nil {
		c.Services = req.Services
	}
	if req.ConsultationTariff != nil {
		c.ConsultationTariff = *req.ConsultationTariff
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
}

func (s *clinicService) replaceAdmin(ctx context.Context, tx Tx, c *repo.Clinic, adminID uuid.UUID) (*repo.User, error) {
	admin, err := assignable(ctx, tx, adminID, &c.ID)
	if err != nil {
		return nil, err
	}
	if c.Admin != nil && c.Admin.ID != admin.ID {
		if err := tx.Users().AssignClinic(ctx, c.Admin.ID, nil); err != nil {
			return nil, fmt.Errorf("unassign admin: %w", err)
		}
	}
	if err := tx.Users().AssignClinic(ctx, admin.ID, &c.ID); err != nil {
		return nil, fmt.Errorf("assign admin: %w", err)
	}
	admin.ClinicID = &c.ID
	return admin, nil
}

func (s *clinicService) patchAdmin(ctx context.Context, tx Tx, adminID uuid.UUID, p user.Profile) (*repo.User, error) {
	admin, err := tx.Users().GetByID(ctx, adminID)
	if err != nil {
		return nil, fmt.Errorf("get admin: %w", err)
	}

	oldEmail := admin.Email
	if err := s.accounts.Patch(admin, p); err != nil {
		return nil, err
	}
	if admin.Email != oldEmail {
		taken, err := tx.Users().EmailExists(ctx, admin.Email)
		if err != nil {
			return nil, fmt.Errorf("check admin email: %w", err)
		}
		if taken {
			return nil, ErrAdminEmailTaken
		}
	}
	if err := tx.Users().Update(ctx, admin); err != nil {
		if repo.IsDuplicate(err) {
			return nil, ErrAdminEmailTaken
		}
		return nil, fmt.Errorf("update admin: %w", err)
	}

	if p.Password != "" {
		h := s.accounts.Hasher()
		if err := h.Validate(p.Password); err != nil {
			return nil, user.ErrPasswordTooShort
		}
		hash, err := h.Hash(p.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		if err := tx.Users().SetPassword(ctx, admin.ID, hash); err != nil {
			return nil, fmt.Errorf("set admin password: %w", err)
		}
	}
	return admin, nil
}

// ---------------------------------------------------------------------------
// Deactivate
// ---------------------------------------------------------------------------

func (s *clinicService) Deactivate(ctx context.Context, actor *authorize.Identity, id uuid.UUID) error {
	if err := superAdmin(actor); err != nil {
		return err
	}
	if err := s.store.Clinics().Deactivate(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrClinicNotFound
		}
		return fmt.Errorf("deactivate clinic: %w", err)
	}
	return nil
}
