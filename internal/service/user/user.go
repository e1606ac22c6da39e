package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/internal/service/apperr"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
	"github.com/imedbrahmi/hospital_backend/pkg/s3"
)

// ---------------------------------------------------------------------------
// Dependencies
// ---------------------------------------------------------------------------

type UserStore interface {
	Create(ctx context.Context, u *repo.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*repo.User, error)
	GetByEmail(ctx context.Context, email string) (*repo.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, f repo.UserFilter) ([]*repo.User, error)
	ListDoctorsByClinicName(ctx context.Context, name string) ([]*repo.User, error)
	ListUnassignedAdmins(ctx context.Context) ([]*repo.User, error)
	Update(ctx context.Context, u *repo.User) error
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
	PatientSeen(ctx context.Context, patientID uuid.UUID, clinicID, doctorID *uuid.UUID) (bool, error)
}

type ClinicStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*repo.Clinic, error)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Upload is an image sent with a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

var imageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

type StaffRequest struct {
	Profile
	ClinicID *uuid.UUID
}

type DoctorRequest struct {
	Profile
	ClinicID   *uuid.UUID
	Department string
	Avatar     *Upload
}

type UpdateDoctorRequest struct {
	Profile
	Department string
	IsActive   *bool
	Avatar     *Upload
}

type UpdatePatientRequest struct {
	Profile
	IsActive *bool
}

type DoctorQuery struct {
	Search     string
	Department string
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	AddAdmin(ctx context.Context, actor *authorize.Identity, req StaffRequest) (*repo.User, error)
	AddReceptionist(ctx context.Context, actor *authorize.Identity, req StaffRequest) (*repo.User, error)
	AddDoctor(ctx context.Context, actor *authorize.Identity, req DoctorRequest) (*repo.User, error)
	UpdateDoctor(ctx context.Context, actor *authorize.Identity, id uuid.UUID, req UpdateDoctorRequest) (*repo.User, error)
	DeleteDoctor(ctx context.Context, actor *authorize.Identity, id uuid.UUID) error
	ListDoctors(ctx context.Context, actor *authorize.Identity, q DoctorQuery) ([]*repo.User, error)
	DoctorsByClinic(ctx context.Context, clinicName string) ([]*repo.User, error)

	ListPatients(ctx context.Context, actor *authorize.Identity, search string) ([]*repo.User, error)
	GetPatient(ctx context.Context, actor *authorize.Identity, id uuid.UUID) (*repo.User, error)
	UpdatePatient(ctx context.Context, actor *authorize.Identity, id uuid.UUID, req UpdatePatientRequest) (*repo.User, error)
	DeletePatient(ctx context.Context, actor *authorize.Identity, id uuid.UUID) error

	UnassignedAdmins(ctx context.Context) ([]*repo.User, error)
	Get(ctx context.Context, id uuid.UUID) (*repo.User, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type UserService struct {
	users    UserStore
	clinics  ClinicStore
	objects  s3.ObjectStore
	accounts *Accounts
	logger   *slog.Logger
	now      func() time.Time
}

func New(users UserStore, clinics ClinicStore, objects s3.ObjectStore, accounts *Accounts, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	if objects == nil {
		objects = s3.Disabled{}
	}
	return &UserService{
		users:    users,
		clinics:  clinics,
		objects:  objects,
		accounts: accounts,
		logger:   logger,
		now:      time.Now,
	}
}

// ---------------------------------------------------------------------------
// Staff accounts
// ---------------------------------------------------------------------------

func (s *UserService) AddAdmin(ctx context.Context, actor *authorize.Identity, req StaffRequest) (*repo.User, error) {
	if actor == nil || actor.Role != authorize.RoleSuperAdmin {
		return nil, authorize.ErrForbidden
	}
	if req.ClinicID != nil {
		if err := s.activeClinic(ctx, *req.ClinicID); err != nil {
			return nil, err
		}
	}
	return s.create(ctx, req.Profile, authorize.RoleAdmin, req.ClinicID, nil)
}

func (s *UserService) AddReceptionist(ctx context.Context, actor *authorize.Identity, req StaffRequest) (*repo.User, error) {
	clinic, err := s.targetClinic(ctx, actor, req.ClinicID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, req.Profile, authorize.RoleReceptionist, &clinic, nil)
}

func (s *UserService) AddDoctor(ctx context.Context, actor *authorize.Identity, req DoctorRequest) (*repo.User, error) {
	clinic, err := s.targetClinic(ctx, actor, req.ClinicID)
	if err != nil {
		return nil, err
	}
	req.Department = strings.TrimSpace(req.Department)
	if req.Department == "" {
		return nil, ErrDepartment
	}

	u, err := s.create(ctx, req.Profile, authorize.RoleDoctor, &clinic, func(u *repo.User) error {
		u.DoctorDepartment = req.Department
		if req.Avatar == nil {
			return nil
		}
		key, err := s.uploadAvatar(ctx, &clinic, req.Avatar)
		if err != nil {
			return err
		}
		u.AvatarKey = key
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.presign(ctx, u)
	return u, nil
}

// targetClinic resolves the clinic a new clinic-bound account joins. Admins
// always use their own clinic; SuperAdmin must name one.
func (s *UserService) targetClinic(ctx context.Context, actor *authorize.Identity, requested *uuid.UUID) (uuid.UUID, error) {
	if actor == nil {
		return uuid.Nil, authorize.ErrNoSubjectInContext
	}
	var clinic uuid.UUID
	switch actor.Role {
	case authorize.RoleSuperAdmin:
		if requested == nil || *requested == uuid.Nil {
			return uuid.Nil, ErrClinicRequired
		}
		clinic = *requested
	case authorize.RoleAdmin:
		if !actor.HasClinic() {
			return uuid.Nil, ErrNoClinic
		}
		clinic = *actor.ClinicID
	default:
		return uuid.Nil, authorize.ErrForbidden
	}
	if err := s.activeClinic(ctx, clinic); err != nil {
		return uuid.Nil, err
	}
	return clinic, nil
}

func (s *UserService) activeClinic(ctx context.Context, id uuid.UUID) error {
	c, err := s.clinics.GetByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return ErrClinicNotFound
		}
		return fmt.Errorf("get clinic: %w", err)
	}
	if !c.IsActive {
		return ErrClinicInactive
	}
	return nil
}

// create builds, checks and stores a new account. decorate runs after the
// duplicate check and before the insert.
func (s *UserService) create(ctx context.Context, p Profile, role authorize.Role, clinic *uuid.UUID, decorate func(*repo.User) error) (*repo.User, error) {
	u, err := s.accounts.Build(p, role)
	if err != nil {
		return nil, err
	}
	u.ClinicID = clinic

	if err := s.checkEmailFree(ctx, u.Email); err != nil {
		return nil, err
	}
	if decorate != nil {
		if err := decorate(u); err != nil {
			return nil, err
		}
	}

	if err := s.users.Create(ctx, u); err != nil {
		s.discardAvatar(ctx, u.AvatarKey)
		if repo.IsDuplicate(err) {
			return nil, s.duplicate(ctx, u.Email)
		}
		return nil, fmt.Errorf("create %s: %w", strings.ToLower(string(role)), err)
	}
	return u, nil
}

func (s *UserService) checkEmailFree(ctx context.Context, email string) error {
	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		return s.duplicate(ctx, email)
	}
	return nil
}

// emailChange checks a new address for an existing account.
func (s *UserService) emailChange(ctx context.Context, email string) error {
	err := s.checkEmailFree(ctx, email)
	if errors.Is(err, apperr.ErrValidation) {
		return ErrEmailTaken
	}
	return err
}

func (s *UserService) duplicate(ctx context.Context, email string) error {
	if existing, err := s.users.GetByEmail(ctx, email); err == nil {
		return alreadyExists(string(existing.Role))
	}
	return alreadyExists("")
}

// ---------------------------------------------------------------------------
// Doctors
// ---------------------------------------------------------------------------

func (s *UserService) loadDoctor(ctx context.Context, actor *authorize.Identity, id uuid.UUID) (*repo.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	if u.Role != authorize.RoleDoctor {
		return nil, ErrDoctorNotFound
	}
	if err := authorize.Scope(actor, authorize.Target{ClinicID: u.ClinicID}); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) UpdateDoctor(ctx context.Context, actor *authorize.Identity, id uuid.UUID, req UpdateDoctorRequest) (*repo.User, error) {
	u, err := s.loadDoctor(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	oldEmail := u.Email
	if err := s.accounts.Patch(u, req.Profile); err != nil {
		return nil, err
	}
	if u.Email != oldEmail {
		if err := s.emailChange(ctx, u.Email); err != nil {
			return nil, err
		}
	}
	if d := strings.TrimSpace(req.Department); d != "" {
		u.DoctorDepartment = d
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	oldAvatar := u.AvatarKey
	if req.Avatar != nil {
		key, err := s.uploadAvatar(ctx, u.ClinicID, req.Avatar)
		if err != nil {
			return nil, err
		}
		u.AvatarKey = key
	}

	if err := s.users.Update(ctx, u); err != nil {
		if u.AvatarKey != oldAvatar {
			s.discardAvatar(ctx, u.AvatarKey)
		}
		if repo.IsDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("update doctor: %w", err)
	}
	if u.AvatarKey != oldAvatar {
		s.discardAvatar(ctx, oldAvatar)
	}
	s.presign(ctx, u)
	return u, nil
}

func (s *UserService) DeleteDoctor(ctx context.Context, actor *authorize.Identity, id uuid.UUID) error {
	if _, err := s.loadDoctor(ctx, actor, id); err != nil {
		return err
	}
	if err := s.users.SoftDelete(ctx, id, s.now()); err != nil {
		if repo.IsNotFound(err) {
			return ErrDoctorNotFound
		}
		return fmt.Errorf("delete doctor: %w", err)
	}
	return nil
}

func (s *UserService) ListDoctors(ctx context.Context, actor *authorize.Identity, q DoctorQuery) ([]*repo.User, error) {
	if actor == nil {
		return nil, authorize.ErrNoSubjectInContext
	}
	f := repo.UserFilter{
		Role:       authorize.RoleDoctor,
		Department: strings.TrimSpace(q.Department),
		Search:     strings.TrimSpace(q.Search),
		ActiveOnly: true,
	}
	switch actor.Role {
	case authorize.RoleSuperAdmin:
	case authorize.RoleAdmin, authorize.RoleReceptionist:
		if !actor.HasClinic() {
			return nil, ErrNoClinic
		}
		f.ClinicID = actor.ClinicID
	case authorize.RoleDoctor:
		// Doctors see their colleagues.
		f.ClinicID = actor.ClinicID
	default:
		return nil, authorize.ErrForbidden
	}

	doctors, err := s.users.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	for _, d := range doctors {
		s.presign(ctx, d)
	}
	return doctors, nil
}

func (s *UserService) DoctorsByClinic(ctx context.Context, clinicName string) ([]*repo.User, error) {
	clinicName = strings.TrimSpace(clinicName)
	if clinicName == "" {
		return nil, ErrClinicRequired
	}
	doctors, err := s.users.ListDoctorsByClinicName(ctx, clinicName)
	if err != nil {
		return nil, fmt.Errorf("list doctors by clinic: %w", err)
	}
	for _, d := range doctors {
		s.presign(ctx, d)
	}
	return doctors, nil
}

// ---------------------------------------------------------------------------
// Patients
// ---------------------------------------------------------------------------

func (s *UserService) ListPatients(ctx context.Context, actor *authorize.Identity, search string) ([]*repo.User, error) {
	scope, err := authorize.ListFilter(actor)
	if err != nil {
		return nil, err
	}
	if actor.Role == authorize.RolePatient {
		return nil, authorize.ErrForbidden
	}

	patients, err := s.users.List(ctx, repo.UserFilter{
		Role:         authorize.RolePatient,
		SeenInClinic: scope.ClinicID,
		SeenByDoctor: scope.DoctorID,
		Search:       strings.TrimSpace(search),
	})
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	if err := s.accounts.RevealAll(patients); err != nil {
		s.logger.WarnContext(ctx, "failed to decrypt patient cin", "error", err)
	}
	return patients, nil
}

// loadPatient applies the care relation: clinic staff reach patients who
// booked in their clinic, doctors patients who booked with them.
func (s *UserService) loadPatient(ctx context.Context, actor *authorize.Identity, id uuid.UUID) (*repo.User, error) {
	scope, err := authorize.ListFilter(actor)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	if u.Role != authorize.RolePatient {
		return nil, ErrPatientNotFound
	}

	switch {
	case scope.PatientID != nil:
		if *scope.PatientID != u.ID {
			return nil, authorize.ErrNotOwner
		}
	case scope.ClinicID != nil || scope.DoctorID != nil:
		seen, err := s.users.PatientSeen(ctx, u.ID, scope.ClinicID, scope.DoctorID)
		if err != nil {
			return nil, fmt.Errorf("check patient relation: %w", err)
		}
		if !seen {
			return nil, ErrNotYourPatient
		}
	}

	if err := s.accounts.Reveal(u); err != nil {
		s.logger.WarnContext(ctx, "failed to decrypt patient cin", "user_id", u.ID, "error", err)
	}
	return u, nil
}

func (s *UserService) GetPatient(ctx context.Context, actor *authorize.Identity, id uuid.UUID) (*repo.User, error) {
	return s.loadPatient(ctx, actor, id)
}

func (s *UserService) UpdatePatient(ctx context.Context, actor *authorize.Identity, id uuid.UUID, req UpdatePatientRequest) (*repo.User, error) {
	u, err := s.loadPatient(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	oldEmail := u.Email
	if err := s.accounts.Patch(u, req.Profile); err != nil {
		return nil, err
	}
	if u.Email != oldEmail {
		if err := s.emailChange(ctx, u.Email); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	if err := s.users.Update(ctx, u); err != nil {
		if repo.IsDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return u, nil
}

func (s *UserService) DeletePatient(ctx context.Context, actor *authorize.Identity, id uuid.UUID) error {
	if actor != nil && actor.Role == authorize.RoleDoctor {
		return authorize.ErrForbidden
	}
	if _, err := s.loadPatient(ctx, actor, id); err != nil {
		return err
	}
	if err := s.users.SoftDelete(ctx, id, s.now()); err != nil {
		if repo.IsNotFound(err) {
			return ErrPatientNotFound
		}
		return fmt.Errorf("delete patient: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Lookups
// ---------------------------------------------------------------------------

func (s *UserService) UnassignedAdmins(ctx context.Context) ([]*repo.User, error) {
	admins, err := s.users.ListUnassignedAdmins(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unassigned admins: %w", err)
	}
	return admins, nil
}

// Get returns a live user with the CIN revealed and the avatar presigned.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*repo.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.accounts.Reveal(u); err != nil {
		s.logger.WarnContext(ctx, "failed to decrypt cin", "user_id", u.ID, "error", err)
	}
	s.presign(ctx, u)
	return u, nil
}

// ---------------------------------------------------------------------------
// Avatars
// ---------------------------------------------------------------------------

func (s *UserService) uploadAvatar(ctx context.Context, clinic *uuid.UUID, up *Upload) (string, error) {
	ext, ok := imageTypes[strings.ToLower(up.ContentType)]
	if !ok || up.Body == nil {
		return "", ErrInvalidImage
	}
	if e := strings.ToLower(filepath.Ext(up.Filename)); e == ".jpeg" || e == ".jpg" || e == ".png" || e == ".webp" {
		ext = e
	}

	key := s3.AvatarKey(clinic, ext)
	if err := s.objects.Upload(ctx, key, up.ContentType, up.Body, up.Size); err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	return key, nil
}

func (s *UserService) discardAvatar(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.objects.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete avatar", "key", key, "error", err)
	}
}

func (s *UserService) presign(ctx context.Context, u *repo.User) {
	if u == nil || u.AvatarKey == "" {
		return
	}
	url, err := s.objects.PresignDownload(ctx, u.AvatarKey)
	if err != nil {
		s.logger.DebugContext(ctx, "avatar url unavailable", "user_id", u.ID, "error", err)
		return
	}
	u.AvatarURL = url
}
