package appointment

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/imedbrahmi/hospital_backend/internal/events"
	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/internal/service/apperr"
	"github.com/imedbrahmi/hospital_backend/internal/service/scheduling"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
	"github.com/imedbrahmi/hospital_backend/pkg/crypto"
	"github.com/imedbrahmi/hospital_backend/pkg/util/phone"
)

// ---------------------------------------------------------------------------
// Dependencies
// ---------------------------------------------------------------------------

type AppointmentStore interface {
	Create(ctx context.Context, a *repo.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*repo.Appointment, error)
	List(ctx context.Context, f repo.AppointmentFilter) ([]*repo.Appointment, error)
	Update(ctx context.Context, a *repo.Appointment) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type DoctorStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*repo.User, error)
	FindDoctors(ctx context.Context, firstName, lastName, department string) ([]*repo.User, error)
}

// SlotFinder lists the free slots of a doctor; scheduling.Service is one.
type SlotFinder interface {
	AvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) (*scheduling.Availability, error)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// BookRequest carries the patient contact copy and the requested slot. The
// doctor is named either by DoctorID or by first/last name within the
// department.
type BookRequest struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	CIN       string
	DOB       string
	Gender    string
	Address   string

	AppointmentDate string
	AppointmentTime string
	Department      string

	DoctorID        *uuid.UUID
	DoctorFirstName string
	DoctorLastName  string
}

type ListQuery struct {
	Status string
	Date   string
}

type UpdateRequest struct {
	Status          *string
	HasVisited      *bool
	AppointmentDate *string
	AppointmentTime *string
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Book(ctx context.Context, actor *authorize.Identity, req BookRequest) (*repo.Appointment, error)
	ListAll(ctx context.Context, actor *authorize.Identity, q ListQuery) ([]*repo.Appointment, error)
	MyAppointments(ctx context.Context, actor *authorize.Identity) ([]*repo.Appointment, error)
	Get(ctx context.Context, actor *authorize.Identity, id uuid.UUID) (*repo.Appointment, error)
	Update(ctx context.Context, actor *authorize.Identity, id uuid.UUID, req UpdateRequest) (*repo.Appointment, error)
	Delete(ctx context.Context, actor *authorize.Identity, id uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type appointmentService struct {
	appointments AppointmentStore
	doctors      DoctorStore
	slots        SlotFinder
	cipher       *crypto.FieldCipher
	phones       *phone.Normalizer
	publisher    events.Publisher
	subjects     events.Subjects
	logger       *slog.Logger
}

func New(
	appointments AppointmentStore,
	doctors DoctorStore,
	slots SlotFinder,
	cipher *crypto.FieldCipher,
	phones *phone.Normalizer,
	publisher events.Publisher,
	subjects events.Subjects,
	logger *slog.Logger,
) Service {
	return &appointmentService{
		appointments: appointments,
		doctors:      doctors,
		slots:        slots,
		cipher:       cipher,
		phones:       phones,
		publisher:    publisher,
		subjects:     subjects,
		logger:       logger,
	}
}

// ---- Book -----------------------------------------------------------------

func (r *BookRequest) trim() {
	for _, p := range []*string{
		&r.FirstName, &r.LastName, &r.Email, &r.Phone, &r.CIN, &r.DOB, &r.Gender, &r.Address,
		&r.AppointmentDate, &r.AppointmentTime, &r.Department, &r.DoctorFirstName, &r.DoctorLastName,
	} {
		*p = strings.TrimSpace(*p)
	}
	r.Email = strings.ToLower(r.Email)
}

func (r *BookRequest) validate() error {
	for _, v := range []string{
		r.FirstName, r.LastName, r.Email, r.Phone, r.CIN, r.DOB, r.Gender, r.Address,
		r.AppointmentDate, r.AppointmentTime, r.Department,
	} {
		if v == "" {
			return ErrMissingFields
		}
	}
	if r.DoctorID == nil && r.DoctorFirstName == "" {
		return ErrMissingFields
	}

	var f apperr.Fields
	f.Length("First Name", r.FirstName, 3, 0)
	f.Length("Last Name", r.LastName, 3, 0)
	f.Email("Email", r.Email)
	f.CIN(r.CIN)
	f.Date("Date of birth", r.DOB)
	f.OneOf("Gender", r.Gender, "Male", "Female")
	f.Date("Appointment date", r.AppointmentDate)
	f.Clock("Appointment time", r.AppointmentTime)
	return f.Err()
}

// resolveDoctor finds the doctor by id or by name within the department.
func (s *appointmentService) resolveDoctor(ctx context.Context, req BookRequest) (*repo.User, error) {
	if req.DoctorID != nil {
		d, err := s.doctors.GetByID(ctx, *req.DoctorID)
		if err != nil {
			if repo.IsNotFound(err) {
				return nil, ErrDoctorNotFound
			}
			return nil, fmt.Errorf("get doctor: %w", err)
		}
		if d.Role != authorize.RoleDoctor {
			return nil, ErrDoctorNotFound
		}
		return d, nil
	}

	found, err := s.doctors.FindDoctors(ctx, req.DoctorFirstName, req.DoctorLastName, req.Department)
	if err != nil {
		return nil, fmt.Errorf("find doctors: %w", err)
	}
	switch len(found) {
	case 0:
		return nil, ErrDoctorNotFound
	case 1:
		return found[0], nil
	}
	return nil, ErrDoctorAmbiguous
}

// slotFree reports whether at is one of the free slots of the doctor on date.
func (s *appointmentService) slotFree(ctx context.Context, doctorID uuid.UUID, date, at string) (bool, error) {
	av, err := s.slots.AvailableSlots(ctx, doctorID, date)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(av.Slots, func(sl scheduling.Slot) bool { return sl.Time == at }), nil
}

func (s *appointmentService) Book(ctx context.Context, actor *authorize.Identity, req BookRequest) (*repo.Appointment, error) {
	if actor == nil {
		return nil, authorize.ErrNoSubjectInContext
	}
	if actor.Role != authorize.RolePatient {
		return nil, authorize.ErrForbidden
	}

	req.trim()
	if err := req.validate(); err != nil {
		return nil, err
	}
	tel, err := s.phones.Normalize(req.Phone)
	if err != nil {
		return nil, ErrInvalidPhone
	}

	doctor, err := s.resolveDoctor(ctx, req)
	if err != nil {
		return nil, err
	}
	if !doctor.IsActive {
		return nil, ErrDoctorInactive
	}
	if !strings.EqualFold(doctor.DoctorDepartment, req.Department) {
		return nil, ErrDepartment
	}
	if doctor.ClinicID == nil {
		return nil, ErrDoctorNoClinic
	}

	free, err := s.slotFree(ctx, doctor.ID, req.AppointmentDate, req.AppointmentTime)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, ErrSlotTaken
	}

	sealed, err := s.cipher.Seal(req.CIN)
	if err != nil {
		return nil, fmt.Errorf("seal cin: %w", err)
	}

	a := &repo.Appointment{
		PatientID:       actor.UserID,
		DoctorID:        doctor.ID,
		ClinicID:        *doctor.ClinicID,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           tel,
		CIN:             req.CIN,
		CINEncrypted:    sealed,
		DOB:             req.DOB,
		Gender:          req.Gender,
		Address:         req.Address,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		Department:      doctor.DoctorDepartment,
		Status:          repo.AppointmentPending,
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		if repo.IsDuplicate(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	a.Doctor = doctor.Ref()

	s.publish(ctx, s.subjects.AppointmentCreated(a.ID), events.AppointmentEvent{
		AppointmentID: a.ID,
		Status:        string(a.Status),
	})
	return a, nil
}

// ---- Reads ----------------------------------------------------------------

func (s *appointmentService) reveal(list ...*repo.Appointment) {
	for _, a := range list {
		if a.CINEncrypted == "" || a.CIN != "" {
			continue
		}
		plain, err := s.cipher.Open(a.CINEncrypted)
		if err != nil {
			s.logger.Warn("appointment: cannot open cin", "appointment_id", a.ID, "error", err)
			continue
		}
		a.CIN = plain
	}
}

func (s *appointmentService) ListAll(ctx context.Context, actor *authorize.Identity, q ListQuery) ([]*repo.Appointment, error) {
	scope, err := authorize.ListFilter(actor)
	if err != nil {
		return nil, err
	}
	f := repo.AppointmentFilter{
		ClinicID:  scope.ClinicID,
		DoctorID:  scope.DoctorID,
		PatientID: scope.PatientID,
		Status:    repo.AppointmentStatus(q.Status),
	}
	if q.Status != "" && !f.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if q.Date != "" {
		var v apperr.Fields
		v.Date("date", q.Date)
		if err := v.Err(); err != nil {
			return nil, err
		}
		f.Date = q.Date
	}

	list, err := s.appointments.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	s.reveal(list...)
	return list, nil
}

func (s *appointmentService) MyAppointments(ctx context.Context, actor *authorize.Identity) ([]*repo.Appointment, error) {
	if actor == nil || actor.Role != authorize.RolePatient {
		return nil, authorize.ErrForbidden
	}
	id := actor.UserID
	list, err := s.appointments.List(ctx, repo.AppointmentFilter{PatientID: &id})
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	s.reveal(list...)
	return list, nil
}

func target(a *repo.Appointment) authorize.Target {
	return authorize.Target{ClinicID: &a.ClinicID, OwnerID: &a.DoctorID, SubjectID: &a.PatientID}
}

func (s *appointmentService) load(ctx context.Context, actor *authorize.Identity, id uuid.UUID) (*repo.Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if err := authorize.Scope(actor, target(a)); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *appointmentService) Get(ctx context.Context, actor *authorize.Identity, id uuid.UUID) (*repo.Appointment, error) {
	a, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	s.reveal(a)
	return a, nil
}

// ---- Update ---------------------------------------------------------------

func (s *appointmentService) Update(ctx context.Context, actor *authorize.Identity, id uuid.UUID, req UpdateRequest) (*repo.Appointment, error) {
	a, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if actor.Role == authorize.RolePatient {
		if req.Status != nil || req.HasVisited != nil || a.Status != repo.AppointmentPending {
			return nil, ErrPatientUpdate
		}
	}

	previous := a.Status
	if req.Status != nil {
		st := repo.AppointmentStatus(strings.TrimSpace(*req.Status))
		if !st.Valid() {
			return nil, ErrInvalidStatus
		}
		a.Status = st
	}
	if req.HasVisited != nil {
		a.HasVisited = *req.HasVisited
	}

	date, at := a.AppointmentDate, a.AppointmentTime
	if req.AppointmentDate != nil {
		date = strings.TrimSpace(*req.AppointmentDate)
	}
	if req.AppointmentTime != nil {
		at = strings.TrimSpace(*req.AppointmentTime)
	}
	if date != a.AppointmentDate || at != a.AppointmentTime {
		var f apperr.Fields
		f.Date("Appointment date", date)
		f.Clock("Appointment time", at)
		if err := f.Err(); err != nil {
			return nil, err
		}
		free, err := s.slotFree(ctx, a.DoctorID, date, at)
		if err != nil {
			return nil, err
		}
		if !free {
			return nil, ErrSlotTaken
		}
		a.AppointmentDate, a.AppointmentTime = date, at
	}

	if err := s.appointments.Update(ctx, a); err != nil {
		switch {
		case repo.IsDuplicate(err):
			return nil, ErrSlotTaken
		case repo.IsNotFound(err):
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	if a.Status != previous {
		s.publish(ctx, s.subjects.AppointmentStatus(a.ID), events.AppointmentEvent{
			AppointmentID: a.ID,
			Status:        string(a.Status),
			Previous:      string(previous),
		})
	}
	s.reveal(a)
	return a, nil
}

func (s *appointmentService) Delete(ctx context.Context, actor *authorize.Identity, id uuid.UUID) error {
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	if err := s.appointments.SoftDelete(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

// publish emits an event once the write is stored. Failures are logged only.
func (s *appointmentService) publish(ctx context.Context, subject string, payload any) {
	if err := s.publisher.Publish(ctx, subject, payload); err != nil {
		s.logger.Warn("appointment: publish failed", "subject", subject, "error", err)
	}
}
