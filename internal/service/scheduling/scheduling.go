package scheduling

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/imedbrahmi/hospital_backend/config"
	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/internal/service/apperr"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
)

// ---------------------------------------------------------------------------
// Dependencies
// ---------------------------------------------------------------------------

type ScheduleStore interface {
	Create(ctx context.Context, s *repo.Schedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*repo.Schedule, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, clinicID *uuid.UUID) ([]*repo.Schedule, error)
	FindForDay(ctx context.Context, doctorID uuid.UUID, day string) (*repo.Schedule, error)
	Update(ctx context.Context, s *repo.Schedule) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type BookingStore interface {
	BookedTimes(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*repo.User, error)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateScheduleRequest struct {
	DayOfWeek    string
	Date         string
	StartTime    string
	EndTime      string
	SlotDuration int
	IsAvailable  *bool
}

type UpdateScheduleRequest struct {
	DayOfWeek    *string
	Date         *string
	StartTime    *string
	EndTime      *string
	SlotDuration *int
	IsAvailable  *bool
}

type Availability struct {
	Date      string `json:"date"`
	DayOfWeek string `json:"dayOfWeek"`
	Slots     []Slot `json:"availableSlots"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, actor *authorize.Identity, req CreateScheduleRequest) (*repo.Schedule, error)
	MySchedule(ctx context.Context, actor *authorize.Identity) ([]*repo.Schedule, error)
	DoctorSchedules(ctx context.Context, actor *authorize.Identity, doctorID uuid.UUID) ([]*repo.Schedule, error)
	AvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) (*Availability, error)
	Update(ctx context.Context, actor *authorize.Identity, id uuid.UUID, req UpdateScheduleRequest) (*repo.Schedule, error)
	Delete(ctx context.Context, actor *authorize.Identity, id uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type scheduleService struct {
	schedules ScheduleStore
	bookings  BookingStore
	users     UserStore
	cfg       config.SchedulingConfig
}

func New(schedules ScheduleStore, bookings BookingStore, users UserStore, cfg config.SchedulingConfig) Service {
	if cfg.DefaultSlotMinutes <= 0 {
		cfg.DefaultSlotMinutes = 30
	}
	if cfg.MinSlotMinutes <= 0 {
		cfg.MinSlotMinutes = 15
	}
	if cfg.MaxSlotMinutes <= 0 {
		cfg.MaxSlotMinutes = 120
	}
	return &scheduleService{schedules: schedules, bookings: bookings, users: users, cfg: cfg}
}

func (s *scheduleService) validate(sc *repo.Schedule) error {
	var f apperr.Fields
	if f.Required("dayOfWeek", sc.DayOfWeek) {
		f.OneOf("dayOfWeek", sc.DayOfWeek, Weekdays...)
	}
	if sc.Date != "" {
		f.Date("date", sc.Date)
	}
	if f.Required("startTime", sc.StartTime) {
		f.Clock("startTime", sc.StartTime)
	}
	if f.Required("endTime", sc.EndTime) {
		f.Clock("endTime", sc.EndTime)
	}
	f.Check(sc.SlotDuration >= s.cfg.MinSlotMinutes && sc.SlotDuration <= s.cfg.MaxSlotMinutes,
		fmt.Sprintf("slotDuration must be between %d and %d minutes", s.cfg.MinSlotMinutes, s.cfg.MaxSlotMinutes))
	if err := f.Err(); err != nil {
		return err
	}
	if sc.StartTime >= sc.EndTime {
		return ErrInvalidInterval
	}
	return nil
}

func (s *scheduleService) Create(ctx context.Context, actor *authorize.Identity, req CreateScheduleRequest) (*repo.Schedule, error) {
	if actor == nil || actor.Role != authorize.RoleDoctor {
		return nil, authorize.ErrForbidden
	}
	if !actor.HasClinic() {
		return nil, ErrNoClinic
	}

	sc := &repo.Schedule{
		DoctorID:     actor.UserID,
		ClinicID:     *actor.ClinicID,
		DayOfWeek:    req.DayOfWeek,
		Date:         req.Date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		SlotDuration: req.SlotDuration,
		IsAvailable:  true,
	}
	if sc.SlotDuration == 0 {
		sc.SlotDuration = s.cfg.DefaultSlotMinutes
	}
	if req.IsAvailable != nil {
		sc.IsAvailable = *req.IsAvailable
	}
	if err := s.validate(sc); err != nil {
		return nil, err
	}

	if err := s.schedules.Create(ctx, sc); err != nil {
		if repo.IsDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("create schedule: %w", err)
	}
	return sc, nil
}

func (s *scheduleService) MySchedule(ctx context.Context, actor *authorize.Identity) ([]*repo.Schedule, error) {
	if actor == nil || actor.Role != authorize.RoleDoctor {
		return nil, authorize.ErrForbidden
	}
	return s.schedules.ListByDoctor(ctx, actor.UserID, nil)
}

func (s *scheduleService) DoctorSchedules(ctx context.Context, actor *authorize.Identity, doctorID uuid.UUID) ([]*repo.Schedule, error) {
	doctor, err := s.users.GetByID(ctx, doctorID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	if doctor.Role != authorize.RoleDoctor {
		return nil, ErrDoctorNotFound
	}
	if err := authorize.Scope(actor, authorize.Target{ClinicID: doctor.ClinicID, OwnerID: &doctor.ID}); err != nil {
		return nil, err
	}

	// Tenant staff only see the templates of their own clinic.
	var clinic *uuid.UUID
	if actor.Role == authorize.RoleAdmin || actor.Role == authorize.RoleReceptionist {
		clinic = actor.ClinicID
	}
	return s.schedules.ListByDoctor(ctx, doctorID, clinic)
}

func (s *scheduleService) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) (*Availability, error) {
	if date == "" {
		return nil, ErrInvalidDate
	}
	day, err := DayOfWeek(date)
	if err != nil {
		return nil, err
	}

	out := &Availability{Date: date, DayOfWeek: day, Slots: []Slot{}}

	sched, err := s.schedules.FindForDay(ctx, doctorID, day)
	if err != nil {
		if repo.IsNotFound(err) {
			return out, nil
		}
		return nil, fmt.Errorf("find schedule: %w", err)
	}
	if !sched.IsAvailable {
		return out, nil
	}

	booked, err := s.bookings.BookedTimes(ctx, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("booked times: %w", err)
	}
	out.Slots = FreeSlots(date, sched, booked)
	return out, nil
}

func (s *scheduleService) load(ctx context.Context, actor *authorize.Identity, id uuid.UUID) (*repo.Schedule, error) {
	sc, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	if err := authorize.Scope(actor, authorize.Target{ClinicID: &sc.ClinicID, OwnerID: &sc.DoctorID}); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *scheduleService) Update(ctx context.Context, actor *authorize.Identity, id uuid.UUID, req UpdateScheduleRequest) (*repo.Schedule, error) {
	sc, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.DayOfWeek != nil {
		sc.DayOfWeek = *req.DayOfWeek
	}
	if req.Date != nil {
		sc.Date = *req.Date
	}
	if req.StartTime != nil {
		sc.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		sc.EndTime = *req.EndTime
	}
	if req.SlotDuration != nil {
		sc.SlotDuration = *req.SlotDuration
	}
	if req.IsAvailable != nil {
		sc.IsAvailable = *req.IsAvailable
	}
	if err := s.validate(sc); err != nil {
		return nil, err
	}

	if err := s.schedules.Update(ctx, sc); err != nil {
		switch {
		case repo.IsDuplicate(err):
			return nil, ErrDuplicate
		case repo.IsNotFound(err):
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update schedule: %w", err)
	}
	return sc, nil
}

func (s *scheduleService) Delete(ctx context.Context, actor *authorize.Identity, id uuid.UUID) error {
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	if err := s.schedules.SoftDelete(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}
