package repo

import (
	"context"

	"github.com/google/uuid"
)

type ScheduleRepo struct {
	db DBTX
}

const scheduleSelect = `
	SELECT s.id, s.doctor_id, s.clinic_id, s.day_of_week, coalesce(to_char(s.date, 'YYYY-MM-DD'), ''),
		s.start_time, s.end_time, s.slot_duration, s.is_available, s.created_at, s.updated_at,
		d.first_name, d.last_name, d.email, d.doctor_department
	FROM schedules s
	JOIN users d ON d.id = s.doctor_id`

func scanSchedule(row scanner) (*Schedule, error) {
	var s Schedule
	d := &UserRef{}
	err := row.Scan(&s.ID, &s.DoctorID, &s.ClinicID, &s.DayOfWeek, &s.Date,
		&s.StartTime, &s.EndTime, &s.SlotDuration, &s.IsAvailable, &s.CreatedAt, &s.UpdatedAt,
		&d.FirstName, &d.LastName, &d.Email, &d.Department)
	if err != nil {
		return nil, err
	}
	d.ID = s.DoctorID
	s.Doctor = d
	return &s, nil
}

func (r *ScheduleRepo) Create(ctx context.Context, s *Schedule) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	date, err := dateParam(s.Date)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO schedules (id, doctor_id, clinic_id, day_of_week, date, start_time, end_time, slot_duration, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		s.ID, s.DoctorID, s.ClinicID, s.DayOfWeek, date, s.StartTime, s.EndTime, s.SlotDuration, s.IsAvailable,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	return translate("create schedule", err)
}

func (r *ScheduleRepo) GetByID(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	s, err := scanSchedule(r.db.QueryRow(ctx, scheduleSelect+` WHERE s.id = $1 AND s.deleted_at IS NULL`, id))
	return s, translate("get schedule", err)
}

// ListByDoctor returns the doctor's live templates in weekday order,
// optionally restricted to one clinic.
func (r *ScheduleRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID, clinicID *uuid.UUID) ([]*Schedule, error) {
	w := &where{}
	w.raw("s.deleted_at IS NULL")
	w.add("s.doctor_id = ?", doctorID)
	w.uuid("s.clinic_id", clinicID)

	rows, err := r.db.Query(ctx, scheduleSelect+w.String()+`
		ORDER BY array_position(ARRAY['Monday','Tuesday','Wednesday','Thursday','Friday','Saturday','Sunday'], s.day_of_week),
			s.start_time`, w.args...)
	if err != nil {
		return nil, translate("list schedules", err)
	}
	defer rows.Close()

	out := []*Schedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, translate("list schedules", err)
		}
		out = append(out, s)
	}
	return out, translate("list schedules", rows.Err())
}

// FindForDay returns the earliest created live template of the doctor for
// the weekday, across clinics.
func (r *ScheduleRepo) FindForDay(ctx context.Context, doctorID uuid.UUID, day string) (*Schedule, error) {
	s, err := scanSchedule(r.db.QueryRow(ctx, scheduleSelect+`
		WHERE s.doctor_id = $1 AND s.day_of_week = $2 AND s.deleted_at IS NULL
		ORDER BY s.created_at, s.id
		LIMIT 1`, doctorID, day))
	return s, translate("find schedule for day", err)
}

func (r *ScheduleRepo) Update(ctx context.Context, s *Schedule) error {
	date, err := dateParam(s.Date)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, `
		UPDATE schedules SET day_of_week = $2, date = $3, start_time = $4, end_time = $5,
			slot_duration = $6, is_available = $7, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`,
		s.ID, s.DayOfWeek, date, s.StartTime, s.EndTime, s.SlotDuration, s.IsAvailable,
	).Scan(&s.UpdatedAt)
	return translate("update schedule", err)
}

func (r *ScheduleRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE schedules SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return translate("delete schedule", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("delete schedule", ErrNotFound)
	}
	return nil
}
