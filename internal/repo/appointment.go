package repo

import (
	"context"

	"github.com/google/uuid"
)

type AppointmentRepo struct {
	db DBTX
}

const appointmentSelect = `
	SELECT a.id, a.patient_id, a.doctor_id, a.clinic_id, a.first_name, a.last_name, a.email, a.phone,
		a.cin_encrypted, coalesce(to_char(a.dob, 'YYYY-MM-DD'), ''), a.gender, a.address,
		to_char(a.appointment_date, 'YYYY-MM-DD'), a.appointment_time, a.department, a.status,
		a.has_visited, a.created_at, a.updated_at,
		d.first_name, d.last_name, d.email, d.doctor_department
	FROM appointments a
	JOIN users d ON d.id = a.doctor_id`

func scanAppointment(row scanner) (*Appointment, error) {
	var a Appointment
	d := &UserRef{}
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.ClinicID, &a.FirstName, &a.LastName, &a.Email, &a.Phone,
		&a.CINEncrypted, &a.DOB, &a.Gender, &a.Address,
		&a.AppointmentDate, &a.AppointmentTime, &a.Department, &a.Status,
		&a.HasVisited, &a.CreatedAt, &a.UpdatedAt,
		&d.FirstName, &d.LastName, &d.Email, &d.Department)
	if err != nil {
		return nil, err
	}
	d.ID = a.DoctorID
	a.Doctor = d
	return &a, nil
}

// Create inserts a booking. A concurrent booking of the same slot fails
// with a DuplicateError on appointments_doctor_slot_key.
func (r *AppointmentRepo) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = AppointmentPending
	}
	dob, err := dateParam(a.DOB)
	if err != nil {
		return err
	}
	day, err := dateParam(a.AppointmentDate)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, clinic_id, first_name, last_name, email, phone,
			cin_encrypted, dob, gender, address, appointment_date, appointment_time, department, status, has_visited)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at`,
		a.ID, a.PatientID, a.DoctorID, a.ClinicID, a.FirstName, a.LastName, a.Email, a.Phone,
		a.CINEncrypted, dob, a.Gender, a.Address, day, a.AppointmentTime, a.Department, string(a.Status), a.HasVisited,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	return translate("create appointment", err)
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := scanAppointment(r.db.QueryRow(ctx, appointmentSelect+` WHERE a.id = $1 AND a.deleted_at IS NULL`, id))
	return a, translate("get appointment", err)
}

type AppointmentFilter struct {
	ClinicID  *uuid.UUID
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	Status    AppointmentStatus
	Date      string
}

func (r *AppointmentRepo) List(ctx context.Context, f AppointmentFilter) ([]*Appointment, error) {
	w := &where{}
	w.raw("a.deleted_at IS NULL")
	w.uuid("a.clinic_id", f.ClinicID)
	w.uuid("a.doctor_id", f.DoctorID)
	w.uuid("a.patient_id", f.PatientID)
	if f.Status != "" {
		w.add("a.status = ?", string(f.Status))
	}
	if f.Date != "" {
		day, err := dateParam(f.Date)
		if err != nil {
			return nil, err
		}
		w.add("a.appointment_date = ?", day)
	}

	rows, err := r.db.Query(ctx, appointmentSelect+w.String()+
		` ORDER BY a.appointment_date DESC, a.appointment_time DESC`, w.args...)
	if err != nil {
		return nil, translate("list appointments", err)
	}
	defer rows.Close()

	out := []*Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, translate("list appointments", err)
		}
		out = append(out, a)
	}
	return out, translate("list appointments", rows.Err())
}

// BookedTimes returns the HH:MM start times held by live Pending or
// Accepted appointments of the doctor on date.
func (r *AppointmentRepo) BookedTimes(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error) {
	day, err := dateParam(date)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `
		SELECT appointment_time FROM appointments
		WHERE doctor_id = $1 AND appointment_date = $2 AND deleted_at IS NULL
			AND status IN ('Pending', 'Accepted')`, doctorID, day)
	if err != nil {
		return nil, translate("booked times", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, translate("booked times", err)
		}
		out = append(out, t)
	}
	return out, translate("booked times", rows.Err())
}

// Update writes the status, visit flag and slot of a.
func (r *AppointmentRepo) Update(ctx context.Context, a *Appointment) error {
	day, err := dateParam(a.AppointmentDate)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, `
		UPDATE appointments SET status = $2, has_visited = $3, appointment_date = $4, appointment_time = $5,
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`,
		a.ID, string(a.Status), a.HasVisited, day, a.AppointmentTime,
	).Scan(&a.UpdatedAt)
	return translate("update appointment", err)
}

func (r *AppointmentRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE appointments SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return translate("delete appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("delete appointment", ErrNotFound)
	}
	return nil
}
