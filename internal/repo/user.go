package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
)

type UserRepo struct {
	db DBTX
}

const userColumns = `u.id, u.first_name, u.last_name, u.email, u.phone, u.cin_encrypted,
	coalesce(to_char(u.dob, 'YYYY-MM-DD'), ''), u.gender, u.password_hash, u.role, u.clinic_id,
	u.doctor_department, u.avatar_key, u.is_active, u.created_at, u.updated_at`

func scanUser(row scanner) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.CINEncrypted,
		&u.DOB, &u.Gender, &u.PasswordHash, &u.Role, &u.ClinicID,
		&u.DoctorDepartment, &u.AvatarKey, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) collect(ctx context.Context, op, sql string, args ...any) ([]*User, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(op, err)
	}
	defer rows.Close()

	out := []*User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, translate(op, err)
		}
		out = append(out, u)
	}
	return out, translate(op, rows.Err())
}

// Create inserts u. A zero ID is replaced with a fresh one.
func (r *UserRepo) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	dob, err := dateParam(u.DOB)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO users (id, first_name, last_name, email, phone, cin_encrypted, dob, gender,
			password_hash, role, clinic_id, doctor_department, avatar_key, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`,
		u.ID, u.FirstName, u.LastName, u.Email, u.Phone, u.CINEncrypted, dob, u.Gender,
		u.PasswordHash, string(u.Role), u.ClinicID, u.DoctorDepartment, u.AvatarKey, u.IsActive,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	return translate("create user", err)
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.id = $1 AND u.deleted_at IS NULL`, id))
	return u, translate("get user", err)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u WHERE lower(u.email) = lower($1) AND u.deleted_at IS NULL`, email))
	return u, translate("get user by email", err)
}

// EmailExists also sees soft-deleted accounts, matching the unique index.
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`, email).Scan(&exists)
	return exists, translate("user email exists", err)
}

type UserFilter struct {
	Role       authorize.Role
	ClinicID   *uuid.UUID
	Department string
	// Patients with at least one live appointment in this clinic.
	SeenInClinic *uuid.UUID
	// Patients with at least one live appointment with this doctor.
	SeenByDoctor *uuid.UUID
	// Case-insensitive match on names, email and department.
	Search     string
	ActiveOnly bool
}

func (r *UserRepo) List(ctx context.Context, f UserFilter) ([]*User, error) {
	w := &where{}
	w.raw("u.deleted_at IS NULL")
	if f.Role != "" {
		w.add("u.role = ?", string(f.Role))
	}
	w.uuid("u.clinic_id", f.ClinicID)
	if f.Department != "" {
		w.add("lower(u.doctor_department) = lower(?)", f.Department)
	}
	if f.Search != "" {
		w.add(`(u.first_name ILIKE ? OR u.last_name ILIKE ? OR u.email ILIKE ? OR u.doctor_department ILIKE ?)`,
			"%"+f.Search+"%")
	}
	if f.ActiveOnly {
		w.raw("u.is_active")
	}
	if f.SeenInClinic != nil {
		w.add(`EXISTS (SELECT 1 FROM appointments a WHERE a.patient_id = u.id AND a.deleted_at IS NULL AND a.clinic_id = ?)`, *f.SeenInClinic)
	}
	if f.SeenByDoctor != nil {
		w.add(`EXISTS (SELECT 1 FROM appointments a WHERE a.patient_id = u.id AND a.deleted_at IS NULL AND a.doctor_id = ?)`, *f.SeenByDoctor)
	}
	return r.collect(ctx, "list users",
		`SELECT `+userColumns+` FROM users u`+w.String()+` ORDER BY u.first_name, u.last_name`, w.args...)
}

// ListDoctorsByClinicName matches the clinic name case-insensitively and
// only among active clinics.
func (r *UserRepo) ListDoctorsByClinicName(ctx context.Context, name string) ([]*User, error) {
	return r.collect(ctx, "list doctors by clinic", `
		SELECT `+userColumns+`
		FROM users u
		JOIN clinics c ON c.id = u.clinic_id
		WHERE lower(c.name) = lower($1) AND c.is_active
			AND u.role = 'Doctor' AND u.is_active AND u.deleted_at IS NULL
		ORDER BY u.last_name, u.first_name`, name)
}

// FindDoctors looks doctors up by name within a department. Empty names
// are ignored.
func (r *UserRepo) FindDoctors(ctx context.Context, firstName, lastName, department string) ([]*User, error) {
	w := &where{}
	w.raw("u.role = 'Doctor' AND u.is_active AND u.deleted_at IS NULL")
	w.add("lower(u.doctor_department) = lower(?)", department)
	if firstName != "" {
		w.add("lower(u.first_name) = lower(?)", firstName)
	}
	if lastName != "" {
		w.add("lower(u.last_name) = lower(?)", lastName)
	}
	return r.collect(ctx, "find doctors", `SELECT `+userColumns+` FROM users u`+w.String(), w.args...)
}

func (r *UserRepo) ListUnassignedAdmins(ctx context.Context) ([]*User, error) {
	return r.collect(ctx, "list unassigned admins", `
		SELECT `+userColumns+` FROM users u
		WHERE u.role = 'Admin' AND u.clinic_id IS NULL AND u.deleted_at IS NULL
		ORDER BY u.created_at`)
}

// Update writes the mutable profile fields of u.
func (r *UserRepo) Update(ctx context.Context, u *User) error {
	dob, err := dateParam(u.DOB)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, `
		UPDATE users SET first_name = $2, last_name = $3, email = $4, phone = $5, cin_encrypted = $6,
			dob = $7, gender = $8, doctor_department = $9, avatar_key = $10, is_active = $11, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`,
		u.ID, u.FirstName, u.LastName, u.Email, u.Phone, u.CINEncrypted,
		dob, u.Gender, u.DoctorDepartment, u.AvatarKey, u.IsActive,
	).Scan(&u.UpdatedAt)
	return translate("update user", err)
}

func (r *UserRepo) AssignClinic(ctx context.Context, userID uuid.UUID, clinicID *uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET clinic_id = $2, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`,
		userID, clinicID)
	if err != nil {
		return translate("assign clinic", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("assign clinic", ErrNotFound)
	}
	return nil
}

// SoftDelete hides the user from every read and disables sign-in.
func (r *UserRepo) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET deleted_at = $2, is_active = false, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		id, at)
	if err != nil {
		return translate("delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("delete user", ErrNotFound)
	}
	return nil
}

// PatientSeen reports whether the patient has a live appointment in the
// clinic or with the doctor. Nil arguments do not filter.
func (r *UserRepo) PatientSeen(ctx context.Context, patientID uuid.UUID, clinicID, doctorID *uuid.UUID) (bool, error) {
	w := &where{}
	w.raw("a.deleted_at IS NULL")
	w.add("a.patient_id = ?", patientID)
	w.uuid("a.clinic_id", clinicID)
	w.uuid("a.doctor_id", doctorID)

	var seen bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM appointments a`+w.String()+`)`, w.args...).Scan(&seen)
	return seen, translate("patient seen", err)
}

func (r *UserRepo) SetPassword(ctx context.Context, userID uuid.UUID, hash string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`,
		userID, hash)
	if err != nil {
		return translate("set password", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("set password", ErrNotFound)
	}
	return nil
}
