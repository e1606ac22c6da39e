package repo

import (
	"context"

	"github.com/google/uuid"
)

type ClinicRepo struct {
	db DBTX
}

const clinicSelect = `
	SELECT c.id, c.name, c.address, c.phone, c.email, c.services, c.consultation_tariff,
		c.owner_id, c.is_active, c.created_at, c.updated_at,
		a.id, a.first_name, a.last_name, a.email, a.phone
	FROM clinics c
	LEFT JOIN LATERAL (
		SELECT id, first_name, last_name, email, phone FROM users
		WHERE clinic_id = c.id AND role = 'Admin' AND deleted_at IS NULL
		ORDER BY created_at LIMIT 1
	) a ON true`

func scanClinic(row scanner) (*Clinic, error) {
	var (
		c                          Clinic
		adminID                    *uuid.UUID
		aFirst, aLast, aMail, aTel *string
	)
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.Email, &c.Services, &c.ConsultationTariff,
		&c.OwnerID, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
		&adminID, &aFirst, &aLast, &aMail, &aTel)
	if err != nil {
		return nil, err
	}
	if adminID != nil {
		c.Admin = &UserRef{ID: *adminID, FirstName: deref(aFirst), LastName: deref(aLast), Email: deref(aMail), Phone: deref(aTel)}
	}
	if c.Services == nil {
		c.Services = []string{}
	}
	return &c, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *ClinicRepo) Create(ctx context.Context, c *Clinic) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Services == nil {
		c.Services = []string{}
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO clinics (id, name, address, phone, email, services, consultation_tariff, owner_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Address, c.Phone, c.Email, c.Services, c.ConsultationTariff, c.OwnerID, c.IsActive,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return translate("create clinic", err)
}

// GetByID returns the clinic whether active or not, with its admin.
func (r *ClinicRepo) GetByID(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	c, err := scanClinic(r.db.QueryRow(ctx, clinicSelect+` WHERE c.id = $1`, id))
	return c, translate("get clinic", err)
}

func (r *ClinicRepo) List(ctx context.Context, activeOnly bool) ([]*Clinic, error) {
	sql := clinicSelect
	if activeOnly {
		sql += ` WHERE c.is_active`
	}
	rows, err := r.db.Query(ctx, sql+` ORDER BY c.name`)
	if err != nil {
		return nil, translate("list clinics", err)
	}
	defer rows.Close()

	out := []*Clinic{}
	for rows.Next() {
		c, err := scanClinic(rows)
		if err != nil {
			return nil, translate("list clinics", err)
		}
		out = append(out, c)
	}
	return out, translate("list clinics", rows.Err())
}

func (r *ClinicRepo) EmailExists(ctx context.Context, email string, except *uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM clinics WHERE lower(email) = lower($1) AND ($2::uuid IS NULL OR id <> $2))`,
		email, except).Scan(&exists)
	return exists, translate("clinic email exists", err)
}

func (r *ClinicRepo) Update(ctx context.Context, c *Clinic) error {
	if c.Services == nil {
		c.Services = []string{}
	}
	err := r.db.QueryRow(ctx, `
		UPDATE clinics SET name = $2, address = $3, phone = $4, email = $5, services = $6,
			consultation_tariff = $7, is_active = $8, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, c.Name, c.Address, c.Phone, c.Email, c.Services, c.ConsultationTariff, c.IsActive,
	).Scan(&c.UpdatedAt)
	return translate("update clinic", err)
}

// Deactivate is the clinic flavour of soft delete.
func (r *ClinicRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE clinics SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return translate("deactivate clinic", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("deactivate clinic", ErrNotFound)
	}
	return nil
}
