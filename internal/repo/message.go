package repo

import (
	"context"

	"github.com/google/uuid"
)

type MessageRepo struct {
	db DBTX
}

func (r *MessageRepo) Create(ctx context.Context, m *ContactMessage) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO contact_messages (id, first_name, last_name, email, phone, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		m.ID, m.FirstName, m.LastName, m.Email, m.Phone, m.Message,
	).Scan(&m.CreatedAt)
	return translate("create message", err)
}

func (r *MessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*ContactMessage, error) {
	var m ContactMessage
	err := r.db.QueryRow(ctx, `
		SELECT id, first_name, last_name, email, phone, message, created_at
		FROM contact_messages WHERE id = $1`, id,
	).Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.Phone, &m.Message, &m.CreatedAt)
	if err != nil {
		return nil, translate("get message", err)
	}
	return &m, nil
}

func (r *MessageRepo) List(ctx context.Context) ([]*ContactMessage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, first_name, last_name, email, phone, message, created_at
		FROM contact_messages ORDER BY created_at DESC`)
	if err != nil {
		return nil, translate("list messages", err)
	}
	defer rows.Close()

	out := []*ContactMessage{}
	for rows.Next() {
		var m ContactMessage
		if err := rows.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.Phone, &m.Message, &m.CreatedAt); err != nil {
			return nil, translate("list messages", err)
		}
		out = append(out, &m)
	}
	return out, translate("list messages", rows.Err())
}
