// Package repo is the PostgreSQL data layer. Every query runs through a
// DBTX so the same repositories work on the pool and inside transactions.
package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Client struct {
	db DBTX

	Users          *UserRepo
	Clinics        *ClinicRepo
	Schedules      *ScheduleRepo
	Appointments   *AppointmentRepo
	MedicalRecords *MedicalRecordRepo
	Prescriptions  *PrescriptionRepo
	Invoices       *InvoiceRepo
	Messages       *MessageRepo
}

func NewClient(db DBTX) *Client {
	return &Client{
		db:             db,
		Users:          &UserRepo{db: db},
		Clinics:        &ClinicRepo{db: db},
		Schedules:      &ScheduleRepo{db: db},
		Appointments:   &AppointmentRepo{db: db},
		MedicalRecords: &MedicalRecordRepo{db: db},
		Prescriptions:  &PrescriptionRepo{db: db},
		Invoices:       &InvoiceRepo{db: db},
		Messages:       &MessageRepo{db: db},
	}
}

// WithTx runs fn against a client bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (c *Client) WithTx(ctx context.Context, fn func(tx *Client) error) error {
	tx, err := c.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(NewClient(tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Ping checks that the database answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.db.Exec(ctx, "SELECT 1")
	return err
}
