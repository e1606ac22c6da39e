package repo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrReference is a write naming a row that does not exist.
	ErrReference = errors.New("referenced record does not exist")
)

// DuplicateError carries the unique constraint that rejected a write.
type DuplicateError struct {
	Constraint string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate record (%s)", e.Constraint)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicate }

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsDuplicate(err error) bool { return errors.Is(err, ErrDuplicate) }

func IsReference(err error) bool { return errors.Is(err, ErrReference) }

// ConstraintOf returns the violated constraint name, or "".
func ConstraintOf(err error) string {
	var d *DuplicateError
	if errors.As(err, &d) {
		return d.Constraint
	}
	return ""
}

// translate maps driver errors onto the package sentinels.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", op, &DuplicateError{Constraint: pgErr.ConstraintName})
		case "23503":
			return fmt.Errorf("%s (%s): %w", op, pgErr.ConstraintName, ErrReference)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
