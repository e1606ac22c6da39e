package authorize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const ruleColumns = 6

// PolicyDB is the subset of pgxpool.Pool the adapter needs.
type PolicyDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Adapter persists Casbin rules in the casbin_rule table over pgx.
type Adapter struct {
	db    PolicyDB
	table string
}

var _ persist.Adapter = (*Adapter)(nil)

// NewAdapter creates the rule table when missing.
func NewAdapter(ctx context.Context, db PolicyDB) (*Adapter, error) {
	a := &Adapter{db: db, table: "casbin_rule"}
	if err := a.ensureTable(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Adapter) ensureTable(ctx context.Context) error {
	_, err := a.db.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id bigserial PRIMARY KEY,
		ptype text NOT NULL,
		v0 text NOT NULL DEFAULT '',
		v1 text NOT NULL DEFAULT '',
		v2 text NOT NULL DEFAULT '',
		v3 text NOT NULL DEFAULT '',
		v4 text NOT NULL DEFAULT '',
		v5 text NOT NULL DEFAULT '',
		UNIQUE (ptype, v0, v1, v2, v3, v4, v5)
	)`, a.table))
	if err != nil {
		return fmt.Errorf("create %s: %w", a.table, err)
	}
	return nil
}

func (a *Adapter) LoadPolicy(m model.Model) error {
	ctx := context.Background()
	rows, err := a.db.Query(ctx, fmt.Sprintf(`SELECT ptype, v0, v1, v2, v3, v4, v5 FROM %s ORDER BY id`, a.table))
	if err != nil {
		return fmt.Errorf("load policy: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ptype string
		var v [ruleColumns]string
		if err := rows.Scan(&ptype, &v[0], &v[1], &v[2], &v[3], &v[4], &v[5]); err != nil {
			return fmt.Errorf("scan policy: %w", err)
		}
		line := []string{ptype}
		for _, s := range v {
			if s == "" {
				break
			}
			line = append(line, s)
		}
		if err := persist.LoadPolicyArray(line, m); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (a *Adapter) SavePolicy(m model.Model) error {
	ctx := context.Background()
	return pgx.BeginFunc(ctx, a.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, a.table)); err != nil {
			return err
		}
		for _, sec := range []string{"p", "g"} {
			ast, ok := m[sec]
			if !ok {
				continue
			}
			for ptype, assertion := range ast {
				for _, rule := range assertion.Policy {
					if err := a.insert(ctx, tx, ptype, rule); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

func (a *Adapter) AddPolicy(_ string, ptype string, rule []string) error {
	return a.insert(context.Background(), a.db, ptype, rule)
}

func (a *Adapter) RemovePolicy(_ string, ptype string, rule []string) error {
	v, err := padRule(rule)
	if err != nil {
		return err
	}
	_, err = a.db.Exec(context.Background(),
		fmt.Sprintf(`DELETE FROM %s WHERE ptype = $1 AND v0 = $2 AND v1 = $3 AND v2 = $4 AND v3 = $5 AND v4 = $6 AND v5 = $7`, a.table),
		ptype, v[0], v[1], v[2], v[3], v[4], v[5])
	return err
}

func (a *Adapter) RemoveFilteredPolicy(_ string, ptype string, fieldIndex int, fieldValues ...string) error {
	if fieldIndex < 0 || fieldIndex+len(fieldValues) > ruleColumns {
		return errors.New("casbin adapter: filter out of range")
	}
	where := []string{"ptype = $1"}
	args := []any{ptype}
	for i, val := range fieldValues {
		if val == "" {
			continue
		}
		args = append(args, val)
		where = append(where, fmt.Sprintf("v%d = $%d", fieldIndex+i, len(args)))
	}
	_, err := a.db.Exec(context.Background(),
		fmt.Sprintf(`DELETE FROM %s WHERE %s`, a.table, strings.Join(where, " AND ")), args...)
	return err
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (a *Adapter) insert(ctx context.Context, db execer, ptype string, rule []string) error {
	v, err := padRule(rule)
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (ptype, v0, v1, v2, v3, v4, v5) VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT DO NOTHING`, a.table),
		ptype, v[0], v[1], v[2], v[3], v[4], v[5])
	if err != nil {
		return fmt.Errorf("insert policy: %w", err)
	}
	return nil
}

func padRule(rule []string) ([ruleColumns]string, error) {
	var v [ruleColumns]string
	if len(rule) > ruleColumns {
		return v, fmt.Errorf("casbin adapter: rule has %d fields, max %d", len(rule), ruleColumns)
	}
	copy(v[:], rule)
	return v, nil
}
