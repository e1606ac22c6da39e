package database

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/tern/v2/migrate"

	"github.com/imedbrahmi/hospital_backend/config"
)

// Migrate applies every pending migration found at the root of fsys.
// Files follow tern's naming: 001_name.sql, 002_name.sql, ...
func Migrate(ctx context.Context, cfg config.DatabaseConfig, fsys fs.FS) error {
	conn, err := Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	m, err := migrate.NewMigrator(ctx, conn, FromCentralConfig(cfg).VersionTable)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.LoadMigrations(fsys); err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	m.OnStart = func(seq int32, name, direction, _ string) {
		slog.Info("applying migration", "sequence", seq, "name", name, "direction", direction)
	}

	before, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	after, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	slog.Info("database schema up to date", "from", before, "to", after, "available", len(m.Migrations))

	return nil
}
