package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/imedbrahmi/hospital_backend/config"
)

// InitializeDatabases creates the application databases listed in
// server.databases when they are missing. It connects to the maintenance
// 'postgres' database with the main database credentials.
func InitializeDatabases(ctx context.Context, cfg *config.Config) error {
	if len(cfg.Server.Databases) == 0 {
		return fmt.Errorf("no database names provided")
	}

	admin := FromCentralConfig(cfg.Database)
	admin.DBName = "postgres"

	conn, err := sql.Open("postgres", admin.DSN())
	if err != nil {
		return fmt.Errorf("failed to open postgres database: %w", err)
	}
	defer conn.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to connect to postgres database: %w", err)
	}

	for _, dbName := range cfg.Server.Databases {
		created, err := createDatabaseIfNotExists(ctx, conn, dbName)
		if err != nil {
			return fmt.Errorf("failed to create database %q: %w", dbName, err)
		}
		slog.Info("database ready", "name", dbName, "created", created)
	}

	return nil
}

func createDatabaseIfNotExists(ctx context.Context, conn *sql.DB, dbName string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
	if err := conn.QueryRowContext(ctx, query, dbName).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check if database exists: %w", err)
	}
	if exists {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := conn.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(dbName)); err != nil {
		return false, fmt.Errorf("failed to create database: %w", err)
	}

	return true, nil
}
