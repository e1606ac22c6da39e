package system

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/imedbrahmi/hospital_backend/internal/schema"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
	"github.com/imedbrahmi/hospital_backend/pkg/database"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run schema migrations and seed the default policies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}

			timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			if timeout <= 0 {
				timeout = time.Minute
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			fmt.Println("Running migrations for the application database.")
			if err := database.Migrate(ctx, cfg.Database, schema.Migrations()); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			fmt.Println("Preparing the policy database.")
			pool, err := database.NewPool(ctx, cfg.CasbinDatabase)
			if err != nil {
				return fmt.Errorf("failed to connect to policy database: %w", err)
			}
			defer pool.Close()

			enforcer, cleanup, err := authorize.NewEnforcer(ctx, pool, authorize.EnforcerOptions{
				DSN: database.NewDSN(cfg.CasbinDatabase),
			})
			if err != nil {
				return fmt.Errorf("failed to create enforcer: %w", err)
			}
			defer cleanup(context.Background())

			auth, err := authorize.NewAuthorization(enforcer)
			if err != nil {
				return fmt.Errorf("failed to create authorization: %w", err)
			}

			slog.Info("seeding default policies")
			if err := authorize.SeedDefaultPolicies(ctx, auth); err != nil {
				return fmt.Errorf("failed to seed policies: %w", err)
			}

			fmt.Println("Migrations executed successfully.")
			return nil
		},
	}

	return cmd
}
