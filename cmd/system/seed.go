package system

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/internal/service/user"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
	"github.com/imedbrahmi/hospital_backend/pkg/crypto"
	"github.com/imedbrahmi/hospital_backend/pkg/database"
	"github.com/imedbrahmi/hospital_backend/pkg/util/password"
	"github.com/imedbrahmi/hospital_backend/pkg/util/phone"
)

// NewSeedSuperAdminCommand creates the SuperAdmin described under
// superadmin in the config. An existing account with that e-mail is left
// untouched.
func NewSeedSuperAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-superadmin",
		Short: "Create the initial SuperAdmin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}
			sa := cfg.SuperAdmin
			if sa.Email == "" || sa.Password == "" {
				return fmt.Errorf("superadmin.email and superadmin.password must be set")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			pool, err := database.NewPool(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer pool.Close()
			db := repo.NewClient(pool)

			exists, err := db.Users.EmailExists(ctx, sa.Email)
			if err != nil {
				return fmt.Errorf("failed to look up superadmin: %w", err)
			}
			if exists {
				slog.Info("superadmin already present", "email", sa.Email)
				return nil
			}

			cipher, err := crypto.NewFieldCipher(cfg.Authentication.EncryptionKey)
			if err != nil {
				return fmt.Errorf("failed to create field cipher: %w", err)
			}
			accounts := user.NewAccounts(
				password.NewHasher(password.FromCentralConfig(cfg.Password)),
				phone.NewNormalizer(cfg.Server.PhoneRegion),
				cipher,
			)

			u, err := accounts.Build(user.Profile{
				FirstName: sa.FirstName,
				LastName:  sa.LastName,
				Email:     sa.Email,
				Phone:     sa.Phone,
				CIN:       sa.CIN,
				DOB:       sa.DOB,
				Gender:    sa.Gender,
				Password:  sa.Password,
			}, authorize.RoleSuperAdmin)
			if err != nil {
				return fmt.Errorf("invalid superadmin profile: %w", err)
			}
			if err := db.Users.Create(ctx, u); err != nil {
				return fmt.Errorf("failed to create superadmin: %w", err)
			}

			fmt.Printf("SuperAdmin %s created.\n", u.Email)
			return nil
		},
	}

	return cmd
}
