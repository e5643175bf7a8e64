package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netplus-prep/assessment-service/internal/config"
	"github.com/netplus-prep/assessment-service/pkg"
)

// NewMigrateCmd creates the command that runs database migrations and exits.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}

			db, err := pkg.InitDatabase(cfg)
			if err != nil {
				return err
			}
			if err := pkg.MigrateDatabase(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Println("migrations applied")
			return nil
		},
	}
}
