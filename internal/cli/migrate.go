package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/timmy/jokegen/internal/config"
	"github.com/timmy/jokegen/internal/repository"
	"gorm.io/gorm"
)

// MigrateCmd creates or updates the database schema.
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(cfg *config.Config, db *gorm.DB) error {
				if err := repository.Migrate(db); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Schema up to date (%s)\n", cfg.Database.Driver)
				return nil
			})
		},
	}
}
