package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/timmy/jokegen/internal/config"
	"github.com/timmy/jokegen/internal/logger"
	"github.com/timmy/jokegen/internal/repository"
	"gorm.io/gorm"
)

// NewRootCmd builds the jokectl command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "jokectl",
		Short:         "Admin tool for the joke generator",
		Long:          "jokectl inspects topic normalization, manages blocked topics and exports joke snapshots.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(logger.SetComponent(cmd.Context(), "jokectl"))
		},
	}
	rootCmd.PersistentFlags().String("config", "", "Path to config file (defaults to ./configs/config.yaml)")

	rootCmd.AddCommand(StemCmd())
	rootCmd.AddCommand(BlockedCmd())
	rootCmd.AddCommand(ExportCmd())
	rootCmd.AddCommand(MigrateCmd())

	return rootCmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// withDB opens the configured database for the duration of fn.
func withDB(cmd *cobra.Command, fn func(cfg *config.Config, db *gorm.DB) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer repository.Close(db)

	return fn(cfg, db)
}
