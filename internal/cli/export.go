package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/timmy/jokegen/internal/config"
	"github.com/timmy/jokegen/internal/repository"
	"github.com/timmy/jokegen/internal/service"
	"github.com/timmy/jokegen/internal/storage"
	"gorm.io/gorm"
)

// ExportCmd uploads a JSON snapshot of recent jokes to object storage.
func ExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Upload a JSON snapshot of recent jokes to object storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return withDB(cmd, func(cfg *config.Config, db *gorm.DB) error {
				store, err := storage.NewStorage(&cfg.Storage)
				if err != nil {
					return fmt.Errorf("failed to initialize storage: %w", err)
				}
				if err := store.EnsureBucket(ctx); err != nil {
					return fmt.Errorf("failed to ensure storage bucket: %w", err)
				}

				exporter := service.NewExportService(repository.NewJokeRepository(db), store, cfg.Storage.Prefix)
				res, err := exporter.Export(ctx, limit)
				if err != nil {
					return fmt.Errorf("export failed: %w", err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d joke(s), %d bytes\n", res.Count, res.Bytes)
				fmt.Fprintf(cmd.OutOrStdout(), "  Key: %s\n  URL: %s\n", res.Key, res.URL)
				return nil
			})
		},
	}
	cmd.Flags().Int("limit", 1000, "Maximum number of jokes to export (newest first)")
	return cmd
}
