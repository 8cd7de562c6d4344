package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/timmy/jokegen/internal/config"
	"github.com/timmy/jokegen/internal/repository"
	"gorm.io/gorm"
)

// BlockedCmd groups the blocked-topic subcommands.
func BlockedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blocked",
		Short: "Manage topics blocked by moderation",
	}
	cmd.AddCommand(blockedListCmd())
	cmd.AddCommand(blockedClearCmd())
	return cmd
}

func blockedListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List blocked stem topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(_ *config.Config, db *gorm.DB) error {
				topics, err := repository.NewTopicRepository(db).ListBlocked(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list blocked topics: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(topics) == 0 {
					fmt.Fprintln(out, "No blocked topics")
					return nil
				}

				fmt.Fprintf(out, "Found %d blocked topic(s):\n\n", len(topics))
				for _, t := range topics {
					fmt.Fprintf(out, "  %s %-30s %s (%s)\n",
						color.New(color.FgRed).Sprint("BLOCKED"),
						t.TopicStemmed,
						t.TopicExample,
						t.DateSuggested.Format("2006-01-02"))
				}
				return nil
			})
		},
	}
}

func blockedClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete blocked stem topics so they are moderated again",
		Long:  "Deletes blocked stem topics and their topic rows. Stem topics referenced by a joke are kept.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(_ *config.Config, db *gorm.DB) error {
				n, err := repository.NewTopicRepository(db).ClearBlocked(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to clear blocked topics: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d blocked topic(s)\n", n)
				return nil
			})
		},
	}
}
