package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/timmy/jokegen/internal/textproc"
)

// StemCmd prints the moderation key a topic normalizes to.
func StemCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stem [topic...]",
		Short: "Show the stem key for a topic",
		Long:  "Normalizes the topic the way the generator does before moderation. Topics sharing a key share one verdict.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := strings.Join(args, " ")
			key := textproc.StemKey(topic)
			if key == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%q -> %s\n", topic, color.New(color.FgYellow).Sprint("(empty)"))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%q -> %s\n", topic, color.New(color.FgGreen).Sprint(key))
			return nil
		},
	}
}
