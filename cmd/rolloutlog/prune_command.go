package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rolloutlog/internal/profilelog"
)

func newPruneCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove step directories older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			retention := cfg.Logging.RetentionDays
			if cmd.Flags().Changed("days") {
				retention = days
			}
			if retention <= 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Retention disabled; nothing to prune")
				return nil
			}

			pruned, err := profilelog.CleanupOldSteps(ctx.ensureLogger(), cfg.LogDir(), retention)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d step director%s under %s\n",
				pruned, pluralYIes(pruned), cfg.LogDir())
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Retention window override in days")
	return cmd
}

func pluralYIes(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
