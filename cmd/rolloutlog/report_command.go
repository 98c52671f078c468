package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rolloutlog/internal/report"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var step int
	var dbPath string
	var skipImport bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate worker events into the report database and summarize",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.ensureLogger()

			path := dbPath
			if path == "" {
				path = cfg.Paths.ReportDB
			}

			store, err := report.Open(path)
			if err != nil {
				return err
			}
			defer store.Close() //nolint:errcheck

			if !skipImport {
				result, err := store.ImportDir(cmd.Context(), cfg.LogDir())
				if err != nil {
					return err
				}
				logger.Info("import complete",
					"batch", result.BatchID,
					"files", result.Files,
					"events", result.Events)
			}

			filter := -1
			if cmd.Flags().Changed("step") {
				filter = step
			}
			summaries, err := store.Summarize(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No events recorded")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderSummaryTable(summaries))
			return nil
		},
	}

	cmd.Flags().IntVar(&step, "step", 0, "Restrict the summary to one step")
	cmd.Flags().StringVar(&dbPath, "db", "", "Report database path override")
	cmd.Flags().BoolVar(&skipImport, "no-import", false, "Summarize existing data without importing")
	return cmd
}
