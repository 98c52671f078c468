package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rolloutlog/internal/profilelog"
)

func newPathCommand(ctx *commandContext) *cobra.Command {
	var step int
	var rank int
	var dir string

	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the resolved worker log path",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := profilelog.PathSpec{Dir: dir}
			if cmd.Flags().Changed("step") {
				spec.Step = &step
			}
			if cmd.Flags().Changed("rank") {
				spec.Rank = &rank
			}
			if dir == "" {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				spec.Dir = cfg.LogDir()
			}
			fmt.Fprintln(cmd.OutOrStdout(), spec.Resolve())
			return nil
		},
	}

	cmd.Flags().IntVar(&step, "step", 0, "Rollout step (defaults to process context)")
	cmd.Flags().IntVar(&rank, "rank", 0, "Worker rank (defaults to process context)")
	cmd.Flags().StringVar(&dir, "dir", "", "Log directory override")
	return cmd
}
