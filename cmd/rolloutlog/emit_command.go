package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rolloutlog/internal/profilelog"
)

// emit writes one event through the real manager, exercising the same code
// path the orchestrator uses. Mostly useful for smoke-testing a deployment's
// log root and permissions.
func newEmitCommand(ctx *commandContext) *cobra.Command {
	var event string
	var duration float64
	var step int
	var rank int

	cmd := &cobra.Command{
		Use:   "emit [key=value ...]",
		Short: "Append a test event to the worker log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			fields := make([]profilelog.Field, 0, len(args))
			for _, arg := range args {
				key, value, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("field %q is not key=value", arg)
				}
				fields = append(fields, profilelog.F(key, value))
			}

			opts := []profilelog.Option{
				profilelog.WithStep(step),
				profilelog.WithWorker(rank),
			}
			if cmd.Flags().Changed("duration") {
				opts = append(opts, profilelog.WithDuration(duration))
			}
			if len(fields) > 0 {
				opts = append(opts, profilelog.WithFields(fields...))
			}

			mgr := profilelog.Default()
			defer mgr.CloseAll() //nolint:errcheck

			path := profilelog.BuildLogPath(cfg.LogDir(), step, rank)
			if err := mgr.Log(path, event, opts...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s event to %s\n", event, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&event, "event", "smoke_test", "Event name")
	cmd.Flags().Float64Var(&duration, "duration", 0, "duration_sec value")
	cmd.Flags().IntVar(&step, "step", 0, "Rollout step")
	cmd.Flags().IntVar(&rank, "rank", 0, "Worker rank")
	return cmd
}
