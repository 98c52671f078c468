package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/cobra"

	"rolloutlog/internal/logs"
	"rolloutlog/internal/profilelog"
)

const followBackfillLines = 10

func newShowCommand(ctx *commandContext) *cobra.Command {
	var step int
	var rank int
	var limit int
	var follow bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display events for one worker log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := profilelog.BuildLogPath(cfg.LogDir(), step, rank)

			if follow {
				return followLog(cmd, path)
			}

			events, err := logs.ReadFile(path)
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if limit > 0 && len(events) > limit {
				events = events[len(events)-limit:]
			}
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No events available")
				return nil
			}

			if jsonOut {
				for _, evt := range events {
					fmt.Fprintln(cmd.OutOrStdout(), evt.Raw)
				}
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderEventTable(events))
			return nil
		},
	}

	cmd.Flags().IntVar(&step, "step", 0, "Rollout step")
	cmd.Flags().IntVar(&rank, "rank", 0, "Worker rank")
	cmd.Flags().IntVarP(&limit, "lines", "n", 0, "Limit to the last N events (0 = all)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep the log open and print new events")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print raw JSONL lines")
	return cmd
}

func followLog(cmd *cobra.Command, path string) error {
	follower := logs.NewFollower(path)

	events, err := follower.Backfill(followBackfillLines)
	if err != nil {
		return err
	}
	printRaw(cmd, events)

	for {
		events, err := follower.Next(cmd.Context(), time.Second)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		printRaw(cmd, events)
	}
}

func printRaw(cmd *cobra.Command, events []logs.Event) {
	for _, evt := range events {
		fmt.Fprintln(cmd.OutOrStdout(), evt.Raw)
	}
}
