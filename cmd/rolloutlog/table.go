package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"rolloutlog/internal/logs"
	"rolloutlog/internal/report"
)

// renderEventTable lays out decoded worker events for show: timestamp and
// event name left-aligned, duration right-aligned and blank when the event
// carried none.
func renderEventTable(events []logs.Event) string {
	tw := newTableWriter(table.Row{"TIMESTAMP", "EVENT", "DURATION"}, 2)
	for _, evt := range events {
		duration := ""
		if evt.DurationSec != nil {
			duration = formatSeconds(*evt.DurationSec)
		}
		tw.AppendRow(table.Row{evt.Timestamp, evt.Event, duration})
	}
	return tw.Render()
}

// renderSummaryTable lays out per-event aggregates for report, one row per
// event name with counts and formatted durations.
func renderSummaryTable(summaries []report.EventSummary) string {
	tw := newTableWriter(table.Row{"EVENT", "COUNT", "TIMED", "TOTAL", "MEAN", "MAX"}, 1)
	for _, s := range summaries {
		tw.AppendRow(table.Row{
			s.Event,
			strconv.Itoa(s.Count),
			strconv.Itoa(s.Timed),
			formatSeconds(s.TotalSec),
			formatSeconds(s.MeanSec),
			formatSeconds(s.MaxSec),
		})
	}
	return tw.Render()
}

// newTableWriter applies the shared table style: rounded borders, the first
// leftAligned columns left-aligned, every remaining (numeric) column
// right-aligned.
func newTableWriter(header table.Row, leftAligned int) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)

	configs := make([]table.ColumnConfig, 0, len(header))
	for i := 0; i < len(header); i++ {
		align := text.AlignRight
		if i < leftAligned {
			align = text.AlignLeft
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)
	return tw
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64) + "s"
}
