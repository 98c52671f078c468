package main

import (
	"strings"
	"testing"

	"rolloutlog/internal/logs"
	"rolloutlog/internal/report"
)

func TestRenderEventTable(t *testing.T) {
	duration := 0.5
	events := []logs.Event{
		{Timestamp: "2026-08-28T10:00:00.000000+00:00", Event: "turn_start", DurationSec: &duration},
		{Timestamp: "2026-08-28T10:00:01.000000+00:00", Event: "engine_call"},
	}

	out := renderEventTable(events)
	for _, want := range []string{"TIMESTAMP", "EVENT", "DURATION", "turn_start", "0.500s", "engine_call"} {
		if !strings.Contains(out, want) {
			t.Fatalf("event table missing %q:\n%s", want, out)
		}
	}
	// Untimed events render a blank duration cell, not a zero.
	if strings.Contains(out, "0.000s") {
		t.Fatalf("untimed event rendered a duration:\n%s", out)
	}
}

func TestRenderSummaryTable(t *testing.T) {
	summaries := []report.EventSummary{
		{Event: "turn_start", Count: 3, Timed: 2, TotalSec: 4, MeanSec: 2, MaxSec: 2.5},
	}

	out := renderSummaryTable(summaries)
	for _, want := range []string{"EVENT", "COUNT", "TIMED", "TOTAL", "MEAN", "MAX", "turn_start", "4.000s", "2.500s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary table missing %q:\n%s", want, out)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := formatSeconds(0.5); got != "0.500s" {
		t.Fatalf("formatSeconds(0.5) = %q", got)
	}
	if got := formatSeconds(12); got != "12.000s" {
		t.Fatalf("formatSeconds(12) = %q", got)
	}
}
