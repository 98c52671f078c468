// Package logging assembles the structured slog loggers used by the
// rolloutlog CLI for its own diagnostics.
//
// This is deliberately separate from the profiling JSONL wire format owned by
// internal/profilelog: these loggers describe what the tooling is doing,
// while profilelog records what the rollout did. Prefer these constructors
// over hand-rolled slog setup so commands emit data with a consistent shape.
package logging
