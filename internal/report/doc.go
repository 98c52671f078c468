// Package report aggregates worker profiling events into a SQLite database
// and computes per-event duration summaries.
//
// Imports are batched: every ImportDir call gets a batch id so repeated
// imports of the same tree can be told apart. The store is an offline
// consumer of the JSONL files; it never touches the live append handles.
package report
