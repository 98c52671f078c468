// Package logs reads worker profiling JSONL files back: decoding event
// records for the report store and tailing files for the show command.
//
// It never writes; appending is internal/profilelog's job.
package logs
