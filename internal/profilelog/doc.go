// Package profilelog records per-worker, per-step rollout timing events as
// append-only JSON Lines files.
//
// It owns the log-path scheme (<root>/step_<step>/worker_<rank>.jsonl), the
// process-wide step/rank context the orchestrator sets at the start of each
// rollout step, and a Manager that caches one append-mode handle per path and
// flushes every record as soon as it is written. Records carry a fixed field
// prefix (timestamp, step, worker, event) so line-oriented consumers can rely
// on a stable shape.
//
// The manager is passive: all work happens on the calling goroutine during a
// Log call, and writes to the same path are serialized so concurrent callers
// cannot interleave lines. Failures are returned, never retried or swallowed;
// profiling is best-effort observability and resilience belongs to callers.
package profilelog
