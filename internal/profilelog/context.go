package profilelog

import "sync"

// Process-wide rollout coordinates. The orchestrator calls SetCurrentStep at
// the start of each rollout step and SetCurrentRank once at worker startup;
// path resolution and Log fall back to these when no explicit value is given.
// Guarded so concurrent setters and readers stay consistent.
var processCtx struct {
	mu   sync.RWMutex
	step int
	rank int
}

// SetCurrentStep records the current training/rollout step for this process.
func SetCurrentStep(step int) {
	processCtx.mu.Lock()
	processCtx.step = step
	processCtx.mu.Unlock()
}

// SetCurrentRank records this process's worker rank.
func SetCurrentRank(rank int) {
	processCtx.mu.Lock()
	processCtx.rank = rank
	processCtx.mu.Unlock()
}

// CurrentStep returns the current training/rollout step (default 0).
func CurrentStep() int {
	processCtx.mu.RLock()
	defer processCtx.mu.RUnlock()
	return processCtx.step
}

// CurrentRank returns this process's worker rank (default 0).
func CurrentRank() int {
	processCtx.mu.RLock()
	defer processCtx.mu.RUnlock()
	return processCtx.rank
}
