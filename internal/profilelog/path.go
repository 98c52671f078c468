package profilelog

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment inputs consulted by ResolveLogRoot. Both are optional; absence
// falls back to the documented defaults.
const (
	// EnvLogRoot overrides the base directory the experiment directory is
	// joined under.
	EnvLogRoot = "PROFILE_LOG_ROOT"
	// EnvExperimentName names the experiment subdirectory.
	EnvExperimentName = "EXPERIMENT_NAME"
)

const (
	defaultBaseDir    = "logs"
	defaultExperiment = "multiturn_log_dir"
)

// ResolveLogRoot returns the directory holding per-step profiling logs. An
// explicit override wins. Otherwise the experiment name is read from
// EXPERIMENT_NAME (default "multiturn_log_dir") and joined under
// PROFILE_LOG_ROOT when set, else under "logs". Pure apart from the
// documented environment reads.
func ResolveLogRoot(override string) string {
	if override != "" {
		return override
	}
	name := os.Getenv(EnvExperimentName)
	if name == "" {
		name = defaultExperiment
	}
	if root := os.Getenv(EnvLogRoot); root != "" {
		return filepath.Join(root, name)
	}
	return filepath.Join(defaultBaseDir, name)
}

// BuildLogPath returns logDir/step_<step>/worker_<rank>.jsonl. Pure string
// work: no I/O, no validation, negative values formatted as-is.
func BuildLogPath(logDir string, step, rank int) string {
	return filepath.Join(logDir, fmt.Sprintf("step_%d", step), fmt.Sprintf("worker_%d.jsonl", rank))
}

// PathSpec selects the coordinates of a worker log file. A nil Step or Rank
// falls back to the process context; an empty Dir falls back to
// ResolveLogRoot("").
type PathSpec struct {
	Step *int
	Rank *int
	Dir  string
}

// Resolve fills any omitted coordinate and delegates to BuildLogPath.
func (s PathSpec) Resolve() string {
	step := CurrentStep()
	if s.Step != nil {
		step = *s.Step
	}
	rank := CurrentRank()
	if s.Rank != nil {
		rank = *s.Rank
	}
	dir := s.Dir
	if dir == "" {
		dir = ResolveLogRoot("")
	}
	return BuildLogPath(dir, step, rank)
}

// ResolveLogPath is shorthand for PathSpec{}.Resolve: the log path for the
// current step and rank under the default root.
func ResolveLogPath() string {
	return PathSpec{}.Resolve()
}
