package profilelog_test

import (
	"path/filepath"
	"testing"

	"rolloutlog/internal/profilelog"
)

func TestResolveLogRootDefaults(t *testing.T) {
	t.Setenv(profilelog.EnvLogRoot, "")
	t.Setenv(profilelog.EnvExperimentName, "")

	got := profilelog.ResolveLogRoot("")
	want := filepath.Join("logs", "multiturn_log_dir")
	if got != want {
		t.Fatalf("ResolveLogRoot() = %q, want %q", got, want)
	}
}

func TestResolveLogRootEnvOverrides(t *testing.T) {
	t.Setenv(profilelog.EnvLogRoot, "/data/profiles")
	t.Setenv(profilelog.EnvExperimentName, "exp42")

	got := profilelog.ResolveLogRoot("")
	want := filepath.Join("/data/profiles", "exp42")
	if got != want {
		t.Fatalf("ResolveLogRoot() = %q, want %q", got, want)
	}
}

func TestResolveLogRootExplicitOverrideWins(t *testing.T) {
	t.Setenv(profilelog.EnvLogRoot, "/data/profiles")
	t.Setenv(profilelog.EnvExperimentName, "exp42")

	if got := profilelog.ResolveLogRoot("/tmp/override"); got != "/tmp/override" {
		t.Fatalf("ResolveLogRoot(override) = %q", got)
	}
}

func TestBuildLogPathDeterministic(t *testing.T) {
	first := profilelog.BuildLogPath("logs/exp", 7, 3)
	second := profilelog.BuildLogPath("logs/exp", 7, 3)
	if first != second {
		t.Fatalf("path not deterministic: %q vs %q", first, second)
	}
	want := filepath.Join("logs", "exp", "step_7", "worker_3.jsonl")
	if first != want {
		t.Fatalf("BuildLogPath = %q, want %q", first, want)
	}
}

func TestBuildLogPathInjectiveOverStepRank(t *testing.T) {
	seen := make(map[string]string)
	for step := 0; step < 5; step++ {
		for rank := 0; rank < 5; rank++ {
			path := profilelog.BuildLogPath("logs/exp", step, rank)
			key := path
			if prev, ok := seen[key]; ok {
				t.Fatalf("collision: %q already produced by %s", path, prev)
			}
			seen[key] = path
		}
	}
}

func TestBuildLogPathAcceptsNegativeValues(t *testing.T) {
	got := profilelog.BuildLogPath("d", -1, -2)
	want := filepath.Join("d", "step_-1", "worker_-2.jsonl")
	if got != want {
		t.Fatalf("BuildLogPath = %q, want %q", got, want)
	}
}

func TestPathSpecFallsBackToProcessContext(t *testing.T) {
	profilelog.SetCurrentStep(11)
	profilelog.SetCurrentRank(4)
	t.Cleanup(func() {
		profilelog.SetCurrentStep(0)
		profilelog.SetCurrentRank(0)
	})

	got := profilelog.PathSpec{Dir: "base"}.Resolve()
	want := filepath.Join("base", "step_11", "worker_4.jsonl")
	if got != want {
		t.Fatalf("Resolve() = %q, want %q", got, want)
	}

	step := 2
	got = profilelog.PathSpec{Step: &step, Dir: "base"}.Resolve()
	want = filepath.Join("base", "step_2", "worker_4.jsonl")
	if got != want {
		t.Fatalf("Resolve(step=2) = %q, want %q", got, want)
	}
}
