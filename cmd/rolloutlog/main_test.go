package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, logRoot string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rolloutlog.toml")
	content := "[paths]\nlog_root = \"" + logRoot + "\"\nexperiment = \"exp\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPathCommandPrintsResolvedPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	cfgPath := writeTestConfig(t, root)

	out, err := runCommand(t, "--config", cfgPath, "path", "--step", "3", "--rank", "1")
	if err != nil {
		t.Fatalf("path command returned error: %v", err)
	}
	want := filepath.Join(root, "exp", "step_3", "worker_1.jsonl")
	if strings.TrimSpace(out) != want {
		t.Fatalf("path output = %q, want %q", strings.TrimSpace(out), want)
	}
}

func TestPathCommandExplicitDirWins(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfgPath := writeTestConfig(t, t.TempDir())

	out, err := runCommand(t, "--config", cfgPath, "path", "--dir", "elsewhere", "--step", "0", "--rank", "0")
	if err != nil {
		t.Fatalf("path command returned error: %v", err)
	}
	want := filepath.Join("elsewhere", "step_0", "worker_0.jsonl")
	if strings.TrimSpace(out) != want {
		t.Fatalf("path output = %q, want %q", strings.TrimSpace(out), want)
	}
}

func TestPathCommandReportsConfigError(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfgPath := filepath.Join(t.TempDir(), "rolloutlog.toml")
	if err := os.WriteFile(cfgPath, []byte("paths = {"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := runCommand(t, "--config", cfgPath, "path"); err == nil {
		t.Fatal("expected error for unreadable config")
	}

	// An explicit --dir never consults the config.
	out, err := runCommand(t, "--config", cfgPath, "path", "--dir", "elsewhere")
	if err != nil {
		t.Fatalf("path with --dir returned error: %v", err)
	}
	if !strings.Contains(out, "elsewhere") {
		t.Fatalf("unexpected path output: %q", out)
	}
}

func TestEmitThenShowJSON(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	cfgPath := writeTestConfig(t, root)

	out, err := runCommand(t, "--config", cfgPath, "emit",
		"--event", "turn_start", "--duration", "0.5", "--step", "3", "--rank", "1",
		"tool=search")
	if err != nil {
		t.Fatalf("emit returned error: %v (output %q)", err, out)
	}

	out, err = runCommand(t, "--config", cfgPath, "show", "--step", "3", "--rank", "1", "--json")
	if err != nil {
		t.Fatalf("show returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), out)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("parse event: %v", err)
	}
	if entry["event"] != "turn_start" || entry["duration_sec"] != 0.5 || entry["tool"] != "search" {
		t.Fatalf("unexpected event: %v", entry)
	}
	if entry["step"] != float64(3) || entry["worker"] != float64(1) {
		t.Fatalf("unexpected step/worker: %v", entry)
	}
}

func TestPruneDisabledByDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfgPath := writeTestConfig(t, t.TempDir())

	out, err := runCommand(t, "--config", cfgPath, "prune")
	if err != nil {
		t.Fatalf("prune returned error: %v", err)
	}
	if !strings.Contains(out, "Retention disabled") {
		t.Fatalf("unexpected prune output: %q", out)
	}
}

func TestConfigShowEmitsTOML(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	cfgPath := writeTestConfig(t, root)

	out, err := runCommand(t, "--config", cfgPath, "config", "show")
	if err != nil {
		t.Fatalf("config show returned error: %v", err)
	}
	if !strings.Contains(out, "log_root") || !strings.Contains(out, "experiment") {
		t.Fatalf("unexpected config output: %q", out)
	}
}
