package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupTeesToFile(t *testing.T) {
	dir := t.TempDir()
	stderr, err := os.Create(filepath.Join(dir, "stderr"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer stderr.Close()
	logPath := filepath.Join(dir, "run.log")

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	closer, err := Setup(Options{Verbose: true, File: logPath, Stderr: stderr})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	slog.Debug("training progress", "episode", 200)
	slog.With("simulation", "abc").Info("mission complete")
	closer.Close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 records, got %d: %s", len(lines), data)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if rec["msg"] != "mission complete" || rec["simulation"] != "abc" {
		t.Fatalf("record = %v", rec)
	}

	// A regular file is not a terminal, so the console gets JSON too.
	console, _ := os.ReadFile(stderr.Name())
	if !strings.HasPrefix(string(console), "{") {
		t.Fatalf("console output should be JSON, got %q", console)
	}
}

func TestSetupLevel(t *testing.T) {
	dir := t.TempDir()
	stderr, _ := os.Create(filepath.Join(dir, "stderr"))
	defer stderr.Close()

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	if _, err := Setup(Options{Stderr: stderr}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	slog.Debug("hidden")
	slog.Info("shown")

	out, _ := os.ReadFile(stderr.Name())
	if strings.Contains(string(out), "hidden") || !strings.Contains(string(out), "shown") {
		t.Fatalf("output = %q", out)
	}
}

func TestSetupBadFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	_, err := Setup(Options{File: filepath.Join(t.TempDir(), "missing", "run.log")})
	if err == nil {
		t.Fatal("expected error for unwritable log path")
	}
}
