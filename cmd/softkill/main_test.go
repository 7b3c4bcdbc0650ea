package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunExports(t *testing.T) {
	out := filepath.Join(t.TempDir(), "run.json")
	var stdout, stderr bytes.Buffer

	code := run([]string{"-timesteps", "10", "-seed", "77", "-export", out}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	for _, want := range []string{"MISSION COMPLETE", "Final Rewards:", "Longsight", "Specter", "seed 77"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("summary missing %q:\n%s", want, stdout.String())
		}
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	cfg := m["config"].(map[string]any)
	if cfg["num_timesteps"] != float64(10) || cfg["seed"] != float64(77) || cfg["ethics_enabled"] != true {
		t.Fatalf("config echo = %v", cfg)
	}
}

func TestRunNoEthicsAndConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	out := filepath.Join(t.TempDir(), "run.json")
	if code := run([]string{"-timesteps", "10", "-no-ethics", "-export", out}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	data, _ := os.ReadFile(out)
	if !strings.Contains(string(data), `"ethics_enabled": false`) {
		t.Fatal("ethics should be disabled in the export")
	}

	cfgPath := filepath.Join(t.TempDir(), "mission.yaml")
	os.WriteFile(cfgPath, []byte("agents:\n  - role: Whisper\n    species: Mycelian\nmission:\n  num_timesteps: 10\nq_learning:\n  episodes: 100\n"), 0o644)
	stdout.Reset()
	if code := run([]string{"-config", cfgPath, "-timesteps", "400"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Whisper") || !strings.Contains(stdout.String(), "10 decisions over 10 ticks") {
		t.Fatalf("config run summary:\n%s", stdout.String())
	}
}

func TestRunFailures(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-config", filepath.Join(t.TempDir(), "nope.yaml")}, &stdout, &stderr); code != 1 {
		t.Fatalf("missing config: exit %d", code)
	}
	if code := run([]string{"-timesteps", "3"}, &stdout, &stderr); code != 1 {
		t.Fatalf("out of range timesteps: exit %d", code)
	}
	if code := run([]string{"-bogus"}, &stdout, &stderr); code != 2 {
		t.Fatalf("unknown flag: exit %d", code)
	}

	stdout.Reset()
	if code := run([]string{"-version"}, &stdout, &stderr); code != 0 || !strings.HasPrefix(stdout.String(), "SOFTKILL-9000 v") {
		t.Fatalf("version: exit %d, %q", code, stdout.String())
	}
}
