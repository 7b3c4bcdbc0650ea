package main

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/softkill/internal/config"
	"github.com/talgya/softkill/internal/persistence"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestRecoverStore(t *testing.T) {
	logs := captureLogs(t)
	db, err := persistence.Open(filepath.Join(t.TempDir(), "d.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	job, err := db.CreateJob(config.Default())
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	recoverStore(db, "9.9.9")

	got, err := db.GetJob(job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != persistence.StatusFailed {
		t.Fatalf("left-over job status = %s", got.Status)
	}
	if v, err := db.GetMeta("version"); err != nil || v != "9.9.9" {
		t.Fatalf("version meta = %q, %v", v, err)
	}
	if _, err := db.GetMeta("started_at"); err != nil {
		t.Fatalf("started_at meta: %v", err)
	}
	if strings.Contains(logs.String(), "failed to record") {
		t.Fatalf("unexpected write failure:\n%s", logs)
	}
}

func TestRecoverStoreLogsWriteFailures(t *testing.T) {
	logs := captureLogs(t)
	db, err := persistence.Open(filepath.Join(t.TempDir(), "d.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	db.Close()

	recoverStore(db, "9.9.9")

	out := logs.String()
	for _, want := range []string{"failed to record start time", "failed to record version"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in logs:\n%s", want, out)
		}
	}
}
