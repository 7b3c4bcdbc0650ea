package main

import (
	"bytes"
	"context"
	"net"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"

	"github.com/talgya/softkill/internal/api"
	"github.com/talgya/softkill/internal/persistence"
	"github.com/talgya/softkill/internal/rpc"
)

const missionYAML = `agents:
  - role: Longsight
    species: Vyr'khai
  - role: Specter
    species: Zephryl
mission:
  num_timesteps: 10
  seed: 5
q_learning:
  episodes: 100
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mission.yaml")
	if err := os.WriteFile(path, []byte(missionYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func openDB(t *testing.T) *persistence.DB {
	t.Helper()
	db, err := persistence.Open(filepath.Join(t.TempDir(), "ctl.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunOverHTTP(t *testing.T) {
	s := &api.Server{DB: openDB(t), AdminKey: "k"}
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	var stdout, stderr bytes.Buffer
	args := []string{"-api", ts.URL, "-key", "k", "-config", writeConfig(t), "-poll", "20ms"}
	if code := run(context.Background(), args, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "Final Rewards:") || !strings.Contains(out, "Longsight") || !strings.Contains(out, "Specter") {
		t.Fatalf("output:\n%s", out)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.Drain(ctx)
}

func TestRunOverGRPC(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := grpc.NewServer()
	rpc.RegisterMissionServiceServer(srv, &rpc.Service{DB: openDB(t)})
	go srv.Serve(lis)
	defer srv.Stop()

	var stdout, stderr bytes.Buffer
	args := []string{"-grpc", lis.Addr().String(), "-config", writeConfig(t)}
	if code := run(context.Background(), args, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Specter") {
		t.Fatalf("output:\n%s", stdout.String())
	}
}

func TestRunDaemonUnavailable(t *testing.T) {
	var stdout, stderr bytes.Buffer
	args := []string{"-api", "http://127.0.0.1:1", "-ready-timeout", "300ms"}
	if code := run(context.Background(), args, &stdout, &stderr); code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
}
