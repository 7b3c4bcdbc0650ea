package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/talgya/softkill/internal/api"
	"github.com/talgya/softkill/internal/config"
	"github.com/talgya/softkill/internal/persistence"
)

func newAPI(t *testing.T, adminKey string) *Client {
	t.Helper()
	db, err := persistence.Open(filepath.Join(t.TempDir(), "client.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s := &api.Server{DB: db, AdminKey: adminKey}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.Drain(ctx)
		db.Close()
	})
	return New(ts.URL, adminKey)
}

func testConfig() *config.Simulation {
	cfg := config.Default()
	cfg.Agents = cfg.Agents[:3]
	cfg.Mission.NumTimesteps = 10
	cfg.Mission.Seed = 31337
	cfg.QLearning.Episodes = 100
	return &cfg
}

func TestSubmitAndWait(t *testing.T) {
	c := newAPI(t, "key")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.WaitReady(ctx); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}

	sub, err := c.Submit(ctx, testConfig())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sub.ID == "" || sub.Status != "running" {
		t.Fatalf("submission = %+v", sub)
	}

	sim, err := c.Wait(ctx, sub.ID, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if sim.Status != "completed" || sim.Result == nil {
		t.Fatalf("simulation = %+v", sim)
	}
	if sim.Result.Config.Seed != 31337 || len(sim.Result.Agents) != 3 {
		t.Fatalf("result = %+v", sim.Result.Config)
	}

	list, err := c.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ID != sub.ID || list[0].Result != nil {
		t.Fatalf("list = %+v", list)
	}

	if err := c.Delete(ctx, sub.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, sub.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSubmitErrors(t *testing.T) {
	c := newAPI(t, "key")
	ctx := context.Background()

	bad := testConfig()
	bad.Mission.NumTimesteps = 1
	_, err := c.Submit(ctx, bad)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 StatusError, got %v", err)
	}

	anon := New(c.BaseURL, "")
	_, err = anon.Submit(ctx, testConfig())
	if !errors.As(err, &se) || se.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 StatusError, got %v", err)
	}
}

func TestWaitReadyGivesUp(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "starting", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 600*time.Millisecond)
	defer cancel()
	if err := New(ts.URL, "").WaitReady(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
