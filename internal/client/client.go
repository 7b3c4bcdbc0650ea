// Package client talks to a running softkilld over its HTTP API: it submits
// missions, waits for them and fetches results.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/talgya/softkill/internal/config"
	"github.com/talgya/softkill/internal/engine"
)

// ErrNotFound is returned when the server has no such simulation.
var ErrNotFound = errors.New("simulation not found")

// StatusError is a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Submission is the response to POST /api/simulations.
type Submission struct {
	ID        string    `json:"simulation_id"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Simulation mirrors GET /api/simulations/{id}.
type Simulation struct {
	ID          string             `json:"simulation_id"`
	Status      string             `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	CompletedAt *time.Time         `json:"completed_at"`
	Age         string             `json:"age"`
	Error       string             `json:"error"`
	Result      *engine.MissionRun `json:"result"`
}

// Done reports whether the simulation has stopped running.
func (s *Simulation) Done() bool {
	return s.Status != "running"
}

// Client wraps the job API.
type Client struct {
	BaseURL    string
	AdminKey   string // Sent as a bearer token when set
	HTTPClient *http.Client
}

// New creates a Client targeting the given API base URL.
func New(baseURL, adminKey string) *Client {
	return &Client{
		BaseURL:  baseURL,
		AdminKey: adminKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Health checks GET /api/health.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &out); err != nil {
		return err
	}
	if out.Status != "healthy" {
		return fmt.Errorf("server reports %q", out.Status)
	}
	return nil
}

// WaitReady polls the health endpoint with exponential backoff until it
// responds or ctx ends.
func (c *Client) WaitReady(ctx context.Context) error {
	backoff := 250 * time.Millisecond
	maxBackoff := 10 * time.Second

	for {
		err := c.Health(ctx)
		if err == nil {
			slog.Info("softkilld API is ready", "url", c.BaseURL)
			return nil
		}
		slog.Info("softkilld not ready, retrying", "backoff", backoff, "error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for %s: %w", c.BaseURL, ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// Submit starts a simulation. A nil cfg runs the server's default squad.
func (c *Client) Submit(ctx context.Context, cfg *config.Simulation) (*Submission, error) {
	body := map[string]any{"config": cfg}
	var sub Submission
	if err := c.do(ctx, http.MethodPost, "/api/simulations", body, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Get fetches one simulation with its result.
func (c *Client) Get(ctx context.Context, id string) (*Simulation, error) {
	var sim Simulation
	if err := c.do(ctx, http.MethodGet, "/api/simulations/"+id, nil, &sim); err != nil {
		return nil, err
	}
	return &sim, nil
}

// List fetches the most recent simulations, without results.
func (c *Client) List(ctx context.Context, limit int) ([]Simulation, error) {
	var out struct {
		Simulations []Simulation `json:"simulations"`
	}
	path := fmt.Sprintf("/api/simulations?limit=%d", limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Simulations, nil
}

// Delete removes a simulation.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/simulations/"+id, nil, nil)
}

// Wait polls a simulation every interval until it leaves the running state.
func (c *Client) Wait(ctx context.Context, id string, interval time.Duration) (*Simulation, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		sim, err := c.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if sim.Done() {
			return sim, nil
		}
		slog.Debug("simulation still running", "simulation", id)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for %s: %w", id, ctx.Err())
		case <-ticker.C:
		}
	}
}

// do sends a request and decodes the JSON response into target, if any.
func (c *Client) do(ctx context.Context, method, path string, body, target any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AdminKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.AdminKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && strings.HasPrefix(path, "/api/simulations/") {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
	}

	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
