// Package api provides the HTTP API for running missions as background jobs.
// GET endpoints are public. Submitting and deleting simulations require a
// bearer token when an admin key is configured.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/softkill/internal/agents"
	"github.com/talgya/softkill/internal/config"
	"github.com/talgya/softkill/internal/engine"
	"github.com/talgya/softkill/internal/persistence"
	"github.com/talgya/softkill/internal/world"
)

const (
	maxBodyBytes       = 1 << 20
	defaultListLimit   = 100
	maxListLimit       = 1000
	defaultSubmitLimit = 30 // per client per hour
)

// Server serves the simulation job API over HTTP.
type Server struct {
	DB          *persistence.DB
	Port        int
	Version     string
	AdminKey    string   // Bearer token for POST and DELETE. Empty = open.
	CORSOrigins []string // Allowed in addition to the localhost dev servers
	SubmitLimit int      // Submissions per client per hour. 0 = default.

	limiter *RateLimiter
	started time.Time
	jobs    sync.WaitGroup
	active  atomic.Int32
	once    sync.Once
}

func (s *Server) init() {
	s.once.Do(func() {
		limit := s.SubmitLimit
		if limit <= 0 {
			limit = defaultSubmitLimit
		}
		s.limiter = NewRateLimiter(limit, time.Hour)
		s.started = time.Now()
		if s.Version == "" {
			s.Version = "dev"
		}
	})
}

// Handler returns the API routes wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	s.init()
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.HandleFunc("POST /api/simulations", s.adminOnly(RateLimitMiddleware(s.limiter, s.handleCreate)))
	mux.HandleFunc("GET /api/simulations", s.handleList)
	mux.HandleFunc("GET /api/simulations/{id}", s.handleGet)
	mux.HandleFunc("DELETE /api/simulations/{id}", s.adminOnly(s.handleDelete))
	mux.HandleFunc("GET /api/simulations/{id}/relief", s.handleRelief)

	mux.HandleFunc("GET /api/config/species", s.handleSpecies)
	mux.HandleFunc("GET /api/config/roles", s.handleRoles)
	mux.HandleFunc("GET /api/config/scenarios", s.handleScenarios)

	return corsMiddleware(s.CORSOrigins, mux)
}

// Start begins serving the HTTP API in a goroutine. The returned server is
// for shutdown.
func (s *Server) Start() *http.Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", srv.Addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// Drain waits for background simulations to finish or ctx to end.
func (s *Server) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.jobs.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain with %d simulations running: %w", s.active.Load(), ctx.Err())
	}
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	for _, o := range origins {
		allowedOrigins[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(token), []byte(s.AdminKey)) == 1
}

// adminOnly wraps a handler to require bearer token auth when an admin key
// is set.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey != "" && !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"name":        "SOFTKILL-9000 API",
		"version":     s.Version,
		"description": "Multi-Agent Cosmic Mission Simulator",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"up_since":    humanize.Time(s.started),
		"active_jobs": s.active.Load(),
	})
}

// jobView is the wire form of a persisted job.
type jobView struct {
	ID          string             `json:"simulation_id"`
	Status      persistence.Status `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	CompletedAt *time.Time         `json:"completed_at"`
	Age         string             `json:"age"`
	Error       string             `json:"error,omitempty"`
	Config      *config.Simulation `json:"config,omitempty"`
	Result      *engine.MissionRun `json:"result,omitempty"`
}

func viewOf(j *persistence.Job, detail bool) jobView {
	v := jobView{
		ID:        j.ID,
		Status:    j.Status,
		CreatedAt: j.CreatedAt,
		Age:       humanize.Time(j.CreatedAt),
		Error:     j.Error,
	}
	if j.Status != persistence.StatusRunning {
		done := j.UpdatedAt
		v.CompletedAt = &done
	}
	if detail {
		cfg := j.Config
		v.Config = &cfg
		v.Result = j.Result
	}
	return v
}

// handleCreate accepts {"config": {...}}. An empty body or null config runs
// the default squad.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Config *config.Simulation `json:"config"`
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	cfg := config.Default()
	if req.Config != nil {
		cfg = *req.Config
	}
	if err := cfg.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	job, err := s.DB.CreateJob(cfg)
	if err != nil {
		slog.Error("create simulation", "error", err)
		http.Error(w, "failed to create simulation", http.StatusInternalServerError)
		return
	}
	slog.Info("simulation accepted", "simulation", job.ID, "agents", len(cfg.Agents))

	s.jobs.Add(1)
	go s.runJob(job.ID, cfg)

	writeJSONStatus(w, http.StatusAccepted, map[string]any{
		"simulation_id": job.ID,
		"status":        job.Status,
		"message":       "Simulation started successfully",
		"created_at":    job.CreatedAt,
	})
}

// runJob executes one simulation and records its outcome.
func (s *Server) runJob(id string, cfg config.Simulation) {
	defer s.jobs.Done()
	s.active.Add(1)
	defer s.active.Add(-1)

	log := slog.With("simulation", id)
	start := time.Now()
	log.Info("running simulation")

	run, err := engine.NewSimulation(cfg.Specs(), cfg.Options()).Run()
	if err != nil {
		log.Error("simulation failed", "error", err)
		if ferr := s.DB.FailJob(id, err); ferr != nil {
			log.Warn("record failure", "error", ferr)
		}
		return
	}
	if err := s.DB.CompleteJob(id, run); err != nil {
		// A DELETE during the run lands here as ErrNotFound.
		log.Warn("record result", "error", err)
		return
	}
	log.Info("simulation completed", "elapsed", time.Since(start).Round(time.Millisecond))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxListLimit)
	}

	jobs, err := s.DB.ListJobs(limit)
	if err != nil {
		slog.Error("list simulations", "error", err)
		http.Error(w, "failed to list simulations", http.StatusInternalServerError)
		return
	}
	counts, err := s.DB.CountByStatus()
	if err != nil {
		slog.Error("count simulations", "error", err)
		http.Error(w, "failed to list simulations", http.StatusInternalServerError)
		return
	}

	views := make([]jobView, len(jobs))
	total := 0
	for i, j := range jobs {
		views[i] = viewOf(j, false)
	}
	for _, n := range counts {
		total += n
	}
	writeJSON(w, map[string]any{
		"simulations": views,
		"total":       total,
		"counts":      counts,
	})
}

// lookup loads the job named by the path, writing the error response itself
// when it fails.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*persistence.Job, bool) {
	id := r.PathValue("id")
	job, err := s.DB.GetJob(id)
	if errors.Is(err, persistence.ErrNotFound) {
		http.Error(w, fmt.Sprintf("simulation %s not found", id), http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		slog.Error("get simulation", "simulation", id, "error", err)
		http.Error(w, "failed to load simulation", http.StatusInternalServerError)
		return nil, false
	}
	return job, true
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, viewOf(job, true))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := s.DB.DeleteJob(id)
	if errors.Is(err, persistence.ErrNotFound) {
		http.Error(w, fmt.Sprintf("simulation %s not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("delete simulation", "simulation", id, "error", err)
		http.Error(w, "failed to delete simulation", http.StatusInternalServerError)
		return
	}
	slog.Info("simulation deleted", "simulation", id)
	writeJSON(w, map[string]string{"message": fmt.Sprintf("Simulation %s deleted successfully", id)})
}

// handleRelief returns the surface relief of a finished mission's planet,
// regenerated from its terrain and seed, with each agent's final cell.
func (s *Server) handleRelief(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if job.Result == nil {
		http.Error(w, fmt.Sprintf("simulation %s is %s", job.ID, job.Status), http.StatusConflict)
		return
	}

	type agentCell struct {
		Role         string                `json:"role"`
		Position     agents.Position       `json:"position"`
		Cell         *world.Cell           `json:"cell"`
		Surroundings map[world.Feature]int `json:"surroundings"`
	}

	run := job.Result
	terrain := run.Scenario.Terrain
	surface := world.GenerateRelief(terrain, world.DefaultReliefConfig(terrain, run.Config.Seed))

	placed := make([]agentCell, 0, len(run.Agents))
	for _, a := range run.Agents {
		if len(a.Trajectory) == 0 {
			continue
		}
		p := a.Trajectory[len(a.Trajectory)-1]
		cell := surface.CellAt(p.X, p.Y)
		placed = append(placed, agentCell{
			Role:         a.Role,
			Position:     p,
			Cell:         cell,
			Surroundings: surface.Surroundings(cell.Coord),
		})
	}

	writeJSON(w, map[string]any{
		"simulation_id":  job.ID,
		"planet":         run.Scenario.Planet,
		"terrain":        terrain,
		"seed":           run.Config.Seed,
		"radius":         surface.Radius,
		"feature_counts": surface.FeatureCounts(),
		"cells":          surface.Sorted(),
		"agents":         placed,
	})
}

func (s *Server) handleSpecies(w http.ResponseWriter, r *http.Request) {
	species := make(map[string]map[string]int)
	for _, name := range agents.Species() {
		species[name] = agents.SpeciesModifier(name).Map()
	}
	writeJSON(w, map[string]any{"species": species})
}

func (s *Server) handleRoles(w http.ResponseWriter, r *http.Request) {
	roles := make(map[string]string)
	for _, role := range agents.Roles() {
		roles[role.String()] = role.Description()
	}
	writeJSON(w, map[string]any{"roles": roles})
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"scenarios":          world.Scenarios,
		"galaxies":           world.Galaxies,
		"terrains":           world.Terrains,
		"weather_conditions": world.Weathers,
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
