package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/talgya/softkill/internal/config"
	"github.com/talgya/softkill/internal/engine"
	"github.com/talgya/softkill/internal/persistence"
)

// Service implements MissionServiceServer. Runs are recorded in DB when it
// is set; GetSimulation needs it.
type Service struct {
	DB *persistence.DB
}

var _ MissionServiceServer = (*Service)(nil)

// RunMission decodes a configuration, runs it synchronously and returns
// the MissionRun map. An empty request runs the default squad. When the run
// is stored, the response also carries "simulation_id".
func (s *Service) RunMission(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	cfg, err := decodeConfig(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	var jobID string
	if s.DB != nil {
		job, err := s.DB.CreateJob(cfg)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "create simulation: %v", err)
		}
		jobID = job.ID
	}

	start := time.Now()
	run, err := engine.NewSimulation(cfg.Specs(), cfg.Options()).Run()
	if err != nil {
		if jobID != "" {
			if ferr := s.DB.FailJob(jobID, err); ferr != nil {
				slog.Warn("record failure", "simulation", jobID, "error", ferr)
			}
		}
		return nil, status.Errorf(codes.FailedPrecondition, "run mission: %v", err)
	}
	if jobID != "" {
		if err := s.DB.CompleteJob(jobID, run); err != nil {
			slog.Warn("record result", "simulation", jobID, "error", err)
		}
	}
	slog.Info("rpc mission complete",
		"simulation", jobID,
		"seed", run.Config.Seed,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	m := run.ToMap()
	if jobID != "" {
		m["simulation_id"] = jobID
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode mission run: %v", err)
	}
	return out, nil
}

// GetSimulation looks up a stored job by {"id": "..."}.
func (s *Service) GetSimulation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.DB == nil {
		return nil, status.Error(codes.Unimplemented, "no simulation store configured")
	}
	id := req.GetFields()["id"].GetStringValue()
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	job, err := s.DB.GetJob(id)
	if errors.Is(err, persistence.ErrNotFound) {
		return nil, status.Errorf(codes.NotFound, "simulation %s not found", id)
	}
	if err != nil {
		return nil, status.Errorf(codes.Internal, "get simulation: %v", err)
	}

	m := map[string]any{
		"simulation_id": job.ID,
		"status":        string(job.Status),
		"created_at":    job.CreatedAt.Format(time.RFC3339),
		"updated_at":    job.UpdatedAt.Format(time.RFC3339),
	}
	if job.Error != "" {
		m["error"] = job.Error
	}
	if job.Result != nil {
		m["result"] = job.Result.ToMap()
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode simulation: %v", err)
	}
	return out, nil
}

// decodeConfig maps a Struct onto config.Simulation through its JSON form so
// omitted fields take their defaults.
func decodeConfig(req *structpb.Struct) (config.Simulation, error) {
	if len(req.GetFields()) == 0 {
		return config.Default(), nil
	}
	data, err := json.Marshal(req.AsMap())
	if err != nil {
		return config.Simulation{}, fmt.Errorf("encode request: %w", err)
	}
	var cfg config.Simulation
	if err := json.Unmarshal(data, &cfg); err != nil {
		return config.Simulation{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Simulation{}, err
	}
	return cfg, nil
}
