// Simulation ties the scenario, reward model, trained policy and squad
// together and runs them tick by tick.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/talgya/softkill/internal/agents"
	"github.com/talgya/softkill/internal/entropy"
	"github.com/talgya/softkill/internal/learning"
	"github.com/talgya/softkill/internal/reward"
	"github.com/talgya/softkill/internal/world"
)

// Configuration failures detected before any simulation work starts.
var (
	ErrNoAgents     = errors.New("squad has no agents")
	ErrInvalidTicks = errors.New("tick count must be positive")
	ErrAlreadyRun   = errors.New("simulation already ran")
)

// Phase is the lifecycle state of a Simulation.
type Phase uint8

const (
	PhaseUninitialized Phase = iota // Nothing built yet
	PhaseReady                      // Scenario, policy and squad in place
	PhaseFinished                   // Run has returned a MissionRun
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseReady:
		return "ready"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Options are the mission-level settings.
type Options struct {
	Ticks    int
	Ethics   bool
	Training learning.Hyperparams
	Override world.Override // Applied on top of the generated scenario
	Seed     int64          // 0 draws a seed from crypto/rand
}

// Simulation holds one mission's state. It is not safe for concurrent use.
type Simulation struct {
	opts  Options
	specs []agents.Spec
	src   *entropy.Source
	phase Phase

	preset *world.Context // Explicit scenario; skips generation

	Scenario world.Context
	Model    *reward.Model
	Policy   *learning.Table
	Squad    *agents.Squad
}

// NewSimulation prepares a mission for the given agent specs. Nothing is
// built until Setup or Run.
func NewSimulation(specs []agents.Spec, opts Options) *Simulation {
	return &Simulation{
		opts:  opts,
		specs: specs,
		src:   entropy.New(opts.Seed),
	}
}

// WithScenario fixes the mission context instead of generating one.
func (s *Simulation) WithScenario(ctx world.Context) *Simulation {
	s.preset = &ctx
	return s
}

// Seed returns the seed the mission draws from.
func (s *Simulation) Seed() int64 {
	return s.src.Seed()
}

// Phase returns the current lifecycle state.
func (s *Simulation) Phase() Phase {
	return s.phase
}

// Setup creates the scenario, trains the policy table once and builds the
// squad, in that order. Degenerate inputs are rejected before any random
// draw.
func (s *Simulation) Setup() error {
	if s.phase != PhaseUninitialized {
		return nil
	}
	start := time.Now()

	if s.opts.Ticks <= 0 {
		return fmt.Errorf("ticks %d: %w", s.opts.Ticks, ErrInvalidTicks)
	}
	if (s.Squad == nil && len(s.specs) == 0) || (s.Squad != nil && s.Squad.Len() == 0) {
		return ErrNoAgents
	}

	// Validated up front so a bad config consumes no draws.
	if err := s.opts.Training.Validate(); err != nil {
		return err
	}
	if s.Squad == nil {
		if err := agents.ValidateSpecs(s.specs); err != nil {
			return fmt.Errorf("build squad: %w", err)
		}
	}

	if s.preset != nil {
		s.Scenario = *s.preset
	} else {
		s.Scenario = world.Generate(s.src).Apply(s.opts.Override)
	}

	s.Model = reward.NewModel(s.opts.Ethics, s.src)
	trainer, err := learning.NewTrainer(s.opts.Training, s.Model, s.src)
	if err != nil {
		return err
	}
	s.Policy = trainer.Train(agents.TrainedRole)

	if s.Squad == nil {
		squad, err := agents.BuildSquad(s.specs)
		if err != nil {
			return fmt.Errorf("build squad: %w", err)
		}
		s.Squad = squad
	}

	s.phase = PhaseReady
	slog.Info("setup complete",
		"agents", s.Squad.Len(),
		"seed", s.Seed(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// Run executes every tick and returns the mission record. Setup runs first
// if it has not already. A tick failure aborts the run and no MissionRun is
// returned.
func (s *Simulation) Run() (*MissionRun, error) {
	switch s.phase {
	case PhaseUninitialized:
		if err := s.Setup(); err != nil {
			return nil, err
		}
	case PhaseFinished:
		return nil, ErrAlreadyRun
	}
	start := time.Now()

	// A nil *learning.Table must not become a non-nil interface.
	var policy agents.Policy
	if s.Policy != nil {
		policy = s.Policy
	}

	run := &MissionRun{
		Scenario: s.Scenario,
		Config: RunConfig{
			NumTimesteps:      s.opts.Ticks,
			EthicsEnabled:     s.Model.Ethics(),
			QLearningEpisodes: s.opts.Training.Episodes,
			Seed:              s.Seed(),
		},
		MissionLog: missionHeader(s.Scenario, s.Model.Ethics(), s.opts.Ticks),
	}
	history := make(map[string][]float64, s.Squad.Len())

	eng := NewEngine(s.opts.Ticks)
	eng.OnTick = func(tick int) error {
		results, err := Step(s.Squad, s.Scenario, s.Model, policy, s.src)
		if err != nil {
			return err
		}
		for _, r := range results {
			history[r.Role] = append(history[r.Role], r.Total)
			run.MissionLog = append(run.MissionLog, r.LogLine(tick))
		}
		return nil
	}
	eng.OnProgress = func(done int) {
		slog.Info("mission progress", "tick", done, "of", s.opts.Ticks)
	}

	if err := eng.Run(); err != nil {
		return nil, err
	}

	for _, a := range s.Squad.Members() {
		traj := make([]agents.Position, len(a.Trajectory))
		copy(traj, a.Trajectory)
		run.Agents = append(run.Agents, AgentRecord{
			Role:          a.Role,
			Species:       a.Species,
			Stats:         a.Stats,
			FinalReward:   a.CumulativeReward,
			RewardHistory: history[a.Role],
			Trajectory:    traj,
		})
	}

	s.phase = PhaseFinished
	slog.Info("mission complete",
		"ticks", s.opts.Ticks,
		"log_lines", len(run.MissionLog),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return run, nil
}

// RunMission runs a mission for an already-built squad. A nil scenario is
// generated from the seed.
func RunMission(squad *agents.Squad, scenario *world.Context, opts Options) (*MissionRun, error) {
	sim := NewSimulation(nil, opts)
	if squad == nil {
		return nil, ErrNoAgents
	}
	sim.Squad = squad
	if scenario != nil {
		sim.WithScenario(*scenario)
	}
	return sim.Run()
}

func missionHeader(ctx world.Context, ethics bool, ticks int) []string {
	mode := "DISABLED"
	if ethics {
		mode = "ENABLED"
	}
	return []string{
		ctx.String(),
		"Ethics Mode: " + mode,
		fmt.Sprintf("Mission Duration: %d ticks", ticks),
		strings.Repeat("=", 80),
	}
}
