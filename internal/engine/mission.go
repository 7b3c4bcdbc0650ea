package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/talgya/softkill/internal/agents"
	"github.com/talgya/softkill/internal/world"
)

// RunConfig echoes the settings a mission ran with.
type RunConfig struct {
	NumTimesteps      int   `json:"num_timesteps"`
	EthicsEnabled     bool  `json:"ethics_enabled"`
	QLearningEpisodes int   `json:"q_learning_episodes"`
	Seed              int64 `json:"seed"`
}

// AgentRecord is one agent's share of a MissionRun.
type AgentRecord struct {
	Role          string              `json:"role"`
	Species       string              `json:"species"`
	Stats         agents.AttributeSet `json:"stats"`
	FinalReward   float64             `json:"final_reward"`
	RewardHistory []float64           `json:"reward_history"` // Cumulative reward after each tick
	Trajectory    []agents.Position   `json:"trajectory"`     // Ticks + 1 positions
}

// MissionRun is the write-once result of a simulation. Agents keep squad
// order and MissionLog keeps tick order.
type MissionRun struct {
	Scenario   world.Context
	Config     RunConfig
	Agents     []AgentRecord
	MissionLog []string
}

// Roles returns the agent roles in squad order.
func (r *MissionRun) Roles() []string {
	out := make([]string, len(r.Agents))
	for i, a := range r.Agents {
		out[i] = a.Role
	}
	return out
}

// Agent looks up an agent record by role.
func (r *MissionRun) Agent(role string) (AgentRecord, bool) {
	for _, a := range r.Agents {
		if a.Role == role {
			return a, true
		}
	}
	return AgentRecord{}, false
}

// FinalRewards maps role to cumulative reward.
func (r *MissionRun) FinalRewards() map[string]float64 {
	out := make(map[string]float64, len(r.Agents))
	for _, a := range r.Agents {
		out[a.Role] = a.FinalReward
	}
	return out
}

// ToMap renders the run as plain nested maps and slices holding only
// strings, numbers, bools, []any and map[string]any. The roles list carries
// squad order, which map keys cannot.
func (r *MissionRun) ToMap() map[string]any {
	roles := make([]any, len(r.Agents))
	stats := make(map[string]any, len(r.Agents))
	species := make(map[string]any, len(r.Agents))
	finals := make(map[string]any, len(r.Agents))
	history := make(map[string]any, len(r.Agents))
	trajectories := make(map[string]any, len(r.Agents))

	for i, a := range r.Agents {
		roles[i] = a.Role
		species[a.Role] = a.Species
		finals[a.Role] = a.FinalReward

		s := make(map[string]any, agents.NumAttributes)
		for k, v := range a.Stats.Map() {
			s[k] = v
		}
		stats[a.Role] = s

		h := make([]any, len(a.RewardHistory))
		for j, v := range a.RewardHistory {
			h[j] = v
		}
		history[a.Role] = h

		tr := make([]any, len(a.Trajectory))
		for j, p := range a.Trajectory {
			tr[j] = []any{p.X, p.Y}
		}
		trajectories[a.Role] = tr
	}

	log := make([]any, len(r.MissionLog))
	for i, line := range r.MissionLog {
		log[i] = line
	}

	return map[string]any{
		"scenario": map[string]any{
			"galaxy":      r.Scenario.Galaxy,
			"planet":      r.Scenario.Planet,
			"terrain":     r.Scenario.Terrain,
			"weather":     r.Scenario.Weather,
			"description": r.Scenario.Narrative,
		},
		"config": map[string]any{
			"num_timesteps":       r.Config.NumTimesteps,
			"ethics_enabled":      r.Config.EthicsEnabled,
			"q_learning_episodes": r.Config.QLearningEpisodes,
			"seed":                r.Config.Seed,
		},
		"roles":          roles,
		"species":        species,
		"agent_stats":    stats,
		"final_rewards":  finals,
		"reward_history": history,
		"trajectories":   trajectories,
		"mission_log":    log,
	}
}

// ErrMalformedRun is returned when a map does not describe a MissionRun.
var ErrMalformedRun = errors.New("malformed mission run")

// FromMap rebuilds a MissionRun from the ToMap layout. Numbers may arrive as
// any Go numeric type or json.Number.
func FromMap(m map[string]any) (*MissionRun, error) {
	run := &MissionRun{}

	sc, err := field[map[string]any](m, "scenario")
	if err != nil {
		return nil, err
	}
	run.Scenario = world.Context{
		Galaxy:    str(sc["galaxy"]),
		Planet:    str(sc["planet"]),
		Terrain:   str(sc["terrain"]),
		Weather:   str(sc["weather"]),
		Narrative: str(sc["description"]),
	}

	cfg, err := field[map[string]any](m, "config")
	if err != nil {
		return nil, err
	}
	if run.Config.NumTimesteps, err = toInt(cfg["num_timesteps"]); err != nil {
		return nil, fmt.Errorf("config.num_timesteps: %w", err)
	}
	if run.Config.QLearningEpisodes, err = toInt(cfg["q_learning_episodes"]); err != nil {
		return nil, fmt.Errorf("config.q_learning_episodes: %w", err)
	}
	if run.Config.Seed, err = toInt64(cfg["seed"]); err != nil {
		return nil, fmt.Errorf("config.seed: %w", err)
	}
	run.Config.EthicsEnabled, _ = cfg["ethics_enabled"].(bool)

	roles, err := field[[]any](m, "roles")
	if err != nil {
		return nil, err
	}
	stats, err := field[map[string]any](m, "agent_stats")
	if err != nil {
		return nil, err
	}
	finals, err := field[map[string]any](m, "final_rewards")
	if err != nil {
		return nil, err
	}
	history, err := field[map[string]any](m, "reward_history")
	if err != nil {
		return nil, err
	}
	trajectories, err := field[map[string]any](m, "trajectories")
	if err != nil {
		return nil, err
	}
	species, _ := m["species"].(map[string]any)

	for _, rv := range roles {
		role := str(rv)
		rec := AgentRecord{Role: role, Species: str(species[role])}

		if rec.Stats, err = statsFromMap(stats[role]); err != nil {
			return nil, fmt.Errorf("agent_stats[%q]: %w", role, err)
		}
		if rec.FinalReward, err = toFloat(finals[role]); err != nil {
			return nil, fmt.Errorf("final_rewards[%q]: %w", role, err)
		}

		hist, _ := history[role].([]any)
		rec.RewardHistory = make([]float64, len(hist))
		for i, v := range hist {
			if rec.RewardHistory[i], err = toFloat(v); err != nil {
				return nil, fmt.Errorf("reward_history[%q][%d]: %w", role, i, err)
			}
		}

		traj, _ := trajectories[role].([]any)
		rec.Trajectory = make([]agents.Position, len(traj))
		for i, v := range traj {
			pair, ok := v.([]any)
			if !ok || len(pair) != 2 {
				return nil, fmt.Errorf("trajectories[%q][%d]: %w", role, i, ErrMalformedRun)
			}
			x, err := toFloat(pair[0])
			if err != nil {
				return nil, err
			}
			y, err := toFloat(pair[1])
			if err != nil {
				return nil, err
			}
			rec.Trajectory[i] = agents.Position{X: x, Y: y}
		}
		run.Agents = append(run.Agents, rec)
	}

	if logLines, ok := m["mission_log"].([]any); ok {
		run.MissionLog = make([]string, len(logLines))
		for i, v := range logLines {
			run.MissionLog[i] = str(v)
		}
	}
	return run, nil
}

// MarshalJSON encodes the ToMap layout.
func (r *MissionRun) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

// UnmarshalJSON decodes the ToMap layout.
func (r *MissionRun) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return err
	}
	run, err := FromMap(m)
	if err != nil {
		return err
	}
	*r = *run
	return nil
}

// ExportJSON writes the run to path as indented JSON.
func ExportJSON(run *MissionRun, path string) error {
	data, err := json.MarshalIndent(run.ToMap(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode mission run: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func field[T any](m map[string]any, key string) (T, error) {
	v, ok := m[key].(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s: %w", key, ErrMalformedRun)
	}
	return v, nil
}

func statsFromMap(v any) (agents.AttributeSet, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return agents.AttributeSet{}, ErrMalformedRun
	}
	var vals [agents.NumAttributes]int
	for i := range vals {
		n, err := toInt(m[agents.Attribute(i).String()])
		if err != nil {
			return agents.AttributeSet{}, err
		}
		vals[i] = n
	}
	return agents.NewAttributeSet(vals[0], vals[1], vals[2], vals[3], vals[4])
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("expected number, got %T: %w", v, ErrMalformedRun)
	}
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case json.Number:
		return n.Int64()
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

func toInt(v any) (int, error) {
	if n, ok := v.(int); ok {
		return n, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
