// Package config loads and validates simulation configuration from YAML or
// JSON, filling defaults for every omitted field.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/softkill/internal/agents"
	"github.com/talgya/softkill/internal/engine"
	"github.com/talgya/softkill/internal/learning"
	"github.com/talgya/softkill/internal/world"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Documented ranges.
const (
	MinTimesteps = 10
	MaxTimesteps = 500
	MinEpisodes  = 100
	MaxEpisodes  = 10000
)

// Agent configures one squad member.
type Agent struct {
	Role             string `yaml:"role" json:"role"`
	Species          string `yaml:"species" json:"species"`
	BaseStrength     int    `yaml:"base_strength" json:"base_strength"`
	BaseEmpathy      int    `yaml:"base_empathy" json:"base_empathy"`
	BaseIntelligence int    `yaml:"base_intelligence" json:"base_intelligence"`
	BaseMobility     int    `yaml:"base_mobility" json:"base_mobility"`
	BaseTactical     int    `yaml:"base_tactical" json:"base_tactical"`
}

// Mission configures the scenario and run length. Empty scenario fields are
// generated.
type Mission struct {
	Galaxy        string `yaml:"galaxy,omitempty" json:"galaxy,omitempty"`
	Planet        string `yaml:"planet,omitempty" json:"planet,omitempty"`
	Terrain       string `yaml:"terrain,omitempty" json:"terrain,omitempty"`
	Weather       string `yaml:"weather,omitempty" json:"weather,omitempty"`
	Scenario      string `yaml:"scenario,omitempty" json:"scenario,omitempty"`
	NumTimesteps  int    `yaml:"num_timesteps" json:"num_timesteps"`
	EthicsEnabled bool   `yaml:"ethics_enabled" json:"ethics_enabled"`
	Seed          int64  `yaml:"seed,omitempty" json:"seed,omitempty"` // 0 picks a random seed
}

// QLearning configures policy training.
type QLearning struct {
	Episodes int     `yaml:"episodes" json:"episodes"`
	Gamma    float64 `yaml:"gamma" json:"gamma"`
	Alpha    float64 `yaml:"alpha" json:"alpha"`
	Epsilon  float64 `yaml:"epsilon" json:"epsilon"`
}

// Simulation is a complete run configuration.
type Simulation struct {
	Agents    []Agent   `yaml:"agents" json:"agents"`
	Mission   Mission   `yaml:"mission" json:"mission"`
	QLearning QLearning `yaml:"q_learning" json:"q_learning"`
}

// NewAgent returns an agent config with default base attributes.
func NewAgent(role, species string) Agent {
	return Agent{
		Role:             role,
		Species:          species,
		BaseStrength:     agents.DefaultAttribute,
		BaseEmpathy:      agents.DefaultAttribute,
		BaseIntelligence: agents.DefaultAttribute,
		BaseMobility:     agents.DefaultAttribute,
		BaseTactical:     agents.DefaultAttribute,
	}
}

// DefaultMission returns the mission defaults.
func DefaultMission() Mission {
	return Mission{NumTimesteps: 60, EthicsEnabled: true}
}

// DefaultQLearning returns the training defaults.
func DefaultQLearning() QLearning {
	hp := learning.DefaultHyperparams()
	return QLearning{Episodes: hp.Episodes, Gamma: hp.Gamma, Alpha: hp.Alpha, Epsilon: hp.Epsilon}
}

// DefaultSquad fields every role with its canonical species.
func DefaultSquad() []Agent {
	roles := agents.Roles()
	out := make([]Agent, 0, len(roles))
	for _, r := range roles {
		out = append(out, NewAgent(r.String(), r.CanonicalSpecies()))
	}
	return out
}

// Default returns a full configuration with the default squad.
func Default() Simulation {
	return Simulation{
		Agents:    DefaultSquad(),
		Mission:   DefaultMission(),
		QLearning: DefaultQLearning(),
	}
}

// Load reads, decodes and validates a YAML configuration file.
func Load(path string) (Simulation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Simulation{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML. JSON is valid YAML, so API bodies parse
// here as well.
func Parse(data []byte) (Simulation, error) {
	var s Simulation
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Simulation{}, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Simulation{}, err
	}
	return s, nil
}

// Validate checks every documented range.
func (s Simulation) Validate() error {
	if len(s.Agents) == 0 {
		return fmt.Errorf("%w: at least one agent must be configured", ErrInvalid)
	}
	seen := make(map[string]bool, len(s.Agents))
	for i, a := range s.Agents {
		if a.Role == "" {
			return fmt.Errorf("%w: agents[%d]: role is required", ErrInvalid, i)
		}
		if seen[a.Role] {
			return fmt.Errorf("%w: agents[%d]: duplicate role %q", ErrInvalid, i, a.Role)
		}
		seen[a.Role] = true
		if err := a.base().Validate(); err != nil {
			return fmt.Errorf("%w: agents[%d] (%s): %v", ErrInvalid, i, a.Role, err)
		}
	}

	m := s.Mission
	if m.NumTimesteps < MinTimesteps || m.NumTimesteps > MaxTimesteps {
		return fmt.Errorf("%w: mission.num_timesteps %d outside [%d, %d]",
			ErrInvalid, m.NumTimesteps, MinTimesteps, MaxTimesteps)
	}

	q := s.QLearning
	if q.Episodes < MinEpisodes || q.Episodes > MaxEpisodes {
		return fmt.Errorf("%w: q_learning.episodes %d outside [%d, %d]",
			ErrInvalid, q.Episodes, MinEpisodes, MaxEpisodes)
	}
	if err := s.Hyperparams().Validate(); err != nil {
		return fmt.Errorf("%w: q_learning: %v", ErrInvalid, err)
	}
	return nil
}

func (a Agent) base() agents.AttributeSet {
	return agents.AttributeSet{
		Strength:     a.BaseStrength,
		Empathy:      a.BaseEmpathy,
		Intelligence: a.BaseIntelligence,
		Mobility:     a.BaseMobility,
		Tactical:     a.BaseTactical,
	}
}

// Specs converts the agent list to squad build specs, in order.
func (s Simulation) Specs() []agents.Spec {
	out := make([]agents.Spec, len(s.Agents))
	for i, a := range s.Agents {
		out[i] = agents.Spec{Role: a.Role, Species: a.Species, Base: a.base()}
	}
	return out
}

// Hyperparams returns the training settings.
func (s Simulation) Hyperparams() learning.Hyperparams {
	return learning.Hyperparams{
		Episodes: s.QLearning.Episodes,
		Gamma:    s.QLearning.Gamma,
		Alpha:    s.QLearning.Alpha,
		Epsilon:  s.QLearning.Epsilon,
	}
}

// Options returns the engine settings for this configuration.
func (s Simulation) Options() engine.Options {
	m := s.Mission
	return engine.Options{
		Ticks:    m.NumTimesteps,
		Ethics:   m.EthicsEnabled,
		Training: s.Hyperparams(),
		Override: world.Override{
			Galaxy:   m.Galaxy,
			Planet:   m.Planet,
			Terrain:  m.Terrain,
			Weather:  m.Weather,
			Scenario: m.Scenario,
		},
		Seed: m.Seed,
	}
}

// Defaults for omitted fields are applied by decoding onto a pre-filled
// value of a method-less alias type.

func (a *Agent) UnmarshalYAML(node *yaml.Node) error {
	type raw Agent
	r := raw(NewAgent("", ""))
	if err := node.Decode(&r); err != nil {
		return err
	}
	*a = Agent(r)
	return nil
}

func (a *Agent) UnmarshalJSON(data []byte) error {
	type raw Agent
	r := raw(NewAgent("", ""))
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*a = Agent(r)
	return nil
}

func (m *Mission) UnmarshalYAML(node *yaml.Node) error {
	type raw Mission
	r := raw(DefaultMission())
	if err := node.Decode(&r); err != nil {
		return err
	}
	*m = Mission(r)
	return nil
}

func (m *Mission) UnmarshalJSON(data []byte) error {
	type raw Mission
	r := raw(DefaultMission())
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*m = Mission(r)
	return nil
}

func (q *QLearning) UnmarshalYAML(node *yaml.Node) error {
	type raw QLearning
	r := raw(DefaultQLearning())
	if err := node.Decode(&r); err != nil {
		return err
	}
	*q = QLearning(r)
	return nil
}

func (q *QLearning) UnmarshalJSON(data []byte) error {
	type raw QLearning
	r := raw(DefaultQLearning())
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*q = QLearning(r)
	return nil
}

func (s *Simulation) UnmarshalYAML(node *yaml.Node) error {
	type raw Simulation
	r := raw{Mission: DefaultMission(), QLearning: DefaultQLearning()}
	if err := node.Decode(&r); err != nil {
		return err
	}
	*s = Simulation(r)
	return nil
}

func (s *Simulation) UnmarshalJSON(data []byte) error {
	type raw Simulation
	r := raw{Mission: DefaultMission(), QLearning: DefaultQLearning()}
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*s = Simulation(r)
	return nil
}
