// Package reward scores agent actions in a mission context. A score is the
// sum of a per-role base value, scenario, terrain and weather modifiers, an
// optional ethics bonus and bounded uniform noise.
package reward

import (
	"log/slog"

	"github.com/talgya/softkill/internal/agents"
	"github.com/talgya/softkill/internal/entropy"
	"github.com/talgya/softkill/internal/world"
)

// NoiseAmplitude bounds the noise term to [-NoiseAmplitude, NoiseAmplitude).
const NoiseAmplitude = 1.5

// Scorer is implemented by anything that can score an action. The trainer
// and the simulation loop share it.
type Scorer interface {
	Calculate(role agents.Role, action agents.ActionKind, scenario, terrain, weather string) float64
}

// Model is the contextual reward model. Lookup misses contribute zero.
type Model struct {
	ethics bool
	src    *entropy.Source
}

// NewModel creates a model drawing noise from src.
func NewModel(ethics bool, src *entropy.Source) *Model {
	slog.Debug("reward model ready", "ethics", ethics)
	return &Model{ethics: ethics, src: src}
}

// Ethics reports whether the ethics bonus is applied.
func (m *Model) Ethics() bool {
	return m.ethics
}

// Calculate scores an action. It draws exactly one noise sample from the
// model's source per call.
func (m *Model) Calculate(role agents.Role, action agents.ActionKind, scenario, terrain, weather string) float64 {
	return m.Expected(role, action, scenario, terrain, weather) +
		m.src.Uniform(-NoiseAmplitude, NoiseAmplitude)
}

// Expected is the deterministic part of Calculate.
func (m *Model) Expected(role agents.Role, action agents.ActionKind, scenario, terrain, weather string) float64 {
	if int(action) >= agents.NumActions {
		return 0
	}
	key := world.InferScenarioKey(scenario)

	total := baseRewards[role][action]
	total += scenarioModifiers[key][action]
	total += terrainModifiers[terrain][action]
	total += weatherModifiers[weather][action]
	if m.ethics {
		total += EthicsBonus(role, action, key)
	}
	return total
}

// EthicsBonus sums every ethics rule matching the role, action and
// scenario key.
func EthicsBonus(role agents.Role, action agents.ActionKind, key string) float64 {
	bonus := 0.0
	for _, r := range ethicsRules {
		if r.matches(role, action, key) {
			bonus += r.Bonus
		}
	}
	return bonus
}

// BaseReward returns the role's unmodified value for an action.
func BaseReward(role agents.Role, action agents.ActionKind) float64 {
	if int(action) >= agents.NumActions {
		return 0
	}
	return baseRewards[role][action]
}
