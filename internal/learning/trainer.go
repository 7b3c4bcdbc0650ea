package learning

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/softkill/internal/agents"
	"github.com/talgya/softkill/internal/entropy"
	"github.com/talgya/softkill/internal/reward"
	"github.com/talgya/softkill/internal/world"
)

// ErrHyperparameter is returned for hyperparameters outside their ranges.
var ErrHyperparameter = errors.New("invalid hyperparameter")

// Hyperparams configures a training run.
type Hyperparams struct {
	Episodes int
	Gamma    float64 // Discount, [0, 1]
	Alpha    float64 // Learning rate, [0, 1]
	Epsilon  float64 // Exploration rate, [0, 1]
}

// DefaultHyperparams returns the standard training setup.
func DefaultHyperparams() Hyperparams {
	return Hyperparams{
		Episodes: 1000,
		Gamma:    0.9,
		Alpha:    0.3,
		Epsilon:  0.2,
	}
}

// Validate rejects negative episode counts and rates outside [0, 1].
func (h Hyperparams) Validate() error {
	if h.Episodes < 0 {
		return fmt.Errorf("episodes %d: %w", h.Episodes, ErrHyperparameter)
	}
	for _, p := range []struct {
		name string
		v    float64
	}{{"gamma", h.Gamma}, {"alpha", h.Alpha}, {"epsilon", h.Epsilon}} {
		if p.v < 0 || p.v > 1 {
			return fmt.Errorf("%s %v: %w", p.name, p.v, ErrHyperparameter)
		}
	}
	return nil
}

// progressEvery is how often training progress is logged, in episodes.
const progressEvery = 200

// Trainer fits a Table for a role. It draws states, exploration coins,
// actions and the sampled terrain and weather from src, and the scorer
// draws its own noise from the same source.
type Trainer struct {
	hp     Hyperparams
	scorer reward.Scorer
	src    *entropy.Source
}

// NewTrainer validates hp and returns a trainer.
func NewTrainer(hp Hyperparams, scorer reward.Scorer, src *entropy.Source) (*Trainer, error) {
	if err := hp.Validate(); err != nil {
		return nil, err
	}
	return &Trainer{hp: hp, scorer: scorer, src: src}, nil
}

// Train runs the configured number of episodes for role. Each episode
// samples a state, picks an action epsilon-greedily, scores it under a
// random terrain and weather and updates
//
//	Q[s][a] = (1-alpha)*Q[s][a] + alpha*(r + gamma*max(Q[s]))
//
// There is no successor state: the discount term bootstraps from the same
// row.
func (t *Trainer) Train(role agents.Role) *Table {
	start := time.Now()
	table := NewTable(world.ScenarioKeys())
	n := len(table.States)

	slog.Info("training started",
		"role", role,
		"episodes", t.hp.Episodes,
		"gamma", t.hp.Gamma,
		"alpha", t.hp.Alpha,
		"epsilon", t.hp.Epsilon,
	)

	for ep := 0; ep < t.hp.Episodes; ep++ {
		state := t.src.Intn(n)

		var action agents.ActionKind
		if t.src.Float() < t.hp.Epsilon {
			action = agents.ActionKind(t.src.Intn(agents.NumActions))
		} else {
			action = table.Best(state)
		}

		terrain := entropy.Pick(t.src, world.Terrains)
		weather := entropy.Pick(t.src, world.Weathers)
		r := t.scorer.Calculate(role, action, table.States[state], terrain, weather)

		q := table.Values[state][action]
		table.Values[state][action] = (1-t.hp.Alpha)*q + t.hp.Alpha*(r+t.hp.Gamma*table.Max(state))

		if (ep+1)%progressEvery == 0 {
			slog.Debug("training progress", "role", role, "episode", ep+1, "of", t.hp.Episodes)
		}
	}

	slog.Info("training complete",
		"role", role,
		"policy", table.Policy(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return table
}
