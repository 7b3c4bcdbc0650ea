// Package learning fits a tabular action-value policy for one role against
// the reward model. States are scenario key categories; actions are the five
// agent actions.
package learning

import (
	"strings"

	"github.com/talgya/softkill/internal/agents"
)

// Table is a state × action value matrix. It is read-only once training
// returns and may be shared between goroutines.
type Table struct {
	States []string                      `json:"states"`
	Values [][agents.NumActions]float64 `json:"values"`
}

// NewTable returns an all-zero table over states.
func NewTable(states []string) *Table {
	s := make([]string, len(states))
	copy(s, states)
	return &Table{
		States: s,
		Values: make([][agents.NumActions]float64, len(states)),
	}
}

// StateIndex returns the first state whose key occurs in the lowercased
// scenario narrative, or 0 when none does.
func (t *Table) StateIndex(scenario string) int {
	lower := strings.ToLower(scenario)
	for i, key := range t.States {
		if strings.Contains(lower, key) {
			return i
		}
	}
	return 0
}

// Best returns the highest-valued action for a state, lowest index on ties.
func (t *Table) Best(state int) agents.ActionKind {
	return agents.ActionKind(argmax(t.Values[state]))
}

// Max returns the highest value in a state's row.
func (t *Table) Max(state int) float64 {
	row := t.Values[state]
	return row[argmax(row)]
}

// Greedy implements agents.Policy.
func (t *Table) Greedy(scenario string) (agents.ActionKind, bool) {
	if t == nil || len(t.States) == 0 {
		return 0, false
	}
	return t.Best(t.StateIndex(scenario)), true
}

// Policy returns the best action per state, keyed by state.
func (t *Table) Policy() map[string]agents.ActionKind {
	out := make(map[string]agents.ActionKind, len(t.States))
	for i, key := range t.States {
		out[key] = t.Best(i)
	}
	return out
}

func argmax(row [agents.NumActions]float64) int {
	best := 0
	for i := 1; i < len(row); i++ {
		if row[i] > row[best] {
			best = i
		}
	}
	return best
}
