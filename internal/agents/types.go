// Package agents provides the squad data model: attributes, species, roles,
// agents and their per-tick action choice.
package agents

import "fmt"

// ActionKind enumerates the five actions every agent can take each tick.
// The order is fixed: it indexes policy table columns.
type ActionKind uint8

const (
	ActionAdvance ActionKind = iota
	ActionDefend
	ActionStabilise
	ActionNegotiate
	ActionWithdraw
)

// NumActions is the size of the action space.
const NumActions = 5

var actionNames = [NumActions]string{"advance", "defend", "stabilise", "negotiate", "withdraw"}

func (k ActionKind) String() string {
	if int(k) < NumActions {
		return actionNames[k]
	}
	return "unknown"
}

// MarshalText encodes the action by name.
func (k ActionKind) MarshalText() ([]byte, error) {
	if int(k) >= NumActions {
		return nil, fmt.Errorf("invalid action kind %d", k)
	}
	return []byte(actionNames[k]), nil
}

// UnmarshalText decodes an action name.
func (k *ActionKind) UnmarshalText(text []byte) error {
	a, ok := ParseAction(string(text))
	if !ok {
		return fmt.Errorf("unknown action %q", text)
	}
	*k = a
	return nil
}

// ParseAction looks up an action by its lowercase name.
func ParseAction(name string) (ActionKind, bool) {
	for i, n := range actionNames {
		if n == name {
			return ActionKind(i), true
		}
	}
	return 0, false
}

// Actions returns every action kind in index order.
func Actions() []ActionKind {
	return []ActionKind{ActionAdvance, ActionDefend, ActionStabilise, ActionNegotiate, ActionWithdraw}
}

// Position is a point in the unit mission square.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// StartPosition is where every agent begins a mission.
var StartPosition = Position{X: 0.5, Y: 0.5}

// Agent is one squad member.
type Agent struct {
	Role        string       `json:"role"` // Unique within a squad
	Kind        Role         `json:"-"`
	Description string       `json:"description"`
	Species     string       `json:"species"`
	Stats       AttributeSet `json:"stats"`

	Position         Position   `json:"position"`
	Trajectory       []Position `json:"trajectory"` // Starts with the initial position
	CumulativeReward float64    `json:"cumulative_reward"`
}

// NewAgent creates an agent at StartPosition with effective stats already
// applied.
func NewAgent(role, species string, stats AttributeSet) *Agent {
	kind := ParseRole(role)
	return &Agent{
		Role:        role,
		Kind:        kind,
		Description: kind.Description(),
		Species:     species,
		Stats:       stats,
		Position:    StartPosition,
		Trajectory:  []Position{StartPosition},
	}
}

// StepSize is the half-width of the random walk interval on each axis.
func (a *Agent) StepSize() float64 {
	return float64(a.Stats.Mobility) / 200.0 * 0.1
}

// RewardMultiplier scales raw rewards by strength: 0.5 at 0, 1.05 at 110.
func (a *Agent) RewardMultiplier() float64 {
	return 0.5 + float64(a.Stats.Strength)/200.0
}

// Move offsets the agent, clamps it to the unit square and records the new
// position in the trajectory.
func (a *Agent) Move(dx, dy float64) {
	a.Position = Position{
		X: clamp(a.Position.X+dx, 0.0, 1.0),
		Y: clamp(a.Position.Y+dy, 0.0, 1.0),
	}
	a.Trajectory = append(a.Trajectory, a.Position)
}

// AddReward accumulates a scaled reward.
func (a *Agent) AddReward(r float64) {
	a.CumulativeReward += r
}
