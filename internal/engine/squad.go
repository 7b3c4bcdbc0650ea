package engine

import (
	"errors"
	"fmt"

	"github.com/talgya/softkill/internal/agents"
	"github.com/talgya/softkill/internal/entropy"
	"github.com/talgya/softkill/internal/reward"
	"github.com/talgya/softkill/internal/world"
)

// ErrUnknownRole is returned when the squad order names a role with no agent.
var ErrUnknownRole = errors.New("role not in squad")

// TickResult is what one agent did during a tick.
type TickResult struct {
	Role     string            `json:"role"`
	Action   agents.ActionKind `json:"action"`
	Reward   float64           `json:"reward"` // Scaled by the agent's strength
	Total    float64           `json:"total"`
	Banter   string            `json:"banter"`
	Position agents.Position   `json:"position"`
}

// Step runs one tick for every agent in squad order. Per agent it draws, in
// order: reward noise, x offset, y offset and a banter line when the role
// has any. policy may be nil.
func Step(squad *agents.Squad, ctx world.Context, scorer reward.Scorer, policy agents.Policy, src *entropy.Source) ([]TickResult, error) {
	results := make([]TickResult, 0, squad.Len())
	for _, role := range squad.Roles() {
		a, ok := squad.Agent(role)
		if !ok {
			return nil, fmt.Errorf("%q: %w", role, ErrUnknownRole)
		}

		action := agents.ChooseAction(a, ctx.Narrative, policy)
		r := scorer.Calculate(a.Kind, action, ctx.Narrative, ctx.Terrain, ctx.Weather)
		r *= a.RewardMultiplier()
		a.AddReward(r)

		step := a.StepSize()
		dx := src.Uniform(-step, step)
		dy := src.Uniform(-step, step)
		a.Move(dx, dy)

		var banter string
		if lines := a.Kind.Banter(); len(lines) > 0 {
			banter = entropy.Pick(src, lines)
		}

		results = append(results, TickResult{
			Role:     role,
			Action:   action,
			Reward:   r,
			Total:    a.CumulativeReward,
			Banter:   banter,
			Position: a.Position,
		})
	}
	return results, nil
}

// LogLine renders a tick result as a mission log entry.
func (r TickResult) LogLine(tick int) string {
	return fmt.Sprintf("[%03d] %s: %s | Action=%s | Δ=%.2f | Total=%.2f",
		tick, r.Role, r.Banter, r.Action, r.Reward, r.Total)
}
