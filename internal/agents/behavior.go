// Per-tick action choice. One designated role follows a learned policy when
// one is supplied; every other role walks its keyword rules.
package agents

import (
	"log/slog"
	"strings"
)

// TrainedRole is the role driven by the learned policy table.
const TrainedRole = RoleLongsight

// Policy is a read-only learned policy. Greedy returns the best action for
// the scenario narrative, or false when the policy has no states.
type Policy interface {
	Greedy(scenario string) (ActionKind, bool)
}

// ChooseAction picks the agent's action for the scenario narrative. It is a
// pure function of its inputs; policy may be nil.
func ChooseAction(a *Agent, scenario string, policy Policy) ActionKind {
	if a.Kind == TrainedRole && policy != nil {
		if action, ok := policy.Greedy(scenario); ok {
			slog.Debug("policy action", "role", a.Role, "action", action)
			return action
		}
	}

	action := RuleAction(a.Kind, scenario)
	slog.Debug("rule action", "role", a.Role, "action", action)
	return action
}

// RuleAction applies the role's keyword rules to the scenario narrative.
func RuleAction(r Role, scenario string) ActionKind {
	lower := strings.ToLower(scenario)
	p := r.profile()
	for _, rule := range p.Rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Action
			}
		}
	}
	return p.Fallback
}
