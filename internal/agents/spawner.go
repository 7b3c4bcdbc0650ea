// Squad assembly. Turns configured specs into agents with species modifiers
// applied, keyed by role in insertion order.
package agents

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrDuplicateRole is returned when two agents share a role.
var ErrDuplicateRole = errors.New("duplicate role in squad")

// Spec describes one agent to build.
type Spec struct {
	Role    string
	Species string
	Base    AttributeSet
}

// Squad maps role to agent and remembers insertion order.
type Squad struct {
	order   []string
	members map[string]*Agent
}

// NewSquad groups already-built agents. Roles must be unique.
func NewSquad(members []*Agent) (*Squad, error) {
	s := &Squad{
		order:   make([]string, 0, len(members)),
		members: make(map[string]*Agent, len(members)),
	}
	for _, a := range members {
		if _, dup := s.members[a.Role]; dup {
			return nil, fmt.Errorf("role %q: %w", a.Role, ErrDuplicateRole)
		}
		s.order = append(s.order, a.Role)
		s.members[a.Role] = a
	}
	return s, nil
}

// ValidateSpecs checks base attribute ranges and role uniqueness without
// building anything.
func ValidateSpecs(specs []Spec) error {
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if err := spec.Base.Validate(); err != nil {
			return fmt.Errorf("agent %q: %w", spec.Role, err)
		}
		if seen[spec.Role] {
			return fmt.Errorf("role %q: %w", spec.Role, ErrDuplicateRole)
		}
		seen[spec.Role] = true
	}
	return nil
}

// BuildSquad validates the specs, applies each species modifier by clamped
// addition and returns the squad in spec order.
func BuildSquad(specs []Spec) (*Squad, error) {
	if err := ValidateSpecs(specs); err != nil {
		return nil, err
	}
	members := make([]*Agent, 0, len(specs))
	for _, spec := range specs {
		stats := spec.Base.WithModifier(SpeciesModifier(spec.Species))
		members = append(members, NewAgent(spec.Role, spec.Species, stats))
	}

	squad, err := NewSquad(members)
	if err != nil {
		return nil, err
	}
	slog.Info("squad assembled", "agents", squad.Len(), "roles", squad.Roles())
	return squad, nil
}

// Len returns the number of agents.
func (s *Squad) Len() int {
	return len(s.order)
}

// Roles returns the roles in insertion order.
func (s *Squad) Roles() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Agent looks up an agent by role.
func (s *Squad) Agent(role string) (*Agent, bool) {
	a, ok := s.members[role]
	return a, ok
}

// Members returns the agents in insertion order.
func (s *Squad) Members() []*Agent {
	out := make([]*Agent, 0, len(s.order))
	for _, role := range s.order {
		out = append(out, s.members[role])
	}
	return out
}
