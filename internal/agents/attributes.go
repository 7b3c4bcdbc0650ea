package agents

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"
)

// Attribute names one of the five agent capabilities.
type Attribute uint8

const (
	AttrStrength Attribute = iota
	AttrEmpathy
	AttrIntelligence
	AttrMobility
	AttrTactical
)

// NumAttributes is the number of attributes in an AttributeSet.
const NumAttributes = 5

// Attribute bounds. Every attribute lives in [MinAttribute, MaxAttribute].
const (
	MinAttribute     = 0
	MaxAttribute     = 110
	DefaultAttribute = 60
)

// ErrAttributeRange is returned when an attribute is constructed outside
// [MinAttribute, MaxAttribute].
var ErrAttributeRange = errors.New("attribute out of range")

var attributeNames = [NumAttributes]string{"Strength", "Empathy", "Intelligence", "Mobility", "Tactical"}

func (a Attribute) String() string {
	if int(a) < NumAttributes {
		return attributeNames[a]
	}
	return "Unknown"
}

// AttributeSet holds an agent's capabilities. It is a value type: modified
// copies never touch the original.
type AttributeSet struct {
	Strength     int `json:"strength"`
	Empathy      int `json:"empathy"`
	Intelligence int `json:"intelligence"`
	Mobility     int `json:"mobility"`
	Tactical     int `json:"tactical"`
}

// NewAttributeSet validates and returns an AttributeSet.
func NewAttributeSet(strength, empathy, intelligence, mobility, tactical int) (AttributeSet, error) {
	s := AttributeSet{
		Strength:     strength,
		Empathy:      empathy,
		Intelligence: intelligence,
		Mobility:     mobility,
		Tactical:     tactical,
	}
	if err := s.Validate(); err != nil {
		return AttributeSet{}, err
	}
	return s, nil
}

// DefaultAttributes returns a set with every attribute at DefaultAttribute.
func DefaultAttributes() AttributeSet {
	return AttributeSet{
		Strength:     DefaultAttribute,
		Empathy:      DefaultAttribute,
		Intelligence: DefaultAttribute,
		Mobility:     DefaultAttribute,
		Tactical:     DefaultAttribute,
	}
}

// Get returns the value of a single attribute.
func (s AttributeSet) Get(a Attribute) int {
	switch a {
	case AttrStrength:
		return s.Strength
	case AttrEmpathy:
		return s.Empathy
	case AttrIntelligence:
		return s.Intelligence
	case AttrMobility:
		return s.Mobility
	case AttrTactical:
		return s.Tactical
	default:
		return 0
	}
}

// Validate reports the first attribute outside the allowed range.
func (s AttributeSet) Validate() error {
	for a := Attribute(0); a < NumAttributes; a++ {
		v := s.Get(a)
		if v < MinAttribute || v > MaxAttribute {
			return fmt.Errorf("%s must be between %d and %d, got %d: %w",
				a, MinAttribute, MaxAttribute, v, ErrAttributeRange)
		}
	}
	return nil
}

// WithModifier returns a copy with m added to each attribute, clamped to the
// allowed range.
func (s AttributeSet) WithModifier(m Modifier) AttributeSet {
	return AttributeSet{
		Strength:     clamp(s.Strength+m[AttrStrength], MinAttribute, MaxAttribute),
		Empathy:      clamp(s.Empathy+m[AttrEmpathy], MinAttribute, MaxAttribute),
		Intelligence: clamp(s.Intelligence+m[AttrIntelligence], MinAttribute, MaxAttribute),
		Mobility:     clamp(s.Mobility+m[AttrMobility], MinAttribute, MaxAttribute),
		Tactical:     clamp(s.Tactical+m[AttrTactical], MinAttribute, MaxAttribute),
	}
}

// Map returns the attributes keyed by display name ("Strength", ...).
func (s AttributeSet) Map() map[string]int {
	out := make(map[string]int, NumAttributes)
	for a := Attribute(0); a < NumAttributes; a++ {
		out[a.String()] = s.Get(a)
	}
	return out
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
