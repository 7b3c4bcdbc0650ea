package reward

import (
	"github.com/talgya/softkill/internal/agents"
	"github.com/talgya/softkill/internal/world"
)

// actionRow holds one value per action, indexed by agents.ActionKind.
type actionRow [agents.NumActions]float64

var baseRewards = map[agents.Role]actionRow{
	//                              advance defend stabilise negotiate withdraw
	agents.RoleLongsight:        {8, 6, -3, -4, -1},
	agents.RoleLifebinder:       {-1, 3, 10, 1, 2},
	agents.RoleSpecter:          {7, 3, -1, 0, 4},
	agents.RoleWhisper:          {-2, 1, 1, 10, 3},
	agents.RoleArchivist:        {0, 2, 2, 6, 3},
	agents.RoleBrawler:          {7, 5, -2, -3, 2},
	agents.RoleArmsmaster:       {6, 7, -1, -2, 3},
	agents.RoleExplosivesExpert: {5, 4, -4, -3, 1},
}

var scenarioModifiers = map[string]actionRow{
	world.KeyMagnetar:  {agents.ActionWithdraw: 2, agents.ActionDefend: 1},
	world.KeyXenofauna: {agents.ActionStabilise: 3, agents.ActionDefend: 2},
	world.KeyPirate:    {agents.ActionAdvance: 2, agents.ActionDefend: 1, agents.ActionNegotiate: 1},
	world.KeyOcean:     {agents.ActionStabilise: 2, agents.ActionWithdraw: 1},
	world.KeySchism:    {agents.ActionNegotiate: 4, agents.ActionDefend: 1},
}

var terrainModifiers = map[string]actionRow{
	"Urban Lattice":     {agents.ActionDefend: 1, agents.ActionNegotiate: 1},
	"Desert Glass":      {agents.ActionWithdraw: 1, agents.ActionAdvance: -1},
	"Ice Ridge":         {agents.ActionDefend: 1, agents.ActionStabilise: 1},
	"Oceanic Platforms": {agents.ActionStabilise: 2, agents.ActionWithdraw: 1},
	"Jungle Canopy":     {agents.ActionAdvance: 1},
	"Volcanic Spires":   {agents.ActionDefend: 1},
	"Acidic Swamps":     {agents.ActionWithdraw: 2},
	"Crystal Caves":     {},
	"Floating Islands":  {agents.ActionStabilise: 1},
}

var weatherModifiers = map[string]actionRow{
	"Clear":              {},
	"Ion Storm":          {agents.ActionWithdraw: 2, agents.ActionDefend: 1},
	"Radiation Flare":    {agents.ActionWithdraw: 2, agents.ActionStabilise: 1},
	"Sandstorm":          {agents.ActionWithdraw: 1, agents.ActionDefend: 1},
	"Cryo Blizzards":     {agents.ActionDefend: 1, agents.ActionStabilise: 1},
	"Plasma Rain":        {agents.ActionDefend: 2},
	"Gravity Eddies":     {agents.ActionStabilise: 1},
	"Sonic Winds":        {},
	"Magnetic Anomalies": {agents.ActionWithdraw: 2},
}

// Ethics bonus values. PenaltyCollateral belongs to the published scale but
// no rule awards it.
const (
	BonusSaveCivilian = 8.0
	PenaltyCollateral = -8.0
	BonusDocument     = 3.0
	BonusDeescalate   = 5.0
)

// ethicsRule awards Bonus when the action is one of Actions and, if set, the
// role and scenario key both match.
type ethicsRule struct {
	Key     string
	Role    agents.Role
	Actions []agents.ActionKind
	Bonus   float64
}

var ethicsRules = []ethicsRule{
	// Scenario-driven.
	{Key: world.KeyMagnetar, Actions: []agents.ActionKind{agents.ActionWithdraw, agents.ActionDefend}, Bonus: BonusSaveCivilian},
	{Key: world.KeyXenofauna, Actions: []agents.ActionKind{agents.ActionStabilise}, Bonus: BonusSaveCivilian},
	{Key: world.KeyPirate, Actions: []agents.ActionKind{agents.ActionNegotiate, agents.ActionDefend}, Bonus: BonusDeescalate},
	{Key: world.KeyOcean, Actions: []agents.ActionKind{agents.ActionStabilise, agents.ActionAdvance}, Bonus: BonusSaveCivilian},
	{Key: world.KeySchism, Actions: []agents.ActionKind{agents.ActionNegotiate}, Bonus: BonusDeescalate},

	// Role-driven.
	{Role: agents.RoleArchivist, Actions: []agents.ActionKind{agents.ActionDefend, agents.ActionNegotiate}, Bonus: BonusDocument},
	{Role: agents.RoleBrawler, Actions: []agents.ActionKind{agents.ActionDefend}, Bonus: BonusSaveCivilian},
	{Role: agents.RoleArmsmaster, Key: world.KeyPirate, Actions: []agents.ActionKind{agents.ActionAdvance}, Bonus: BonusDeescalate},
	{Role: agents.RoleExplosivesExpert, Key: world.KeyMagnetar, Actions: []agents.ActionKind{agents.ActionWithdraw}, Bonus: BonusSaveCivilian},
}

func (r ethicsRule) matches(role agents.Role, action agents.ActionKind, key string) bool {
	if r.Role != agents.RoleUnknown && r.Role != role {
		return false
	}
	if r.Key != "" && r.Key != key {
		return false
	}
	for _, a := range r.Actions {
		if a == action {
			return true
		}
	}
	return false
}
