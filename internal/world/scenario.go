// Package world provides the mission context a squad operates in: galaxy,
// planet, terrain, weather and narrative, plus the planet's surface relief.
package world

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/talgya/softkill/internal/entropy"
)

// Galaxies lists every mission location.
var Galaxies = []string{
	"Andromeda (M31)", "Triangulum (M33)", "Sombrero (M104)", "Whirlpool (M51)",
	"Sagittarius Dwarf", "Large Magellanic Cloud", "Nyx Halo", "Aetheric Veil",
	"Kijani Spiral", "Umbral Reef", "Karibu Vortex", "Centaurus A", "Messier 81",
	"Sculptor Galaxy", "Fornax Cluster", "Perseus Cluster", "Coma Cluster",
}

// Terrains lists every planetary terrain.
var Terrains = []string{
	"Urban Lattice", "Desert Glass", "Ice Ridge", "Oceanic Platforms",
	"Jungle Canopy", "Volcanic Spires", "Acidic Swamps", "Crystal Caves",
	"Floating Islands",
}

// Weathers lists every weather condition.
var Weathers = []string{
	"Clear", "Ion Storm", "Radiation Flare", "Sandstorm", "Cryo Blizzards",
	"Plasma Rain", "Gravity Eddies", "Sonic Winds", "Magnetic Anomalies",
}

// Scenarios lists the authored mission narratives.
var Scenarios = []string{
	"Refugee flotilla near a magnetar; containment fields failing.",
	"Xenofauna stampede through crystalline corridors; civilians trapped.",
	"Pirate corsairs blockading stargate; reactor leaks destabilising transit.",
	"Planetary ocean rising after moon-shear; bio-domes at risk.",
	"Clan schism; peace-talks collapsing on neutral ring-station.",
}

// Scenario key categories, in scan order.
const (
	KeyMagnetar  = "magnetar"
	KeyXenofauna = "xenofauna"
	KeyPirate    = "pirate"
	KeyOcean     = "ocean"
	KeySchism    = "schism"
)

var scenarioKeys = []string{KeyMagnetar, KeyXenofauna, KeyPirate, KeyOcean, KeySchism}

// ScenarioKeys returns the keyword categories in scan order. The order is
// also the row order of a trained policy table.
func ScenarioKeys() []string {
	out := make([]string, len(scenarioKeys))
	copy(out, scenarioKeys)
	return out
}

// InferScenarioKey returns the first category whose keyword occurs in the
// narrative, ignoring case, or "" when none does.
func InferScenarioKey(narrative string) string {
	lower := strings.ToLower(narrative)
	for _, key := range scenarioKeys {
		if strings.Contains(lower, key) {
			return key
		}
	}
	return ""
}

// Context is the immutable setting of one mission.
type Context struct {
	Galaxy    string `json:"galaxy"`
	Planet    string `json:"planet"`
	Terrain   string `json:"terrain"`
	Weather   string `json:"weather"`
	Narrative string `json:"description"`
}

// Override replaces individual generated fields. Empty fields are ignored.
type Override struct {
	Galaxy   string
	Planet   string
	Terrain  string
	Weather  string
	Scenario string
}

// IsZero reports whether the override changes nothing.
func (o Override) IsZero() bool {
	return o == Override{}
}

// Generate rolls a random mission context. Draw order: galaxy, planet name
// (syllable count, syllables, number), terrain, weather, narrative.
func Generate(src *entropy.Source) Context {
	ctx := Context{Galaxy: entropy.Pick(src, Galaxies)}
	ctx.Planet = PlanetDesignation(src)
	ctx.Terrain = entropy.Pick(src, Terrains)
	ctx.Weather = entropy.Pick(src, Weathers)
	ctx.Narrative = entropy.Pick(src, Scenarios)

	slog.Info("scenario generated",
		"galaxy", ctx.Galaxy,
		"planet", ctx.Planet,
		"terrain", ctx.Terrain,
		"weather", ctx.Weather,
		"key", ctx.Key(),
	)
	return ctx
}

// Apply returns a copy of c with every non-empty override field substituted.
func (c Context) Apply(o Override) Context {
	if o.Galaxy != "" {
		c.Galaxy = o.Galaxy
	}
	if o.Planet != "" {
		c.Planet = o.Planet
	}
	if o.Terrain != "" {
		c.Terrain = o.Terrain
	}
	if o.Weather != "" {
		c.Weather = o.Weather
	}
	if o.Scenario != "" {
		c.Narrative = o.Scenario
	}
	return c
}

// Key is the scenario category of the narrative.
func (c Context) Key() string {
	return InferScenarioKey(c.Narrative)
}

// String renders the three-line mission briefing.
func (c Context) String() string {
	return fmt.Sprintf("MISSION: %s // Planet %s\nTerrain: %s // Weather: %s\nScenario: %s",
		c.Galaxy, c.Planet, c.Terrain, c.Weather, c.Narrative)
}
