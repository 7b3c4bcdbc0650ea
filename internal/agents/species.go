package agents

// Modifier is a signed per-attribute delta, indexed by Attribute.
type Modifier [NumAttributes]int

// Map returns the deltas keyed by attribute display name.
func (m Modifier) Map() map[string]int {
	out := make(map[string]int, NumAttributes)
	for a := Attribute(0); a < NumAttributes; a++ {
		out[a.String()] = m[a]
	}
	return out
}

// speciesOrder lists the known species in catalogue order.
var speciesOrder = []string{
	"Vyr'khai", "Lumenari", "Zephryl", "Mycelian",
	"Ferroth", "Aetherborn", "Kinetari", "Verdan",
}

// speciesModifiers is applied once, at agent creation.
// Order: Strength, Empathy, Intelligence, Mobility, Tactical.
var speciesModifiers = map[string]Modifier{
	"Vyr'khai":   {6, -2, 0, 4, 5},
	"Lumenari":   {1, 8, 4, 1, 1},
	"Zephryl":    {1, 1, 3, 8, 3},
	"Mycelian":   {-1, 6, 6, -1, 2},
	"Ferroth":    {8, -3, 2, -2, 4},
	"Aetherborn": {9, 2, 8, 7, 4},
	"Kinetari":   {5, 1, 4, 7, 5},
	"Verdan":     {3, 2, 5, 1, 7},
}

// Species returns the known species names in catalogue order.
func Species() []string {
	out := make([]string, len(speciesOrder))
	copy(out, speciesOrder)
	return out
}

// SpeciesModifier returns the modifier for a species. Unknown species get
// the zero modifier.
func SpeciesModifier(species string) Modifier {
	return speciesModifiers[species]
}
