package world

import (
	"fmt"
	"strings"

	"github.com/talgya/softkill/internal/entropy"
)

var planetSyllables = []string{
	"ka", "ru", "sha", "vel", "dra", "tor", "my", "cel", "lum", "vyr",
	"fer", "ze", "phy", "ae", "ki", "ja", "ni", "um", "bral", "xon",
	"lyr", "qel", "zix", "vok", "nar", "pyl", "cre", "dax", "jyn",
}

// PlanetName strings together two to four syllables and capitalises the
// result.
func PlanetName(src *entropy.Source) string {
	n := src.IntRange(2, 4)
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(entropy.Pick(src, planetSyllables))
	}
	name := b.String()
	return strings.ToUpper(name[:1]) + name[1:]
}

// PlanetDesignation is a planet name followed by a catalogue number in
// [1, 999], e.g. "Velxon-417".
func PlanetDesignation(src *entropy.Source) string {
	name := PlanetName(src)
	return fmt.Sprintf("%s-%d", name, src.IntRange(1, 999))
}
