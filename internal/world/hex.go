// Planet surface grid. Uses axial coordinates (q, r); the third cube
// coordinate is derived.
package world

// HexCoord is a position on the surface grid in axial coordinates.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// Feature classifies a surface cell by its elevation.
type Feature uint8

const (
	FeatureBasin   Feature = iota // Below the terrain's flood line
	FeatureLowland                // Open ground
	FeatureUpland                 // Broken ground, partial cover
	FeatureRidge                  // Peaks and spires
)

var featureNames = [...]string{"basin", "lowland", "upland", "ridge"}

func (f Feature) String() string {
	if int(f) < len(featureNames) {
		return featureNames[f]
	}
	return "unknown"
}

// MarshalText encodes the feature by name.
func (f Feature) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Cell is one tile of the planet surface.
type Cell struct {
	Coord     HexCoord `json:"coord"`
	Feature   Feature  `json:"feature"`
	Elevation float64  `json:"elevation"` // 0.0 to 1.0
	Moisture  float64  `json:"moisture"`  // 0.0 to 1.0
}

var hexDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var out [6]HexCoord
	for i, d := range hexDirections {
		out[i] = HexCoord{Q: h.Q + d.Q, R: h.R + d.R}
	}
	return out
}

// Ring returns the distance of h from the origin.
func (h HexCoord) Ring() int {
	return Distance(h, HexCoord{})
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	return max(absInt(a.Q-b.Q), absInt(a.R-b.R), absInt(a.S()-b.S()))
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
