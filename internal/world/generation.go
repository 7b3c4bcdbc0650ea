// Surface relief from layered simplex noise. Elevation and moisture layers
// are shaped per terrain, then every cell is classified into a feature.
package world

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// ReliefConfig holds surface generation parameters.
type ReliefConfig struct {
	Radius    int     // Hex grid radius
	Seed      int64   // Noise seed, normally the mission seed
	FloodLine float64 // Elevation below which cells are basins (0.0–1.0)
	RidgeLine float64 // Elevation above which cells are ridges (0.0–1.0)
}

// DefaultReliefConfig returns the standard mission-area grid for a terrain.
func DefaultReliefConfig(terrain string, seed int64) ReliefConfig {
	cfg := ReliefConfig{
		Radius:    8,
		Seed:      seed,
		FloodLine: 0.25,
		RidgeLine: 0.72,
	}
	switch terrain {
	case "Oceanic Platforms":
		cfg.FloodLine = 0.55
	case "Acidic Swamps":
		cfg.FloodLine = 0.42
	case "Floating Islands":
		cfg.FloodLine = 0.5
		cfg.RidgeLine = 0.8
	case "Desert Glass":
		cfg.FloodLine = 0.08
	case "Volcanic Spires", "Ice Ridge":
		cfg.RidgeLine = 0.6
	case "Crystal Caves":
		cfg.RidgeLine = 0.65
	}
	return cfg
}

// GenerateRelief builds the mission-area surface for a terrain.
func GenerateRelief(terrain string, cfg ReliefConfig) *Surface {
	elevNoise := opensimplex.NewNormalized(cfg.Seed)
	moistNoise := opensimplex.NewNormalized(cfg.Seed + 1)

	s := NewSurface(cfg.Radius)
	s.Seed = cfg.Seed
	s.Terrain = terrain

	for q := -cfg.Radius; q <= cfg.Radius; q++ {
		for r := -cfg.Radius; r <= cfg.Radius; r++ {
			coord := HexCoord{Q: q, R: r}
			if !s.InBounds(coord) {
				continue
			}

			// Axial to cartesian: x = q + r/2, y = r * sqrt(3)/2.
			x := float64(q) + float64(r)*0.5
			y := float64(r) * math.Sqrt(3.0) / 2.0

			elev := octaveNoise(elevNoise, x, y, 4, 0.12, 0.5)
			moist := octaveNoise(moistNoise, x, y, 3, 0.09, 0.5)

			// Flatten the rim so the mission area reads as a bowl.
			dist := math.Sqrt(x*x+y*y) / float64(cfg.Radius)
			falloff := 1.0 - 0.4*math.Pow(dist, 3)
			elev = clampUnit(elev * falloff)

			s.Set(&Cell{
				Coord:     coord,
				Feature:   classify(elev, cfg),
				Elevation: elev,
				Moisture:  clampUnit(moist),
			})
		}
	}
	return s
}

func classify(elev float64, cfg ReliefConfig) Feature {
	switch {
	case elev < cfg.FloodLine:
		return FeatureBasin
	case elev > cfg.RidgeLine:
		return FeatureRidge
	case elev > (cfg.FloodLine+cfg.RidgeLine)/2:
		return FeatureUpland
	default:
		return FeatureLowland
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
