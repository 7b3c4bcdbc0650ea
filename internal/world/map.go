package world

import (
	"fmt"
	"math"
	"sort"
)

// Surface is the hex grid of the mission area. The unit mission square the
// agents move in is projected onto it.
type Surface struct {
	Cells   map[HexCoord]*Cell `json:"-"`
	Radius  int                `json:"radius"`
	Seed    int64              `json:"seed"`
	Terrain string             `json:"terrain"`
}

// NewSurface creates an empty surface. A grid of radius R holds every cell
// with max(|q|, |r|, |s|) <= R.
func NewSurface(radius int) *Surface {
	return &Surface{
		Cells:  make(map[HexCoord]*Cell),
		Radius: radius,
	}
}

// Get returns the cell at coord, or nil when out of bounds.
func (s *Surface) Get(coord HexCoord) *Cell {
	return s.Cells[coord]
}

// Set stores a cell at its coordinate.
func (s *Surface) Set(c *Cell) {
	s.Cells[c.Coord] = c
}

// InBounds reports whether coord lies within the surface radius.
func (s *Surface) InBounds(coord HexCoord) bool {
	return coord.Ring() <= s.Radius
}

// Len returns the number of cells.
func (s *Surface) Len() int {
	return len(s.Cells)
}

// Sorted returns the cells ordered by r then q, for stable output.
func (s *Surface) Sorted() []*Cell {
	out := make([]*Cell, 0, len(s.Cells))
	for _, c := range s.Cells {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Coord.R != out[j].Coord.R {
			return out[i].Coord.R < out[j].Coord.R
		}
		return out[i].Coord.Q < out[j].Coord.Q
	})
	return out
}

// CellAt projects a point of the unit mission square onto the grid and
// returns the cell under it. Points outside the hexagon snap to the nearest
// cell.
func (s *Surface) CellAt(x, y float64) *Cell {
	// Unit square to cartesian grid space centred on the origin.
	cx := (x*2 - 1) * float64(s.Radius)
	cy := (y*2 - 1) * float64(s.Radius) * math.Sqrt(3.0) / 2.0

	// Cartesian to fractional axial, inverse of q + r/2, r*sqrt(3)/2.
	fr := cy * 2.0 / math.Sqrt(3.0)
	fq := cx - fr*0.5
	coord := roundHex(fq, fr)
	if c := s.Get(coord); c != nil {
		return c
	}

	var best *Cell
	bestDist := math.Inf(1)
	for _, c := range s.Cells {
		px := float64(c.Coord.Q) + float64(c.Coord.R)*0.5
		py := float64(c.Coord.R) * math.Sqrt(3.0) / 2.0
		d := (px-cx)*(px-cx) + (py-cy)*(py-cy)
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

// roundHex rounds fractional axial coordinates to the containing hex.
func roundHex(fq, fr float64) HexCoord {
	fs := -fq - fr
	q, r, s := math.Round(fq), math.Round(fr), math.Round(fs)
	dq, dr, ds := math.Abs(q-fq), math.Abs(r-fr), math.Abs(s-fs)
	switch {
	case dq > dr && dq > ds:
		q = -r - s
	case dr > ds:
		r = -q - s
	}
	return HexCoord{Q: int(q), R: int(r)}
}

// Surroundings tallies the features of the in-bounds cells adjacent to
// coord.
func (s *Surface) Surroundings(coord HexCoord) map[Feature]int {
	counts := make(map[Feature]int)
	for _, n := range coord.Neighbors() {
		if c := s.Get(n); c != nil {
			counts[c.Feature]++
		}
	}
	return counts
}

// FeatureCounts tallies cells per feature.
func (s *Surface) FeatureCounts() map[Feature]int {
	counts := make(map[Feature]int)
	for _, c := range s.Cells {
		counts[c.Feature]++
	}
	return counts
}

// String returns a summary of the surface.
func (s *Surface) String() string {
	return fmt.Sprintf("Surface(terrain=%q, radius=%d, cells=%d)", s.Terrain, s.Radius, s.Len())
}
