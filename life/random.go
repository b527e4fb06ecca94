package life

import "math/bits"

// Source is the injectable random generator of a run. *rand.Rand from
// math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
	Uint64() uint64
}

// Chooser picks a uniform index in [0, n) for the cell at flat offset idx.
// Implementations must be safe for concurrent use.
type Chooser interface {
	Choose(idx, n int) int
}

// CellHash is a counter-based Chooser: the pick is a pure function of Seed
// and the cell offset, so a generation is reproducible regardless of how the
// grid was partitioned or scheduled. A fresh Seed is drawn every generation.
type CellHash struct {
	Seed uint64
}

// Choose implements Chooser.
func (h CellHash) Choose(idx, n int) int {
	x := splitmix64(h.Seed ^ (uint64(idx) * 0x9e3779b97f4a7c15))
	hi, _ := bits.Mul64(x, uint64(n))
	return int(hi)
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// ChooserFunc adapts a function to Chooser.
type ChooserFunc func(idx, n int) int

// Choose implements Chooser.
func (f ChooserFunc) Choose(idx, n int) int { return f(idx, n) }

// SpeciesCount returns fixed when it is positive, otherwise a uniform draw
// from [lo, hi].
func SpeciesCount(src Source, fixed, lo, hi int) int {
	if fixed > 0 {
		return fixed
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + src.IntN(hi-lo+1)
}

// Populate fills g with uniformly random species in [0, numSpecies). When
// density is in (0, 1) each cell is live with that probability instead of
// always.
func Populate(g *Grid, numSpecies int, density float64, src Source) {
	for i := range g.Cells {
		if density > 0 && density < 1 && float64(src.Uint64()>>11)/(1<<53) >= density {
			g.Cells[i] = Dead
			continue
		}
		g.Cells[i] = Cell(src.IntN(numSpecies))
	}
}
