package telemetry

import "github.com/pthm-cable/multilife/life"

// Collector accumulates per-generation transitions and produces WindowStats.
type Collector struct {
	windowGenerations int
	numSpecies        int

	// Current window tracking
	windowStartGen int

	// Transition counters for current window
	births      int
	deaths      int
	liveSamples int // sum of live cells over recorded generations
	recorded    int
}

// NewCollector creates a collector that flushes every windowGenerations
// generations for a run with numSpecies species.
func NewCollector(windowGenerations, numSpecies int) *Collector {
	if windowGenerations < 1 {
		windowGenerations = 1
	}
	return &Collector{
		windowGenerations: windowGenerations,
		numSpecies:        numSpecies,
	}
}

// RecordGeneration records the transitions of one generation and the number
// of cells that were live before it.
func (c *Collector) RecordGeneration(counts life.Counts, liveBefore int) {
	c.births += counts.Births
	c.deaths += counts.Deaths
	c.liveSamples += liveBefore
	c.recorded++
}

// ShouldFlush returns true if enough generations have passed to flush the window.
func (c *Collector) ShouldFlush(generation int) bool {
	return generation-c.windowStartGen >= c.windowGenerations
}

// Flush produces a WindowStats from the census at generation and resets
// counters for the next window.
func (c *Collector) Flush(generation int, census life.Census) WindowStats {
	populations := make([]int, c.numSpecies)
	copy(populations, census.Species[:c.numSpecies])
	dist := ComputeSpeciesDistribution(populations)

	stats := WindowStats{
		WindowStartGen: c.windowStartGen,
		WindowEndGen:   generation,
		Generations:    c.recorded,

		Live:    census.Live(),
		Dead:    census.Dead,
		Species: dist.Alive,

		Births: c.births,
		Deaths: c.deaths,

		Dominant:      dist.Dominant,
		DominantShare: dist.DominantShare,
		Diversity:     dist.Diversity,
		Evenness:      dist.Evenness,
		PopMean:       dist.Mean,
		PopStd:        dist.Std,
		PopP10:        dist.P10,
		PopP50:        dist.P50,
		PopP90:        dist.P90,

		Populations: populations,
	}
	if c.liveSamples > 0 {
		stats.BirthRate = float64(c.births) / float64(c.liveSamples)
		stats.DeathRate = float64(c.deaths) / float64(c.liveSamples)
	}

	// Reset for next window
	c.windowStartGen = generation
	c.births = 0
	c.deaths = 0
	c.liveSamples = 0
	c.recorded = 0

	return stats
}
