package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of generations.
type WindowStats struct {
	WindowStartGen int `csv:"-"`
	WindowEndGen   int `csv:"window_end"`
	Generations    int `csv:"generations"`

	// Population at window end
	Live    int `csv:"live"`
	Dead    int `csv:"dead"`
	Species int `csv:"species_alive"`

	// Transitions during window
	Births    int     `csv:"births"`
	Deaths    int     `csv:"deaths"`
	BirthRate float64 `csv:"birth_rate"` // Births per live cell per generation
	DeathRate float64 `csv:"death_rate"` // Deaths per live cell per generation

	// Species distribution at window end
	Dominant      int     `csv:"dominant"`
	DominantShare float64 `csv:"dominant_share"`
	Diversity     float64 `csv:"diversity"` // Shannon entropy of species shares (nats)
	Evenness      float64 `csv:"evenness"`  // Diversity / ln(numSpecies)
	PopMean       float64 `csv:"pop_mean"`
	PopStd        float64 `csv:"pop_std"`
	PopP10        float64 `csv:"pop_p10"`
	PopP50        float64 `csv:"pop_p50"`
	PopP90        float64 `csv:"pop_p90"`

	// Per-species populations, indexed by species ID
	Populations []int `csv:"-"`
}

// SpeciesDistribution summarises per-species populations.
type SpeciesDistribution struct {
	Alive         int
	Dominant      int
	DominantShare float64
	Diversity     float64
	Evenness      float64
	Mean, Std     float64
	P10, P50, P90 float64
}

// ComputeSpeciesDistribution derives diversity and spread statistics from
// per-species populations. Dominant is -1 when nothing is alive.
func ComputeSpeciesDistribution(populations []int) SpeciesDistribution {
	d := SpeciesDistribution{Dominant: -1}
	n := len(populations)
	if n == 0 {
		return d
	}

	values := make([]float64, n)
	var total float64
	best := 0
	for s, p := range populations {
		values[s] = float64(p)
		total += float64(p)
		if p > 0 {
			d.Alive++
		}
		if p > populations[best] {
			best = s
		}
	}

	d.Mean, d.Std = stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	d.P10 = stat.Quantile(0.10, stat.LinInterp, sorted, nil)
	d.P50 = stat.Quantile(0.50, stat.LinInterp, sorted, nil)
	d.P90 = stat.Quantile(0.90, stat.LinInterp, sorted, nil)

	if total == 0 {
		return d
	}

	d.Dominant = best
	d.DominantShare = values[best] / total

	shares := make([]float64, n)
	for s, v := range values {
		shares[s] = v / total
	}
	d.Diversity = stat.Entropy(shares)
	if n > 1 {
		d.Evenness = d.Diversity / stat.Entropy(uniform(n))
	}
	return d
}

// uniform returns n equal shares summing to one.
func uniform(n int) []float64 {
	u := make([]float64, n)
	for i := range u {
		u[i] = 1 / float64(n)
	}
	return u
}

// CensusRecord is one species' population at the end of a window.
type CensusRecord struct {
	WindowEnd  int     `csv:"window_end"`
	Species    int     `csv:"species"`
	Population int     `csv:"population"`
	Share      float64 `csv:"share"`
}

// CensusRecords flattens the per-species populations of s.
func (s WindowStats) CensusRecords() []CensusRecord {
	records := make([]CensusRecord, len(s.Populations))
	for sp, pop := range s.Populations {
		var share float64
		if s.Live > 0 {
			share = float64(pop) / float64(s.Live)
		}
		records[sp] = CensusRecord{WindowEnd: s.WindowEndGen, Species: sp, Population: pop, Share: share}
	}
	return records
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartGen),
		slog.Int("window_end", s.WindowEndGen),
		slog.Int("live", s.Live),
		slog.Int("dead", s.Dead),
		slog.Int("species_alive", s.Species),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Float64("birth_rate", s.BirthRate),
		slog.Float64("death_rate", s.DeathRate),
		slog.Int("dominant", s.Dominant),
		slog.Float64("dominant_share", s.DominantShare),
		slog.Float64("diversity", s.Diversity),
		slog.Float64("evenness", s.Evenness),
		slog.Any("populations", s.Populations),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndGen,
		"live", s.Live,
		"species_alive", s.Species,
		"births", s.Births,
		"deaths", s.Deaths,
		"birth_rate", s.BirthRate,
		"death_rate", s.DeathRate,
		"dominant", s.Dominant,
		"dominant_share", s.DominantShare,
		"diversity", s.Diversity,
		"evenness", s.Evenness,
		"pop_p10", s.PopP10,
		"pop_p50", s.PopP50,
		"pop_p90", s.PopP90,
	)
}
