package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for a generation.
const (
	PhaseUpdate    = "update"
	PhaseColorize  = "colorize"
	PhaseSwap      = "swap"
	PhaseTelemetry = "telemetry"
)

// PerfSample holds timing data for a single generation.
type PerfSample struct {
	Duration  time.Duration
	Phases    map[string]time.Duration
	Imbalance map[string]float64 // slowest partition over the mean, per phase
}

// PerfCollector tracks performance metrics over a rolling window.
type PerfCollector struct {
	windowSize    int
	cells         int // cells evaluated per generation
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	currentSkew   map[string]float64
	genStart      time.Time
	phaseStart    time.Time
	lastPhase     string

	// Frame timing (for graphics mode)
	lastFrameTime time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a new performance collector averaging over the
// last windowSize generations of a grid with the given number of cells.
func NewPerfCollector(windowSize, cells int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		cells:         cells,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
		currentSkew:   make(map[string]float64),
	}
}

// StartGeneration begins timing a new generation.
func (p *PerfCollector) StartGeneration() {
	p.genStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.currentSkew = make(map[string]float64)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	// End previous phase if any
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// RecordPartitions records how evenly a phase's work was spread, given the
// time each partition took. Phases with a single partition are skipped.
func (p *PerfCollector) RecordPartitions(phase string, spans []time.Duration) {
	if len(spans) < 2 {
		return
	}
	if r := Imbalance(spans); r > 0 {
		p.currentSkew[phase] = r
	}
}

// Imbalance returns the slowest span divided by the mean span: 1 when every
// partition took equally long, and 0 when there is nothing to compare.
func Imbalance(spans []time.Duration) float64 {
	var total, slowest time.Duration
	for _, d := range spans {
		total += d
		slowest = max(slowest, d)
	}
	if total <= 0 {
		return 0
	}
	return float64(slowest) * float64(len(spans)) / float64(total)
}

// EndGeneration finishes timing the current generation and records the sample.
func (p *PerfCollector) EndGeneration() {
	now := time.Now()
	// End final phase
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	sample := PerfSample{
		Duration:  now.Sub(p.genStart),
		Phases:    p.currentPhases,
		Imbalance: p.currentSkew,
	}

	p.samples[p.writeIndex] = sample
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// RecordFrame records frame timing for graphics mode.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Generation timing
	AvgGeneration time.Duration
	MinGeneration time.Duration
	MaxGeneration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total generation time
	PhasePct map[string]float64

	// Average slowest-partition over mean-partition time, per phase
	PhaseImbalance map[string]float64

	// Throughput
	GenerationsPerSec float64
	CellsPerSec       float64

	// Frame timing (graphics mode)
	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	// Frame timing is always available (independent of generation samples)
	var fps float64
	if p.frameDuration > 0 {
		fps = float64(time.Second) / float64(p.frameDuration)
	}

	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg:       make(map[string]time.Duration),
			PhasePct:       make(map[string]float64),
			PhaseImbalance: make(map[string]float64),
			FrameDuration:  p.frameDuration,
			FPS:            fps,
		}
	}

	var totalGen time.Duration
	var minGen, maxGen time.Duration
	phaseSum := make(map[string]time.Duration)
	skewSum := make(map[string]float64)
	skewCount := make(map[string]int)

	// Iterate over valid samples
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		totalGen += s.Duration

		if i == 0 || s.Duration < minGen {
			minGen = s.Duration
		}
		if s.Duration > maxGen {
			maxGen = s.Duration
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
		for phase, r := range s.Imbalance {
			skewSum[phase] += r
			skewCount[phase]++
		}
	}

	avgGen := totalGen / time.Duration(p.sampleCount)

	// Calculate phase averages and percentages
	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avgGen > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avgGen) * 100
		}
	}

	phaseImbalance := make(map[string]float64)
	for phase, sum := range skewSum {
		phaseImbalance[phase] = sum / float64(skewCount[phase])
	}

	// Calculate throughput
	var gensPerSec float64
	if avgGen > 0 {
		gensPerSec = float64(time.Second) / float64(avgGen)
	}

	return PerfStats{
		AvgGeneration:     avgGen,
		MinGeneration:     minGen,
		MaxGeneration:     maxGen,
		PhaseAvg:          phaseAvg,
		PhasePct:          phasePct,
		PhaseImbalance:    phaseImbalance,
		GenerationsPerSec: gensPerSec,
		CellsPerSec:       gensPerSec * float64(p.cells),
		FrameDuration:     p.frameDuration,
		FPS:               fps,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_generation_us", s.AvgGeneration.Microseconds(),
		"min_generation_us", s.MinGeneration.Microseconds(),
		"max_generation_us", s.MaxGeneration.Microseconds(),
		"generations_per_sec", int(s.GenerationsPerSec),
		"cells_per_sec", int64(s.CellsPerSec),
	}

	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}

	for _, phase := range []string{PhaseUpdate, PhaseColorize, PhaseSwap, PhaseTelemetry} {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
		if r, ok := s.PhaseImbalance[phase]; ok {
			attrs = append(attrs, phase+"_imbalance", int(r*100)/100.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_generation_us", s.AvgGeneration.Microseconds()),
		slog.Int64("min_generation_us", s.MinGeneration.Microseconds()),
		slog.Int64("max_generation_us", s.MaxGeneration.Microseconds()),
		slog.Float64("generations_per_sec", s.GenerationsPerSec),
		slog.Float64("cells_per_sec", s.CellsPerSec),
	}

	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}

	for phase, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(phase+"_pct", pct))
	}
	for phase, r := range s.PhaseImbalance {
		attrs = append(attrs, slog.Float64(phase+"_imbalance", r))
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd         int     `csv:"window_end"`
	AvgGenerationUS   int64   `csv:"avg_generation_us"`
	MinGenerationUS   int64   `csv:"min_generation_us"`
	MaxGenerationUS   int64   `csv:"max_generation_us"`
	GenerationsPerSec float64 `csv:"generations_per_sec"`
	CellsPerSec       float64 `csv:"cells_per_sec"`
	FPS               float64 `csv:"fps"`
	UpdatePct         float64 `csv:"update_pct"`
	ColorizePct       float64 `csv:"colorize_pct"`
	SwapPct           float64 `csv:"swap_pct"`
	TelemetryPct      float64 `csv:"telemetry_pct"`
	UpdateImbalance   float64 `csv:"update_imbalance"`
	ColorizeImbalance float64 `csv:"colorize_imbalance"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:         windowEnd,
		AvgGenerationUS:   s.AvgGeneration.Microseconds(),
		MinGenerationUS:   s.MinGeneration.Microseconds(),
		MaxGenerationUS:   s.MaxGeneration.Microseconds(),
		GenerationsPerSec: s.GenerationsPerSec,
		CellsPerSec:       s.CellsPerSec,
		FPS:               s.FPS,
		UpdatePct:         s.PhasePct[PhaseUpdate],
		ColorizePct:       s.PhasePct[PhaseColorize],
		SwapPct:           s.PhasePct[PhaseSwap],
		TelemetryPct:      s.PhasePct[PhaseTelemetry],
		UpdateImbalance:   s.PhaseImbalance[PhaseUpdate],
		ColorizeImbalance: s.PhaseImbalance[PhaseColorize],
	}
}
