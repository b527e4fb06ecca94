package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/multilife/config"
	"github.com/pthm-cable/multilife/life"
	"github.com/pthm-cable/multilife/sim"
)

// Case is one backend and worker count to measure.
type Case struct {
	Backend life.Policy
	Workers int
}

func (c Case) String() string {
	return fmt.Sprintf("%s/%d", c.Backend, c.Workers)
}

// Result is the timing summary of one case.
type Result struct {
	Backend     string  `csv:"backend"`
	Workers     int     `csv:"workers"`
	Partitions  int     `csv:"partitions"`
	Generations int     `csv:"generations"`
	MeanUS      float64 `csv:"mean_us"`
	StdUS       float64 `csv:"std_us"`
	P50US       float64 `csv:"p50_us"`
	P90US       float64 `csv:"p90_us"`
	MaxUS       float64 `csv:"max_us"`
	GensPerSec  float64 `csv:"generations_per_sec"`
	Live        int     `csv:"live"`
	Matches     bool    `csv:"matches_reference"`
}

// parseCases expands comma-separated backend and worker lists into every
// combination.
func parseCases(backends, workers string) ([]Case, error) {
	var counts []int
	for _, w := range strings.Split(workers, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(w))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid worker count %q", w)
		}
		counts = append(counts, n)
	}

	var cases []Case
	for _, b := range strings.Split(backends, ",") {
		p := life.Policy(strings.TrimSpace(b))
		if !p.Valid() {
			return nil, fmt.Errorf("unknown backend %q", b)
		}
		for _, n := range counts {
			cases = append(cases, Case{Backend: p, Workers: n})
		}
	}
	return cases, nil
}

// runCase steps a fresh engine for the given number of generations and
// returns its timing summary and final grid.
func runCase(base *config.Config, c Case, seed uint64, generations int) (Result, *life.Grid, error) {
	cfg := *base
	cfg.Scheduler.Backend = string(c.Backend)
	cfg.Scheduler.Workers = c.Workers
	if err := cfg.Finalize(); err != nil {
		return Result{}, nil, err
	}

	e, err := sim.NewEngine(&cfg, sim.Options{Seed: seed})
	if err != nil {
		return Result{}, nil, fmt.Errorf("%v: %w", c, err)
	}
	defer e.Close()

	samples := make([]float64, 0, generations)
	start := time.Now()
	for i := 0; i < generations; i++ {
		t0 := time.Now()
		if _, err := e.Step(); err != nil {
			return Result{}, nil, fmt.Errorf("%v: %w", c, err)
		}
		samples = append(samples, float64(time.Since(t0).Microseconds()))
	}
	elapsed := time.Since(start)

	r := summarize(samples)
	r.Backend = string(c.Backend)
	r.Workers = e.Workers()
	r.Partitions = e.Partitions()
	r.Generations = generations
	r.Live = e.Last().Census.Live()
	if elapsed > 0 {
		r.GensPerSec = float64(generations) / elapsed.Seconds()
	}
	return r, e.Current().Clone(), nil
}

// summarize fills the timing fields of a Result from per-generation
// durations in microseconds.
func summarize(samples []float64) Result {
	if len(samples) == 0 {
		return Result{}
	}
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	var r Result
	r.MeanUS, r.StdUS = stat.MeanStdDev(sorted, nil)
	r.P50US = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	r.P90US = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	r.MaxUS = sorted[len(sorted)-1]
	return r
}
