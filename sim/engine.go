// Package sim advances the automaton: an Engine owns the double-buffered
// grid and a persistent worker Pool dispatches each generation's phases.
package sim

import (
	"context"
	"fmt"
	"image/color"
	"math/rand/v2"
	"time"

	"github.com/pthm-cable/multilife/config"
	"github.com/pthm-cable/multilife/life"
	"github.com/pthm-cable/multilife/telemetry"
)

type (
	updateFunc   func(cur, next *life.Grid, p life.Partition, ch life.Chooser) life.Counts
	colorizeFunc func(src *life.Grid, display []color.RGBA, p life.Partition, table life.ColorTable) life.Census
)

// Options configures an Engine.
type Options struct {
	Seed   uint64      // Seeds the run when Source is nil
	Source life.Source // Overrides Seed

	// Observe is called after every committed generation, inside the
	// telemetry phase.
	Observe func(Result)
}

// Result describes one committed generation.
type Result struct {
	Generation int
	Counts     life.Counts // transitions into this generation
	Census     life.Census // population of this generation
}

// Engine owns the double-buffered grid and advances it one generation at a
// time: Update, barrier, Colorize, barrier, swap.
type Engine struct {
	gens       *life.Generations
	display    []color.RGBA
	table      life.ColorTable
	numSpecies int
	src        life.Source

	policy life.Policy
	parts  []life.Partition
	pool   *Pool
	inline bool

	updateFn   updateFunc
	colorizeFn colorizeFunc
	update     Phase
	colorize   Phase

	// Per-generation inputs read by the phases
	chooser life.Chooser
	shown   *life.Grid

	// Per-partition outputs, one slot per partition
	counts []life.Counts
	census []life.Census
	spans  []time.Duration

	generation int
	last       Result
	perf       *telemetry.PerfCollector
	observe    func(Result)
}

// NewEngine builds an engine from a finalized config. Generation 0 is
// populated and colorized before it returns.
func NewEngine(cfg *config.Config, opts Options) (*Engine, error) {
	src := opts.Source
	if src == nil {
		src = rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x5851f42d4c957f2d))
	}

	numSpecies := life.SpeciesCount(src, cfg.Species.Count, cfg.Species.Min, cfg.Species.Max)
	table, err := life.NewColorTable(numSpecies, cfg.Derived.Palette)
	if err != nil {
		return nil, fmt.Errorf("building color table: %w", err)
	}

	gens, err := life.NewGenerations(cfg.Grid.Rows, cfg.Grid.Cols)
	if err != nil {
		return nil, fmt.Errorf("allocating grid: %w", err)
	}

	layout := cfg.Layout()
	parts, err := layout.Partitions(cfg.Grid.Rows, cfg.Grid.Cols)
	if err != nil {
		return nil, fmt.Errorf("partitioning grid: %w", err)
	}

	e := &Engine{
		gens:       gens,
		display:    make([]color.RGBA, cfg.Grid.Rows*cfg.Grid.Cols),
		table:      table,
		numSpecies: numSpecies,
		src:        src,
		policy:     layout.Policy,
		parts:      parts,
		pool:       NewPool(cfg.Derived.Workers),
		inline:     cfg.Grid.Rows*cfg.Grid.Cols < cfg.Scheduler.ParallelThreshold,
		counts:     make([]life.Counts, len(parts)),
		census:     make([]life.Census, len(parts)),
		spans:      make([]time.Duration, len(parts)),
		perf:       telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow, cfg.Grid.Rows*cfg.Grid.Cols),
		observe:    opts.Observe,
	}

	e.updateFn, e.colorizeFn = life.Update, life.Colorize
	if layout.Policy == life.PolicyKernel {
		e.updateFn, e.colorizeFn = kernelUpdate, kernelColorize
	}

	e.update = Phase{Name: telemetry.PhaseUpdate, Run: func(i int, p life.Partition) {
		start := time.Now()
		e.counts[i] = e.updateFn(e.gens.Current, e.gens.Next, p, e.chooser)
		e.spans[i] = time.Since(start)
	}}
	e.colorize = Phase{Name: telemetry.PhaseColorize, Run: func(i int, p life.Partition) {
		start := time.Now()
		e.census[i] = e.colorizeFn(e.shown, e.display, p, e.table)
		e.spans[i] = time.Since(start)
	}}

	life.Populate(gens.Current, numSpecies, cfg.Grid.SeedDensity, src)

	// Generation 0 is shown before the first step
	e.shown = gens.Current
	if err := e.dispatch(&e.colorize); err != nil {
		e.Close()
		return nil, fmt.Errorf("colorizing generation 0: %w", err)
	}
	e.last = Result{Census: e.sumCensus()}

	return e, nil
}

func (e *Engine) dispatch(phase *Phase) error {
	if e.inline {
		return dispatchInline(phase, e.parts)
	}
	return e.pool.Dispatch(phase, e.parts)
}

// Step advances one generation. If either phase fails the generation is
// aborted: current is left untouched, no swap happens and the error is
// returned. The display buffer may then be partially updated.
func (e *Engine) Step() (Result, error) {
	gen := e.generation + 1
	e.perf.StartGeneration()

	e.perf.StartPhase(telemetry.PhaseUpdate)
	e.chooser = life.CellHash{Seed: e.src.Uint64()}
	if err := e.dispatch(&e.update); err != nil {
		return Result{}, fmt.Errorf("generation %d: %w", gen, err)
	}
	e.perf.RecordPartitions(telemetry.PhaseUpdate, e.spans)

	e.perf.StartPhase(telemetry.PhaseColorize)
	e.shown = e.gens.Next
	if err := e.dispatch(&e.colorize); err != nil {
		return Result{}, fmt.Errorf("generation %d: %w", gen, err)
	}
	e.perf.RecordPartitions(telemetry.PhaseColorize, e.spans)

	e.perf.StartPhase(telemetry.PhaseSwap)
	e.gens.Swap()
	e.shown = e.gens.Current
	e.generation = gen

	e.perf.StartPhase(telemetry.PhaseTelemetry)
	var counts life.Counts
	for _, c := range e.counts {
		counts.Add(c)
	}
	e.last = Result{Generation: gen, Counts: counts, Census: e.sumCensus()}
	if e.observe != nil {
		e.observe(e.last)
	}

	e.perf.EndGeneration()
	return e.last, nil
}

func (e *Engine) sumCensus() life.Census {
	var total life.Census
	for _, c := range e.census {
		total.Add(c)
	}
	return total
}

// Run steps until ctx is done, maxGenerations is reached (0 = unlimited) or
// a generation fails. present, if non-nil, is called after every generation.
// Cancellation is only observed between generations.
func (e *Engine) Run(ctx context.Context, maxGenerations int, present func(Result)) error {
	for maxGenerations <= 0 || e.generation < maxGenerations {
		if err := ctx.Err(); err != nil {
			return err
		}
		r, err := e.Step()
		if err != nil {
			return err
		}
		if present != nil {
			present(r)
		}
	}
	return nil
}

// Close stops the worker pool.
func (e *Engine) Close() {
	e.pool.Stop()
}

// Current returns the grid of the latest committed generation.
func (e *Engine) Current() *life.Grid { return e.gens.Current }

// Display returns the colour buffer of the latest committed generation.
func (e *Engine) Display() []color.RGBA { return e.display }

// Generation returns the number of committed generations.
func (e *Engine) Generation() int { return e.generation }

// NumSpecies returns the species count of the run.
func (e *Engine) NumSpecies() int { return e.numSpecies }

// Table returns the species colour table.
func (e *Engine) Table() life.ColorTable { return e.table }

// Last returns the result of the latest committed generation.
func (e *Engine) Last() Result { return e.last }

// Policy returns the partitioning policy in use.
func (e *Engine) Policy() life.Policy { return e.policy }

// Partitions returns the number of partitions dispatched per phase.
func (e *Engine) Partitions() int { return len(e.parts) }

// Workers returns the worker count, or 1 when phases run inline.
func (e *Engine) Workers() int {
	if e.inline {
		return 1
	}
	return e.pool.Workers()
}

// Perf returns the engine's phase timing collector.
func (e *Engine) Perf() *telemetry.PerfCollector { return e.perf }
