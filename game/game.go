// Package game wraps the simulation engine with telemetry, input and
// drawing.
package game

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/multilife/camera"
	"github.com/pthm-cable/multilife/config"
	"github.com/pthm-cable/multilife/life"
	"github.com/pthm-cable/multilife/renderer"
	"github.com/pthm-cable/multilife/sim"
	"github.com/pthm-cable/multilife/telemetry"
	"github.com/pthm-cable/multilife/ui"
)

// Options configures a Game.
type Options struct {
	Seed           uint64
	LogStats       bool
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
}

// Game holds the engine and everything around it.
type Game struct {
	cfg    *config.Config
	engine *sim.Engine
	seed   uint64

	// Telemetry
	collector        *telemetry.Collector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	liveBefore       int

	// Run state
	headless       bool
	paused         bool
	stepOnce       bool
	stepsPerUpdate int
	startAt        time.Time
	err            error
	dirty          bool

	// Throughput logging
	lastLog        time.Time
	lastLogGen     int
	framesSinceLog int

	// Rendering (nil in headless mode)
	camera       *camera.Camera
	gridRenderer *renderer.GridRenderer
	hud          *ui.HUD
	perfPanel    *ui.PerfPanel
	speciesPanel *ui.SpeciesPanel
	controls     *ui.ControlsPanel
	showPerf     bool
	gridLines    bool

	screenWidth, screenHeight float32
	hoverRow, hoverCol        int
	hoverOK                   bool
}

// NewGame creates a game from a finalized config. In graphical mode the
// raylib window must already be open.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	g := &Game{
		cfg:            cfg,
		seed:           opts.Seed,
		logStats:       opts.LogStats,
		headless:       opts.Headless,
		stepsPerUpdate: min(max(opts.StepsPerUpdate, 1), ui.MaxSpeed),
	}

	engine, err := sim.NewEngine(cfg, sim.Options{Seed: opts.Seed, Observe: g.recordGeneration})
	if err != nil {
		return nil, err
	}
	g.engine = engine
	g.liveBefore = engine.Last().Census.Live()

	g.collector = telemetry.NewCollector(cfg.Telemetry.StatsWindow, engine.NumSpecies())
	g.bookmarkDetector = telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		engine.Close()
		return nil, fmt.Errorf("opening output: %w", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}
	g.outputManager = om

	slog.Info("engine ready",
		"seed", opts.Seed,
		"rows", cfg.Grid.Rows,
		"cols", cfg.Grid.Cols,
		"species", engine.NumSpecies(),
		"backend", string(engine.Policy()),
		"workers", engine.Workers(),
		"partitions", engine.Partitions(),
	)

	if !g.headless {
		g.initGraphics()
	}
	g.lastLog = time.Now()

	return g, nil
}

func (g *Game) initGraphics() {
	g.screenWidth = float32(rl.GetScreenWidth())
	g.screenHeight = float32(rl.GetScreenHeight())

	g.camera = camera.New(g.screenWidth, g.screenHeight, float32(g.cfg.Grid.Cols), float32(g.cfg.Grid.Rows))
	g.gridRenderer = renderer.NewGridRenderer(g.cfg.Grid.Rows, g.cfg.Grid.Cols)
	g.gridRenderer.Init()
	g.gridRenderer.Update(g.engine.Display())
	g.gridLines = true

	g.hud = ui.NewHUD()
	g.perfPanel = ui.NewPerfPanel(int32(g.screenWidth)-235, 10)
	g.speciesPanel = ui.NewSpeciesPanel(5, 120, 200)
	g.controls = ui.NewControlsPanel(int32(g.screenWidth)-235, 120, 230)
	g.showPerf = true

	// Generation 0 stays on screen before stepping starts
	g.startAt = time.Now().Add(time.Duration(g.cfg.Screen.StartupDelay * float64(time.Second)))
}

// Update handles input and advances the simulation by the current speed.
func (g *Game) Update() {
	g.handleInput()

	g.framesSinceLog++
	g.engine.Perf().RecordFrame()
	defer g.logThroughput()

	if time.Now().Before(g.startAt) || g.err != nil {
		return
	}

	steps := g.stepsPerUpdate
	if g.paused {
		if !g.stepOnce {
			return
		}
		steps = 1
		g.stepOnce = false
	}

	for i := 0; i < steps; i++ {
		if !g.step() {
			break
		}
	}
}

// RunHeadless steps until ctx is done or maxGenerations (0 = unlimited) is
// reached.
func (g *Game) RunHeadless(ctx context.Context, maxGenerations int) error {
	err := g.engine.Run(ctx, maxGenerations, func(sim.Result) { g.logThroughput() })
	if err != nil && ctx.Err() == nil {
		g.err = err
	}
	return err
}

// step runs one generation and reports whether it committed. A failed
// generation pauses the game.
func (g *Game) step() bool {
	if _, err := g.engine.Step(); err != nil {
		g.err = err
		g.paused = true
		slog.Error("generation aborted", "generation", g.engine.Generation()+1, "error", err)
		return false
	}
	g.dirty = true
	return true
}

// recordGeneration feeds every committed generation to telemetry.
func (g *Game) recordGeneration(r sim.Result) {
	g.collector.RecordGeneration(r.Counts, g.liveBefore)
	g.liveBefore = r.Census.Live()
	g.flushTelemetry(r)
}

// logThroughput logs generation and frame rates once per second.
func (g *Game) logThroughput() {
	now := time.Now()
	elapsed := now.Sub(g.lastLog)
	if elapsed < time.Second {
		return
	}

	gen := g.engine.Generation()
	attrs := []any{
		"generation", gen,
		"generations_per_sec", float64(gen-g.lastLogGen) / elapsed.Seconds(),
		"live", g.engine.Last().Census.Live(),
	}
	if !g.headless {
		attrs = append(attrs, "fps", float64(g.framesSinceLog)/elapsed.Seconds())
	}
	slog.Info("throughput", attrs...)

	g.lastLog = now
	g.lastLogGen = gen
	g.framesSinceLog = 0
}

// Draw renders the grid and UI.
func (g *Game) Draw() {
	if g.dirty {
		g.gridRenderer.Update(g.engine.Display())
		g.dirty = false
	}

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	g.gridRenderer.Draw(g.camera)
	if g.hoverOK && g.camera.Zoom >= 4 {
		g.gridRenderer.DrawCellHighlight(g.camera, g.hoverRow, g.hoverCol)
	}

	g.drawUI()

	rl.EndDrawing()
}

func (g *Game) drawUI() {
	last := g.engine.Last()
	populations := last.Census.Species[:g.engine.NumSpecies()]

	alive := 0
	for _, p := range populations {
		if p > 0 {
			alive++
		}
	}

	g.hud.Draw(ui.HUDData{
		Title:      "Multi-Species Life",
		Generation: g.engine.Generation(),
		Backend:    string(g.engine.Policy()),
		Workers:    g.engine.Workers(),
		Partitions: g.engine.Partitions(),
		Species:    g.engine.NumSpecies(),
		Alive:      alive,
		Live:       last.Census.Live(),
		Births:     last.Counts.Births,
		Deaths:     last.Counts.Deaths,
		Speed:      g.stepsPerUpdate,
		FPS:        rl.GetFPS(),
		Paused:     g.paused,
		Hover:      g.hoverText(),
	})

	colors := make([]color.RGBA, g.engine.NumSpecies())
	for s := range colors {
		colors[s] = g.engine.Table().Color(life.Cell(s))
	}
	g.speciesPanel.Draw(ui.SpeciesData{Populations: populations, Live: last.Census.Live(), Colors: colors})

	if g.showPerf {
		g.perfPanel.Draw(g.engine.Perf().Stats())
	}

	g.applyControls(g.controls.Draw(ui.ControlsState{
		Paused:    g.paused,
		Speed:     g.stepsPerUpdate,
		GridLines: g.gridLines,
	}))

	if g.err != nil {
		rl.DrawText(fmt.Sprintf("Stopped: %v", g.err), 10, int32(g.screenHeight)-50, 16, rl.Red)
	}

	g.hud.DrawControls(int32(g.screenHeight),
		"SPACE: Pause | N: Step | < >: Speed | Arrows/Drag: Pan | Wheel: Zoom | HOME: Fit | G: Grid | C: Controls | P: Perf")
}

func (g *Game) hoverText() string {
	if !g.hoverOK {
		return ""
	}
	c := g.engine.Current().At(g.hoverRow, g.hoverCol)
	if c == life.Dead {
		return fmt.Sprintf("(%d,%d) dead", g.hoverRow, g.hoverCol)
	}
	return fmt.Sprintf("(%d,%d) species %d", g.hoverRow, g.hoverCol, c)
}

func (g *Game) applyControls(a ui.ControlsAction) {
	if a.TogglePause {
		g.paused = !g.paused
	}
	if a.Step {
		g.paused = true
		g.stepOnce = true
	}
	if a.ToggleGridLines {
		g.gridLines = !g.gridLines
		g.gridRenderer.ToggleGridLines()
	}
	if a.ResetCamera {
		g.camera.Reset()
	}
	g.stepsPerUpdate = a.Speed
}

// Unload releases resources.
func (g *Game) Unload() {
	if g.gridRenderer != nil {
		g.gridRenderer.Unload()
	}
	g.engine.Close()
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

// Generation returns the number of committed generations.
func (g *Game) Generation() int {
	return g.engine.Generation()
}

// Engine returns the underlying engine.
func (g *Game) Engine() *sim.Engine {
	return g.engine
}

// Err returns the error that stopped the game, if any.
func (g *Game) Err() error {
	return g.err
}
