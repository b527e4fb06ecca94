package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/multilife/config"
	"github.com/pthm-cable/multilife/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = time-based)")
	maxGenerations := flag.Int("max-generations", 0, "Stop after N generations (0 = unlimited)")
	backend := flag.String("backend", "", "Scheduler backend: bands, tiles or kernel (empty = use config)")
	workers := flag.Int("workers", -1, "Worker goroutines (0 = GOMAXPROCS, -1 = use config)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Generations per frame in graphical mode")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *backend != "" {
		cfg.Scheduler.Backend = *backend
	}
	if *workers >= 0 {
		cfg.Scheduler.Workers = *workers
	}
	if err := cfg.Finalize(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = uint64(time.Now().UnixNano())
	}

	opts := game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		OutputDir:      *outputDir,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
	}

	if *headless {
		os.Exit(runHeadless(cfg, opts, *maxGenerations))
	}
	os.Exit(runWindow(cfg, opts, *maxGenerations))
}

// runHeadless steps the grid without raylib until interrupted or the
// generation cap is reached.
func runHeadless(cfg *config.Config, opts game.Options, maxGenerations int) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, err := game.NewGame(cfg, opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return 1
	}
	defer g.Unload()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"max_generations", maxGenerations,
	)

	start := time.Now()
	err = g.RunHeadless(ctx, maxGenerations)
	switch {
	case errors.Is(err, context.Canceled):
		slog.Info("interrupted", "generation", g.Generation())
	case err != nil:
		slog.Error("simulation failed", "generation", g.Generation(), "error", err)
		return 1
	default:
		slog.Info("max generations reached", "generation", g.Generation(), "elapsed", time.Since(start).String())
	}
	return 0
}

// runWindow opens the raylib window and runs the interactive loop.
func runWindow(cfg *config.Config, opts game.Options, maxGenerations int) int {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Multi-Species Life")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGame(cfg, opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return 1
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if maxGenerations > 0 && g.Generation() >= maxGenerations {
			slog.Info("max generations reached", "generation", g.Generation())
			break
		}
	}

	if g.Err() != nil {
		return 1
	}
	return 0
}
