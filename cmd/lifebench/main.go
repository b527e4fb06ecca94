// Package main runs every scheduler backend on the same seeded grid, checks
// that they produce identical generations and reports their timings.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/multilife/config"
	"github.com/pthm-cable/multilife/life"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	generations := flag.Int("generations", 100, "Generations per run")
	seed := flag.Uint64("seed", 42, "RNG seed shared by every run")
	backends := flag.String("backends", "bands,tiles,kernel", "Comma-separated backends to run")
	workers := flag.String("workers", "1,"+strconv.Itoa(runtime.GOMAXPROCS(0)), "Comma-separated worker counts")
	outputDir := flag.String("output", "", "Directory for results.csv (empty = stdout only)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	cases, err := parseCases(*backends, *workers)
	if err != nil {
		log.Fatalf("invalid flags: %v", err)
	}

	fmt.Printf("Grid %dx%d, %d generations, seed %d\n", baseCfg.Grid.Rows, baseCfg.Grid.Cols, *generations, *seed)
	fmt.Printf("%-14s %6s %10s %10s %10s %10s %10s\n", "case", "parts", "mean", "std", "p50", "p90", "gen/s")

	var reference *life.Grid
	var results []Result
	mismatch := false
	for _, c := range cases {
		r, grid, err := runCase(baseCfg, c, *seed, *generations)
		if err != nil {
			log.Fatalf("run failed: %v", err)
		}

		if reference == nil {
			reference = grid
		}
		r.Matches = grid.Equal(reference)
		if !r.Matches {
			mismatch = true
		}
		results = append(results, r)

		fmt.Printf("%-14s %6d %9.0fus %9.0fus %9.0fus %9.0fus %10.1f",
			c, r.Partitions, r.MeanUS, r.StdUS, r.P50US, r.P90US, r.GensPerSec)
		if !r.Matches {
			fmt.Printf("  MISMATCH")
		}
		fmt.Println()
	}

	if *outputDir != "" {
		if err := writeResults(*outputDir, results); err != nil {
			log.Printf("failed to write results: %v", err)
		}
	}

	if mismatch {
		fmt.Println("\nBackends disagree on the final generation")
		os.Exit(1)
	}
	fmt.Println("\nAll backends produced identical generations")
}

func writeResults(dir string, results []Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "results.csv"))
	if err != nil {
		return fmt.Errorf("creating results.csv: %w", err)
	}
	defer f.Close()

	if err := gocsv.Marshal(results, f); err != nil {
		return fmt.Errorf("writing results.csv: %w", err)
	}
	fmt.Printf("Results saved to: %s\n", f.Name())
	return nil
}
