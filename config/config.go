// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/multilife/life"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Grid      GridConfig      `yaml:"grid"`
	Species   SpeciesConfig   `yaml:"species"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width        int     `yaml:"width"`
	Height       int     `yaml:"height"`
	TargetFPS    int     `yaml:"target_fps"`
	StartupDelay float64 `yaml:"startup_delay"` // Seconds generation 0 is shown before stepping
}

// GridConfig holds the automaton dimensions.
type GridConfig struct {
	Rows        int     `yaml:"rows"`
	Cols        int     `yaml:"cols"`
	SeedDensity float64 `yaml:"seed_density"` // Fraction of cells live at startup, in (0, 1]
}

// SpeciesConfig holds species count and colours.
type SpeciesConfig struct {
	Count   int      `yaml:"count"` // Fixed species count (0 = random in [min, max])
	Min     int      `yaml:"min"`
	Max     int      `yaml:"max"`
	Palette []string `yaml:"palette"` // "#rrggbb" per species
}

// SchedulerConfig holds parallel dispatch parameters.
type SchedulerConfig struct {
	Backend           string `yaml:"backend"`            // bands, tiles or kernel
	Workers           int    `yaml:"workers"`            // Worker goroutines (0 = GOMAXPROCS)
	TileSize          int    `yaml:"tile_size"`          // Tile edge for the tiles backend
	WorkGroupSize     int    `yaml:"work_group_size"`    // Cells per work group for the kernel backend
	ParallelThreshold int    `yaml:"parallel_threshold"` // Grids smaller than this run on one goroutine
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // Generations per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"`
	BookmarkHistorySize int `yaml:"bookmark_history_size"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Palette []color.RGBA // Parsed Species.Palette
	Workers int          // Effective worker count
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize validates the config and recomputes derived values. Call it
// after changing fields programmatically.
func (c *Config) Finalize() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.computeDerived()
}

// Validate rejects configurations the simulation cannot run with.
func (c *Config) Validate() error {
	if c.Grid.Rows <= 0 || c.Grid.Cols <= 0 {
		return fmt.Errorf("%w: grid %dx%d must have positive dimensions", ErrInvalid, c.Grid.Rows, c.Grid.Cols)
	}
	if c.Grid.SeedDensity <= 0 || c.Grid.SeedDensity > 1 {
		return fmt.Errorf("%w: seed_density %v outside (0, 1]", ErrInvalid, c.Grid.SeedDensity)
	}

	s := c.Species
	if s.Count < 0 || s.Count > life.MaxSpecies {
		return fmt.Errorf("%w: species count %d outside [0, %d]", ErrInvalid, s.Count, life.MaxSpecies)
	}
	if s.Count == 0 {
		if s.Min <= 0 || s.Max > life.MaxSpecies || s.Min > s.Max {
			return fmt.Errorf("%w: species range [%d, %d] must lie in [1, %d]", ErrInvalid, s.Min, s.Max, life.MaxSpecies)
		}
	}

	sc := c.Scheduler
	if !life.Policy(sc.Backend).Valid() {
		return fmt.Errorf("%w: unknown scheduler backend %q", ErrInvalid, sc.Backend)
	}
	if sc.Workers < 0 {
		return fmt.Errorf("%w: workers %d must not be negative", ErrInvalid, sc.Workers)
	}
	if sc.TileSize <= 0 {
		return fmt.Errorf("%w: tile_size %d must be positive", ErrInvalid, sc.TileSize)
	}
	if sc.WorkGroupSize <= 0 {
		return fmt.Errorf("%w: work_group_size %d must be positive", ErrInvalid, sc.WorkGroupSize)
	}

	for i, hex := range s.Palette {
		if _, err := ParseColor(hex); err != nil {
			return fmt.Errorf("%w: palette[%d]: %v", ErrInvalid, i, err)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	c.Derived.Palette = make([]color.RGBA, len(c.Species.Palette))
	for i, hex := range c.Species.Palette {
		col, err := ParseColor(hex)
		if err != nil {
			return fmt.Errorf("%w: palette[%d]: %v", ErrInvalid, i, err)
		}
		c.Derived.Palette[i] = col
	}

	c.Derived.Workers = c.Scheduler.Workers
	if c.Derived.Workers == 0 {
		c.Derived.Workers = runtime.GOMAXPROCS(0)
	}

	if c.Telemetry.StatsWindow < 1 {
		c.Telemetry.StatsWindow = 1
	}
	return nil
}

// Layout returns the partitioning layout selected by the scheduler section.
func (c *Config) Layout() life.Layout {
	return life.Layout{
		Policy:        life.Policy(c.Scheduler.Backend),
		Workers:       c.Derived.Workers,
		TileSize:      c.Scheduler.TileSize,
		WorkGroupSize: c.Scheduler.WorkGroupSize,
	}
}

// ParseColor parses a "#rrggbb" colour.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("colour %q is not #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
