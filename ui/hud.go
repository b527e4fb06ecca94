package ui

import (
	"fmt"
	"image/color"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/multilife/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title      string
	Generation int
	Backend    string
	Workers    int
	Partitions int
	Species    int
	Alive      int // species with live cells
	Live       int
	Births     int
	Deaths     int
	Speed      int
	FPS        int32
	Paused     bool
	Hover      string // description of the cell under the cursor
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	h.renderer.DrawPanel(5, 5, 360, 110)

	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Gen: %d | Speed: %dx | FPS: %d", data.Generation, data.Speed, data.FPS),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Live: %d | Births: %d | Deaths: %d", data.Live, data.Births, data.Deaths),
		10, 55, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("%s x%d workers, %d parts | Species %d/%d",
			data.Backend, data.Workers, data.Partitions, data.Alive, data.Species),
		10, 75, 14, rl.Gray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 93, 16, rl.Yellow)
	if data.Hover != "" {
		rl.DrawText(data.Hover, 100, 95, 14, rl.LightGray)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the phase breakdown of stats.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	p.renderer.DrawPanel(x-5, y-5, 230, 114)

	rl.DrawText("Generation Timing", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s  (%.0f gen/s)", stats.AvgGeneration.Round(time.Microsecond), stats.GenerationsPerSec),
		x, y, 14, rl.Yellow)
	y += 16
	rl.DrawText(fmt.Sprintf("%.1f Mcells/s", stats.CellsPerSec/1e6), x, y, 12, rl.LightGray)
	y += 14

	for _, phase := range []string{telemetry.PhaseUpdate, telemetry.PhaseColorize, telemetry.PhaseSwap, telemetry.PhaseTelemetry} {
		pct := stats.PhasePct[phase]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%%s", phase, stats.PhaseAvg[phase].Round(time.Microsecond), pct, skew(stats, phase)),
			x, y, 12, color,
		)
		y += 14
	}
}

// skew formats a phase's partition imbalance, if it has one.
func skew(stats telemetry.PerfStats, phase string) string {
	r, ok := stats.PhaseImbalance[phase]
	if !ok {
		return ""
	}
	return fmt.Sprintf(" x%.2f", r)
}

// SpeciesData holds per-species populations for the species panel.
type SpeciesData struct {
	Populations []int
	Live        int
	Colors      []color.RGBA
}

// SpeciesPanel shows each species' share of the live cells.
type SpeciesPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewSpeciesPanel creates a new species panel.
func NewSpeciesPanel(x, y, width int32) *SpeciesPanel {
	return &SpeciesPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (s *SpeciesPanel) SetPosition(x, y int32) {
	s.x = x
	s.y = y
}

// section builds one share bar per species.
func (s *SpeciesPanel) section(n int) SectionDescriptor {
	fields := make([]FieldDescriptor, n)
	for i := range fields {
		fields[i] = FieldDescriptor{
			Label:  fmt.Sprintf("#%d", i),
			Widget: WidgetBar,
			Getter: func(d any) float32 {
				sd := d.(SpeciesData)
				if sd.Live == 0 {
					return 0
				}
				return float32(sd.Populations[i]) / float32(sd.Live)
			},
			ColorGetter: func(d any) rl.Color {
				return rl.Color(d.(SpeciesData).Colors[i])
			},
		}
	}
	return SectionDescriptor{Title: "Species Share", Fields: fields}
}

// Draw renders the panel.
func (s *SpeciesPanel) Draw(data SpeciesData) {
	n := min(len(data.Populations), len(data.Colors))
	sd := s.section(n)

	r := s.renderer
	padding := r.Theme.Padding
	r.DrawPanel(s.x, s.y, s.width, r.SectionHeight(sd)+padding*2)
	r.DrawSection(s.x+padding, s.y+padding, sd, data, s.width-padding*2)
}
