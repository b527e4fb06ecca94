package life

import (
	"fmt"
	"image/color"
	"math"
)

// DeadColor is the display colour of a Dead cell.
var DeadColor = color.RGBA{A: 255}

// DefaultPalette is the colour of species 0..9.
var DefaultPalette = []color.RGBA{
	{R: 255, G: 0, B: 0, A: 255},     // red
	{R: 0, G: 255, B: 0, A: 255},     // green
	{R: 0, G: 0, B: 255, A: 255},     // blue
	{R: 255, G: 255, B: 0, A: 255},   // yellow
	{R: 0, G: 255, B: 255, A: 255},   // cyan
	{R: 255, G: 0, B: 255, A: 255},   // magenta
	{R: 255, G: 165, B: 0, A: 255},   // orange
	{R: 128, G: 0, B: 128, A: 255},   // purple
	{R: 255, G: 192, B: 203, A: 255}, // pink
	{R: 255, G: 255, B: 255, A: 255}, // white
}

// ColorTable maps species IDs to display colours. It is immutable once built
// and shared read-only by all workers.
type ColorTable struct {
	colors []color.RGBA
}

// NewColorTable builds a table for numSpecies species. Species beyond the end
// of palette get evenly spaced hues.
func NewColorTable(numSpecies int, palette []color.RGBA) (ColorTable, error) {
	if numSpecies <= 0 || numSpecies > MaxSpecies {
		return ColorTable{}, fmt.Errorf("life: species count %d outside [1, %d]", numSpecies, MaxSpecies)
	}
	colors := make([]color.RGBA, numSpecies)
	for s := range colors {
		if s < len(palette) {
			colors[s] = palette[s]
			colors[s].A = 255
			continue
		}
		colors[s] = hue(float64(s) * 0.618033988749895)
	}
	return ColorTable{colors: colors}, nil
}

// Len returns the number of species in the table.
func (t ColorTable) Len() int { return len(t.colors) }

// Color returns the colour of c. Dead maps to DeadColor.
func (t ColorTable) Color(c Cell) color.RGBA {
	if c == Dead {
		return DeadColor
	}
	return t.colors[c]
}

// hue returns a saturated colour at fraction h of the colour wheel.
func hue(h float64) color.RGBA {
	h = (h - math.Floor(h)) * 6
	x := 1 - math.Abs(math.Mod(h, 2)-1)
	var r, g, b float64
	switch int(h) {
	case 0:
		r, g = 1, x
	case 1:
		r, g = x, 1
	case 2:
		g, b = 1, x
	case 3:
		g, b = x, 1
	case 4:
		r, b = x, 1
	default:
		r, b = 1, x
	}
	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 255}
}

// Census counts the cells of each species in a region.
type Census struct {
	Species [MaxSpecies]int
	Dead    int
}

// Add accumulates o into c.
func (c *Census) Add(o Census) {
	for s, n := range o.Species {
		c.Species[s] += n
	}
	c.Dead += o.Dead
}

// Live returns the number of live cells.
func (c Census) Live() int {
	var n int
	for _, v := range c.Species {
		n += v
	}
	return n
}

// Colorize writes display for every cell of p from next and returns the
// census of p.
func Colorize(next *Grid, display []color.RGBA, p Partition, table ColorTable) Census {
	if !p.Within(next.Rows, next.Cols) || len(display) != len(next.Cells) {
		panic(fmt.Sprintf("life: colorize %v on %dx%d grid with %d pixels", p, next.Rows, next.Cols, len(display)))
	}

	var census Census
	for row := p.Row0; row < p.Row1; row++ {
		base := row * next.Cols
		for col := p.Col0; col < p.Col1; col++ {
			c := next.Cells[base+col]
			if c == Dead {
				display[base+col] = DeadColor
				census.Dead++
				continue
			}
			display[base+col] = table.colors[c]
			census.Species[c]++
		}
	}
	return census
}
