// Package life implements the multi-species cellular automaton: the grid
// buffers, the neighbour rule, the transition rule, colour mapping and the
// partitioning policies used to evaluate a generation in parallel.
package life

import (
	"errors"
	"fmt"
)

// Cell holds a species ID in [0, numSpecies) or Dead.
type Cell int8

// Dead marks a cell that no species occupies.
const Dead Cell = -1

// MaxSpecies is the largest species count a run may use.
const MaxSpecies = 16

// ErrInvalidDimensions is returned when a grid would have no cells.
var ErrInvalidDimensions = errors.New("life: grid dimensions must be positive")

// Grid is a rows x cols buffer of cells stored row-major.
type Grid struct {
	Rows, Cols int
	Cells      []Cell
}

// NewGrid allocates a grid with every cell Dead.
func NewGrid(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, rows, cols)
	}
	g := &Grid{Rows: rows, Cols: cols, Cells: make([]Cell, rows*cols)}
	g.Fill(Dead)
	return g, nil
}

// MustGrid is like NewGrid but panics on invalid dimensions.
func MustGrid(rows, cols int) *Grid {
	g, err := NewGrid(rows, cols)
	if err != nil {
		panic(err)
	}
	return g
}

// Index returns the flat offset of (row, col).
func (g *Grid) Index(row, col int) int {
	return row*g.Cols + col
}

// InBounds reports whether (row, col) lies inside the grid.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.Rows && col >= 0 && col < g.Cols
}

// At returns the cell at (row, col).
func (g *Grid) At(row, col int) Cell {
	return g.Cells[row*g.Cols+col]
}

// Set writes the cell at (row, col).
func (g *Grid) Set(row, col int, c Cell) {
	g.Cells[row*g.Cols+col] = c
}

// Fill sets every cell to c.
func (g *Grid) Fill(c Cell) {
	for i := range g.Cells {
		g.Cells[i] = c
	}
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	c := &Grid{Rows: g.Rows, Cols: g.Cols, Cells: make([]Cell, len(g.Cells))}
	copy(c.Cells, g.Cells)
	return c
}

// Equal reports whether both grids have the same shape and cells.
func (g *Grid) Equal(o *Grid) bool {
	if g.Rows != o.Rows || g.Cols != o.Cols {
		return false
	}
	for i, c := range g.Cells {
		if o.Cells[i] != c {
			return false
		}
	}
	return true
}

// Generations holds the current and next buffers of a run.
// Current is read-only and Next is write-only while a generation is computed.
type Generations struct {
	Current *Grid
	Next    *Grid
}

// NewGenerations allocates both buffers.
func NewGenerations(rows, cols int) (*Generations, error) {
	cur, err := NewGrid(rows, cols)
	if err != nil {
		return nil, err
	}
	next, _ := NewGrid(rows, cols)
	return &Generations{Current: cur, Next: next}, nil
}

// Swap exchanges the buffers by reference; no cells are copied.
func (gs *Generations) Swap() {
	gs.Current, gs.Next = gs.Next, gs.Current
}
