package life

import "fmt"

// Partition is a half-open rectangle of cells [Row0, Row1) x [Col0, Col1)
// owned by one worker for one phase.
type Partition struct {
	Row0, Row1 int
	Col0, Col1 int
}

// String implements fmt.Stringer.
func (p Partition) String() string {
	return fmt.Sprintf("rows[%d,%d) cols[%d,%d)", p.Row0, p.Row1, p.Col0, p.Col1)
}

// Cells returns the number of cells in p.
func (p Partition) Cells() int {
	if p.Empty() {
		return 0
	}
	return (p.Row1 - p.Row0) * (p.Col1 - p.Col0)
}

// Empty reports whether p covers no cells.
func (p Partition) Empty() bool {
	return p.Row1 <= p.Row0 || p.Col1 <= p.Col0
}

// Within reports whether p lies inside a rows x cols grid.
func (p Partition) Within(rows, cols int) bool {
	return p.Row0 >= 0 && p.Col0 >= 0 && p.Row1 <= rows && p.Col1 <= cols &&
		p.Row0 <= p.Row1 && p.Col0 <= p.Col1
}

// Whole returns the single partition covering a rows x cols grid.
func Whole(rows, cols int) Partition {
	return Partition{Row0: 0, Row1: rows, Col0: 0, Col1: cols}
}

// RowBands splits the grid into w contiguous row bands of rows/w rows each;
// the last band absorbs the remainder. Bands may be empty when w > rows.
func RowBands(rows, cols, w int) []Partition {
	if w < 1 {
		w = 1
	}
	per := rows / w
	parts := make([]Partition, w)
	for i := range parts {
		start := i * per
		end := start + per
		if i == w-1 {
			end = rows
		}
		parts[i] = Partition{Row0: start, Row1: end, Col0: 0, Col1: cols}
	}
	return parts
}

// Tiles splits the grid into edge x edge tiles in row-major order. Tiles on
// the bottom and right borders are clipped to the grid.
func Tiles(rows, cols, edge int) []Partition {
	return blocks(rows, cols, edge, edge)
}

// WorkGroups splits every row into groups of size consecutive cells, the
// layout of a one-dimensional kernel launch over each row.
func WorkGroups(rows, cols, size int) []Partition {
	return blocks(rows, cols, 1, size)
}

func blocks(rows, cols, h, w int) []Partition {
	if h < 1 {
		h = 1
	}
	if w < 1 {
		w = 1
	}
	tr := (rows + h - 1) / h
	tc := (cols + w - 1) / w
	parts := make([]Partition, 0, tr*tc)
	for r := 0; r < rows; r += h {
		for c := 0; c < cols; c += w {
			parts = append(parts, Partition{
				Row0: r, Row1: min(r+h, rows),
				Col0: c, Col1: min(c+w, cols),
			})
		}
	}
	return parts
}

// Policy names a partitioning scheme.
type Policy string

const (
	PolicyBands  Policy = "bands"
	PolicyTiles  Policy = "tiles"
	PolicyKernel Policy = "kernel"
)

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool {
	switch p {
	case PolicyBands, PolicyTiles, PolicyKernel:
		return true
	}
	return false
}

// Layout configures how a grid is partitioned.
type Layout struct {
	Policy        Policy
	Workers       int // bands only
	TileSize      int // tiles only
	WorkGroupSize int // kernel only
}

// Partitions returns the partitions of a rows x cols grid under l.
func (l Layout) Partitions(rows, cols int) ([]Partition, error) {
	switch l.Policy {
	case PolicyBands:
		return RowBands(rows, cols, l.Workers), nil
	case PolicyTiles:
		if l.TileSize < 1 {
			return nil, fmt.Errorf("life: tile size %d must be positive", l.TileSize)
		}
		return Tiles(rows, cols, l.TileSize), nil
	case PolicyKernel:
		if l.WorkGroupSize < 1 {
			return nil, fmt.Errorf("life: work group size %d must be positive", l.WorkGroupSize)
		}
		return WorkGroups(rows, cols, l.WorkGroupSize), nil
	}
	return nil, fmt.Errorf("life: unknown partition policy %q", l.Policy)
}
