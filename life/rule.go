package life

import "fmt"

// Offsets lists the Moore neighbourhood in evaluation order.
var Offsets = [8][2]int{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {-1, 1}, {1, -1}, {1, 1},
}

// Birth and survival thresholds.
const (
	BirthCount = 3
	SurviveMin = 2
	SurviveMax = 3
)

// Outcome is the neighbourhood summary of one cell.
// For a live cell Count holds the same-species neighbour count; for a dead
// cell Tally holds the number of neighbours of each species.
type Outcome struct {
	Alive bool
	Count int
	Tally [MaxSpecies]uint8
}

// Evaluate summarises the neighbourhood of (row, col) in g. Neighbours outside
// the grid are skipped; there is no wraparound. It never writes.
func Evaluate(g *Grid, row, col int) Outcome {
	status := g.Cells[row*g.Cols+col]
	out := Outcome{Alive: status != Dead}

	for _, off := range Offsets {
		r, c := row+off[0], col+off[1]
		if !g.InBounds(r, c) {
			continue
		}
		n := g.Cells[r*g.Cols+c]
		if out.Alive {
			if n == status {
				out.Count++
			}
		} else if n != Dead {
			out.Tally[n]++
		}
	}
	return out
}

// Decide applies the transition rule to a cell whose current value is cell
// and whose neighbourhood is o. idx identifies the cell to the chooser.
func Decide(o Outcome, cell Cell, idx int, ch Chooser) Cell {
	if o.Alive {
		if o.Count < SurviveMin || o.Count > SurviveMax {
			return Dead
		}
		return cell
	}

	var candidates [MaxSpecies]Cell
	n := 0
	for s, count := range o.Tally {
		if count == BirthCount {
			candidates[n] = Cell(s)
			n++
		}
	}
	switch n {
	case 0:
		return Dead
	case 1:
		return candidates[0]
	}
	return candidates[ch.Choose(idx, n)]
}

// Counts tallies the transitions made while updating a partition.
type Counts struct {
	Births int
	Deaths int
}

// Add accumulates o into c.
func (c *Counts) Add(o Counts) {
	c.Births += o.Births
	c.Deaths += o.Deaths
}

// Update writes next for every cell of p, reading only cur.
func Update(cur, next *Grid, p Partition, ch Chooser) Counts {
	if !p.Within(cur.Rows, cur.Cols) {
		panic(fmt.Sprintf("life: partition %v outside %dx%d grid", p, cur.Rows, cur.Cols))
	}

	var counts Counts
	for row := p.Row0; row < p.Row1; row++ {
		base := row * cur.Cols
		for col := p.Col0; col < p.Col1; col++ {
			idx := base + col
			was := cur.Cells[idx]
			now := Decide(Evaluate(cur, row, col), was, idx, ch)
			next.Cells[idx] = now
			switch {
			case was == Dead && now != Dead:
				counts.Births++
			case was != Dead && now == Dead:
				counts.Deaths++
			}
		}
	}
	return counts
}
