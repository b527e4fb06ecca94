package sim

import (
	"image/color"

	"github.com/pthm-cable/multilife/life"
)

// The kernel backend runs one work-item per cell: each call sees only its
// global cell offset, the read-only inputs and its own output slot. A
// partition is a 1xN work group and the pool is the device queue.

// updateItem computes next for the cell at gid.
func updateItem(cur, next *life.Grid, ch life.Chooser, gid int) life.Cell {
	row, col := gid/cur.Cols, gid%cur.Cols
	c := life.Decide(life.Evaluate(cur, row, col), cur.Cells[gid], gid, ch)
	next.Cells[gid] = c
	return c
}

// colorItem writes the display pixel for the cell at gid.
func colorItem(src *life.Grid, display []color.RGBA, table life.ColorTable, gid int) life.Cell {
	c := src.Cells[gid]
	display[gid] = table.Color(c)
	return c
}

// kernelUpdate launches updateItem over every cell of the work group.
func kernelUpdate(cur, next *life.Grid, p life.Partition, ch life.Chooser) life.Counts {
	var counts life.Counts
	for row := p.Row0; row < p.Row1; row++ {
		for gid := row*cur.Cols + p.Col0; gid < row*cur.Cols+p.Col1; gid++ {
			before := cur.Cells[gid]
			after := updateItem(cur, next, ch, gid)
			switch {
			case before == life.Dead && after != life.Dead:
				counts.Births++
			case before != life.Dead && after == life.Dead:
				counts.Deaths++
			}
		}
	}
	return counts
}

// kernelColorize launches colorItem over every cell of the work group.
func kernelColorize(src *life.Grid, display []color.RGBA, p life.Partition, table life.ColorTable) life.Census {
	var census life.Census
	for row := p.Row0; row < p.Row1; row++ {
		for gid := row*src.Cols + p.Col0; gid < row*src.Cols+p.Col1; gid++ {
			if c := colorItem(src, display, table, gid); c == life.Dead {
				census.Dead++
			} else {
				census.Species[c]++
			}
		}
	}
	return census
}
