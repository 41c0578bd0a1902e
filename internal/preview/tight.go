package preview

import (
	"slices"

	"github.com/roach88/kumihimo/internal/ir"
)

// Cell is one column of a tight band.
type Cell struct {
	StrandID string
	Color    string
	Symbol   rune
}

// TightRow is one band of the tight diagram.
type TightRow struct {
	Index int
	Move  ir.Move
	// Skipped is set when the move names a strand not in the column order.
	// The band is still filled; only the reordering is skipped.
	Skipped bool
	// Cells are filled from the column order before the step's reordering.
	Cells []Cell
}

// TightDiagram is the stacked-band picture of a move log.
type TightDiagram struct {
	PatternID  string
	TotalSteps int
	Initial    []Column
	Rows       []TightRow
	final      []Column
}

// Tight replays log from p.Setup into the tight model.
func Tight(p ir.Pattern, log ir.MoveLog) TightDiagram {
	order := initialOrder(p.Setup)
	d := TightDiagram{
		PatternID:  p.ID,
		TotalSteps: p.TotalSteps,
		Initial:    slices.Clone(order),
		Rows:       make([]TightRow, 0, len(log)),
	}

	for i, move := range log {
		row := TightRow{Index: i, Move: move, Cells: make([]Cell, len(order))}
		for j, c := range order {
			row.Cells[j] = Cell{StrandID: c.StrandID, Color: c.Color, Symbol: c.Symbol}
		}

		from := indexOf(order, move.StrandID)
		if from < 0 {
			row.Skipped = true
		} else {
			// Origin side, not destination side.
			reinsert(order, from, !ir.InFirstHalf(move.From))
		}
		d.Rows = append(d.Rows, row)
	}
	d.final = order
	return d
}

// Threads returns the number of columns.
func (d TightDiagram) Threads() int {
	return len(d.Initial)
}

// Skips returns the indices of skipped rows.
func (d TightDiagram) Skips() []int {
	var out []int
	for _, r := range d.Rows {
		if r.Skipped {
			out = append(out, r.Index)
		}
	}
	return out
}

// Final returns the column order after the last row.
func (d TightDiagram) Final() []Column {
	if d.final == nil {
		return slices.Clone(d.Initial)
	}
	return slices.Clone(d.final)
}
