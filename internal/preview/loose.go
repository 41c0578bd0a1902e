package preview

import (
	"slices"

	"github.com/roach88/kumihimo/internal/ir"
)

// Segment is one thread drawn across one step of the loose diagram.
type Segment struct {
	StrandID string
	Color    string
	// From and To are column indices at the top and bottom of the step.
	From   int
	To     int
	Moving bool
}

// LooseStep is one row of the loose diagram.
type LooseStep struct {
	Index int
	Move  ir.Move
	// Skipped is set when the move names a strand not in the column order.
	// Nothing is drawn for a skipped step.
	Skipped bool
	// Segments holds the stationary threads in column order, then the
	// moving thread.
	Segments []Segment
	// Order is the column order after the step.
	Order []Column
}

// LooseDiagram is the crossing-thread picture of a move log.
type LooseDiagram struct {
	PatternID  string
	TotalSteps int
	Initial    []Column
	Steps      []LooseStep
}

// Loose replays log from p.Setup into the loose model.
func Loose(p ir.Pattern, log ir.MoveLog) LooseDiagram {
	order := initialOrder(p.Setup)
	d := LooseDiagram{
		PatternID:  p.ID,
		TotalSteps: p.TotalSteps,
		Initial:    slices.Clone(order),
		Steps:      make([]LooseStep, 0, len(log)),
	}

	for i, move := range log {
		step := LooseStep{Index: i, Move: move}
		from := indexOf(order, move.StrandID)
		if from < 0 {
			step.Skipped = true
			step.Order = slices.Clone(order)
			d.Steps = append(d.Steps, step)
			continue
		}

		// Stationary threads are drawn at their pre-move index.
		step.Segments = make([]Segment, 0, len(order))
		for j, c := range order {
			if j == from {
				continue
			}
			step.Segments = append(step.Segments, Segment{StrandID: c.StrandID, Color: c.Color, From: j, To: j})
		}

		moved := order[from]
		to := reinsert(order, from, ir.InFirstHalf(move.To))
		step.Segments = append(step.Segments, Segment{
			StrandID: moved.StrandID,
			Color:    moved.Color,
			From:     from,
			To:       to,
			Moving:   true,
		})
		step.Order = slices.Clone(order)
		d.Steps = append(d.Steps, step)
	}
	return d
}

// Threads returns the number of columns.
func (d LooseDiagram) Threads() int {
	return len(d.Initial)
}

// Skips returns the indices of skipped steps.
func (d LooseDiagram) Skips() []int {
	var out []int
	for _, s := range d.Steps {
		if s.Skipped {
			out = append(out, s.Index)
		}
	}
	return out
}

// Final returns the column order after the last step.
func (d LooseDiagram) Final() []Column {
	if len(d.Steps) == 0 {
		return slices.Clone(d.Initial)
	}
	return slices.Clone(d.Steps[len(d.Steps)-1].Order)
}
