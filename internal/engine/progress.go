package engine

import (
	"fmt"

	"github.com/roach88/kumihimo/internal/ir"
	"github.com/roach88/kumihimo/internal/rules"
)

// Progress is the (moves completed, total steps) pair shown to the user.
type Progress struct {
	Done  int
	Total int
}

// Fraction returns Done/Total in [0, 1].
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Done) / float64(p.Total)
	if f > 1 {
		return 1
	}
	return f
}

func (p Progress) String() string {
	return fmt.Sprintf("step %d / %d", p.Done, p.Total)
}

// Snapshot is an immutable view of a session for renderers.
type Snapshot struct {
	SessionID string
	PatternID string
	Revision  uint64
	State     State
	Busy      bool
	Progress  Progress
	Layout    ir.Layout
	Log       ir.MoveLog

	// Selected is the selected strand id, or empty.
	Selected string

	// Expected is the prescribed move; valid only when HasExpected.
	Expected    rules.Prescribed
	HasExpected bool
}
