package preview

import (
	"slices"
	"sort"

	"github.com/roach88/kumihimo/internal/ir"
)

// Column is one thread in the column order.
type Column struct {
	StrandID string
	Color    string
	// Symbol is a stable single-letter tag used by plain renderings.
	Symbol rune
}

// initialOrder returns the setup strands sorted by ascending position.
// Strands sharing a position keep their setup order.
func initialOrder(setup []ir.Strand) []Column {
	sorted := slices.Clone(setup)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	out := make([]Column, len(sorted))
	for i, s := range sorted {
		out[i] = Column{StrandID: s.ID, Color: s.Color, Symbol: symbolFor(i)}
	}
	return out
}

func symbolFor(i int) rune {
	const symbols = "abcdefghijklmnopqrstuvwxyz"
	if i < len(symbols) {
		return rune(symbols[i])
	}
	return '?'
}

func indexOf(order []Column, id string) int {
	return slices.IndexFunc(order, func(c Column) bool { return c.StrandID == id })
}

// reinsert moves order[from] to index 0 when front is true, else to the end.
// It returns the moved column's new index.
func reinsert(order []Column, from int, front bool) int {
	moved := order[from]
	copy(order[from:], order[from+1:])
	if front {
		copy(order[1:], order[:len(order)-1])
		order[0] = moved
		return 0
	}
	order[len(order)-1] = moved
	return len(order) - 1
}
