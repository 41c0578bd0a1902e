package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/kumihimo/internal/engine"
	"github.com/roach88/kumihimo/internal/ir"
)

// slotWidth is the drawn width of one ring slot.
const slotWidth = 6

// ringRows returns the slots of the two drawn rows. The top row runs 0..7
// and the bottom row 15..8, so each slot sits above its opposite.
func ringRows() (top, bottom [ir.HalfRing]int) {
	for i := 0; i < ir.HalfRing; i++ {
		top[i] = i
		bottom[i] = ir.RingSize - 1 - i
	}
	return top, bottom
}

// opposite returns the slot drawn in the other row of the same column.
func opposite(pos int) int {
	return ir.RingSize - 1 - pos
}

// legalSlot returns the slot the rule wants acted on next: the source
// strand while selecting, the destination while placing.
func legalSlot(snap engine.Snapshot) (int, bool) {
	if snap.Busy || !snap.HasExpected {
		return 0, false
	}
	switch snap.State {
	case engine.Ready, engine.AwaitingSelection:
		return snap.Expected.Source.Position, true
	case engine.AwaitingDestination:
		return snap.Expected.Destination, true
	}
	return 0, false
}

// renderRing draws both rows of the ring with slot numbers.
func renderRing(snap engine.Snapshot, cursor int, styles Styles, color bool) string {
	top, bottom := ringRows()
	legal, hasLegal := legalSlot(snap)

	selectedPos := -1
	if snap.Selected != "" {
		if s, ok := snap.Layout.Find(snap.Selected); ok {
			selectedPos = s.Position
		}
	}

	row := func(slots [ir.HalfRing]int) string {
		cells := make([]string, len(slots))
		for i, pos := range slots {
			cells[i] = renderSlot(snap.Layout, pos, slotFlags{
				cursor:   pos == cursor,
				legal:    hasLegal && pos == legal,
				selected: pos == selectedPos,
			}, styles, color)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	}
	numbers := func(slots [ir.HalfRing]int) string {
		var b strings.Builder
		for _, pos := range slots {
			b.WriteString(styles.Help.Render(styles.Slot.Render(fmt.Sprintf("%d", pos))))
		}
		return b.String()
	}

	return strings.Join([]string{
		numbers(top),
		row(top),
		row(bottom),
		numbers(bottom),
	}, "\n")
}

type slotFlags struct {
	cursor   bool
	legal    bool
	selected bool
}

func renderSlot(layout ir.Layout, pos int, f slotFlags, styles Styles, color bool) string {
	label := "·"
	style := styles.Slot
	if s, ok := layout.At(pos); ok {
		label = shortID(s.ID)
		if color {
			style = style.Foreground(lipgloss.Color(s.Color))
		}
	}
	if f.legal {
		label = "[" + label + "]"
		style = style.Inherit(styles.Legal)
	}
	if f.selected {
		style = style.Inherit(styles.Selected)
	}
	if f.cursor {
		style = style.Inherit(styles.Cursor)
	}
	return style.Render(label)
}

// shortID keeps long strand ids inside a slot.
func shortID(id string) string {
	r := []rune(id)
	if len(r) > slotWidth-2 {
		return string(r[:slotWidth-2])
	}
	return id
}
