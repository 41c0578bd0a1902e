package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderOptions controls text rendering.
type RenderOptions struct {
	// Color draws threads in their strand colours. When false every thread
	// is shown by its column symbol, which keeps output stable for golden
	// files and pipes.
	Color bool
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

func paint(color, s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(s)
}

// LooseHeader returns the title line of a loose rendering.
func LooseHeader(d LooseDiagram) string {
	return fmt.Sprintf("pattern %s  loose  steps %d/%d", d.PatternID, len(d.Steps), d.TotalSteps)
}

// TightHeader returns the title line of a tight rendering.
func TightHeader(d TightDiagram) string {
	return fmt.Sprintf("pattern %s  tight  steps %d/%d", d.PatternID, len(d.Rows), d.TotalSteps)
}

// RenderLoose draws the loose diagram, one text row per step.
func RenderLoose(d LooseDiagram, opts RenderOptions) string {
	var b strings.Builder
	header := LooseHeader(d)
	if opts.Color {
		header = headerStyle.Render(header)
	}
	b.WriteString(header)
	b.WriteByte('\n')
	b.WriteString(orderLine(d.Initial, opts))
	b.WriteByte('\n')

	for _, step := range d.Steps {
		fmt.Fprintf(&b, "%4d  ", step.Index)
		if step.Skipped {
			note := fmt.Sprintf("skipped: %s not in column order", step.Move)
			if opts.Color {
				note = dimStyle.Render(note)
			}
			b.WriteString(note)
			b.WriteByte('\n')
			continue
		}

		cells := make([]string, d.Threads())
		symbols := symbolsByID(d.Initial)
		var moving Segment
		for _, seg := range step.Segments {
			if seg.Moving {
				moving = seg
				continue
			}
			cells[seg.From] = looseCell(seg, symbols[seg.StrandID], opts)
		}
		cells[moving.From] = looseCell(moving, symbols[moving.StrandID], opts)

		b.WriteString(strings.Join(cells, " "))
		fmt.Fprintf(&b, "  %s  col %d→%d\n", step.Move, moving.From, moving.To)
	}

	b.WriteString(orderLine(d.Final(), opts))
	b.WriteByte('\n')
	return b.String()
}

func looseCell(seg Segment, symbol rune, opts RenderOptions) string {
	glyph := "┃"
	if seg.Moving {
		switch {
		case seg.To > seg.From:
			glyph = "╲"
		case seg.To < seg.From:
			glyph = "╱"
		}
	}
	if opts.Color {
		return paint(seg.Color, glyph)
	}
	if !seg.Moving {
		return string(symbol)
	}
	switch glyph {
	case "╲":
		return `\`
	case "╱":
		return "/"
	}
	return "|"
}

// RenderTight draws the tight diagram, one text row per band.
func RenderTight(d TightDiagram, opts RenderOptions) string {
	var b strings.Builder
	header := TightHeader(d)
	if opts.Color {
		header = headerStyle.Render(header)
	}
	b.WriteString(header)
	b.WriteByte('\n')

	for _, row := range d.Rows {
		fmt.Fprintf(&b, "%4d  ", row.Index)
		for _, c := range row.Cells {
			if opts.Color {
				b.WriteString(paint(c.Color, "██"))
			} else {
				b.WriteRune(c.Symbol)
			}
		}
		if row.Skipped {
			b.WriteString("  skipped")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func orderLine(order []Column, opts RenderOptions) string {
	cells := make([]string, len(order))
	for i, c := range order {
		if opts.Color {
			cells[i] = paint(c.Color, string(c.Symbol))
		} else {
			cells[i] = string(c.Symbol)
		}
	}
	return "      " + strings.Join(cells, " ")
}

func symbolsByID(order []Column) map[string]rune {
	out := make(map[string]rune, len(order))
	for _, c := range order {
		out[c.StrandID] = c.Symbol
	}
	return out
}
