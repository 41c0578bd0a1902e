package preview

// Drawing constants for the loose model.
const (
	LooseSegmentHeight = 15.0
	LooseLineWidth     = 6.0

	// TightSegmentRatio is a tight band's height relative to its width.
	TightSegmentRatio = 0.8

	// canvasMarginSteps is blank room kept below the last step.
	canvasMarginSteps = 5
)

// Line is a stroke on the loose canvas.
type Line struct {
	X1, Y1, X2, Y2 float64
	Width          float64
	Color          string
}

// Rect is a filled cell on the tight canvas.
type Rect struct {
	X, Y, W, H float64
	Color      string
}

// LooseGeometry sizes the loose canvas for a given width.
type LooseGeometry struct {
	ThreadWidth   float64
	SegmentHeight float64
	LineWidth     float64
	CanvasHeight  float64
}

// X returns the horizontal centre of a column. Column 0 sits one thread
// width in from the left edge.
func (g LooseGeometry) X(column int) float64 {
	return g.ThreadWidth * float64(column+1)
}

// Y returns the top of a step.
func (g LooseGeometry) Y(step int) float64 {
	return g.SegmentHeight * float64(step)
}

// Geometry returns the canvas layout for width pixels.
func (d LooseDiagram) Geometry(width float64) LooseGeometry {
	return LooseGeometry{
		ThreadWidth:   width / float64(d.Threads()+1),
		SegmentHeight: LooseSegmentHeight,
		LineWidth:     LooseLineWidth,
		CanvasHeight:  float64(d.TotalSteps+canvasMarginSteps) * LooseSegmentHeight,
	}
}

// Lines returns the strokes of the whole diagram in drawing order.
func (d LooseDiagram) Lines(width float64) []Line {
	g := d.Geometry(width)
	var out []Line
	for _, step := range d.Steps {
		y := g.Y(step.Index)
		for _, seg := range step.Segments {
			out = append(out, Line{
				X1:    g.X(seg.From),
				Y1:    y,
				X2:    g.X(seg.To),
				Y2:    y + g.SegmentHeight,
				Width: g.LineWidth,
				Color: seg.Color,
			})
		}
	}
	return out
}

// Scroll returns the vertical offset that centres the latest step.
func (d LooseDiagram) Scroll(width, viewport float64) float64 {
	g := d.Geometry(width)
	return ScrollOffset(len(d.Steps), g.SegmentHeight, viewport, g.CanvasHeight)
}

// TightGeometry sizes the tight canvas for a given width.
type TightGeometry struct {
	ThreadWidth   float64
	SegmentHeight float64
	CanvasHeight  float64
}

// Geometry returns the canvas layout for width pixels.
func (d TightDiagram) Geometry(width float64) TightGeometry {
	n := d.Threads()
	if n == 0 {
		return TightGeometry{}
	}
	tw := width / float64(n)
	sh := tw * TightSegmentRatio
	return TightGeometry{
		ThreadWidth:   tw,
		SegmentHeight: sh,
		CanvasHeight:  float64(d.TotalSteps+canvasMarginSteps) * sh,
	}
}

// Rects returns the filled cells of the whole diagram in drawing order.
func (d TightDiagram) Rects(width float64) []Rect {
	g := d.Geometry(width)
	var out []Rect
	for _, row := range d.Rows {
		y := g.SegmentHeight * float64(row.Index)
		for j, c := range row.Cells {
			out = append(out, Rect{
				X:     g.ThreadWidth * float64(j),
				Y:     y,
				W:     g.ThreadWidth,
				H:     g.SegmentHeight,
				Color: c.Color,
			})
		}
	}
	return out
}

// Scroll returns the vertical offset that centres the latest row.
func (d TightDiagram) Scroll(width, viewport float64) float64 {
	g := d.Geometry(width)
	return ScrollOffset(len(d.Rows), g.SegmentHeight, viewport, g.CanvasHeight)
}

// ScrollOffset keeps the most recent step vertically centred in a viewport.
// The result is clamped to [0, canvas-viewport].
func ScrollOffset(steps int, segmentHeight, viewport, canvas float64) float64 {
	off := float64(steps)*segmentHeight - viewport/2
	if limit := canvas - viewport; off > limit {
		off = limit
	}
	if off < 0 {
		return 0
	}
	return off
}
