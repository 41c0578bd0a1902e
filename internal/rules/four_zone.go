package rules

import "github.com/roach88/kumihimo/internal/ir"

// Quadrants used by the four-zone family.
var (
	QuadTop    = Zone{Name: "top", Lo: 0, Hi: 4}
	QuadRight  = Zone{Name: "right", Lo: 4, Hi: 8}
	QuadBottom = Zone{Name: "bottom", Lo: 8, Hi: 12}
	QuadLeft   = Zone{Name: "left", Lo: 12, Hi: 16}
)

// Each entry moves one strand a quadrant around the ring. Scan orders start
// from the slot nearest the source quadrant.
var fourZoneSchedule = schedule{
	{Source: QuadTop, Pick: Last, Destination: QuadLeft, Scan: []int{15, 14, 13, 12}},
	{Source: QuadLeft, Pick: First, Destination: QuadTop, Scan: []int{3, 2, 1, 0}},
	{Source: QuadRight, Pick: Last, Destination: QuadBottom, Scan: []int{11, 10, 9, 8}},
	{Source: QuadBottom, Pick: First, Destination: QuadRight, Scan: []int{7, 6, 5, 4}},
}

// FourZone is the rotating family used by kaku yatsu gumi on eight strands.
type FourZone struct{}

var _ Rule = FourZone{}

func (FourZone) Family() Family { return FamilyFourZone }

func (FourZone) Cycle() int { return len(fourZoneSchedule) }

func (FourZone) Phase(step int) Phase { return fourZoneSchedule.phase(step) }

func (FourZone) Next(layout ir.Layout, step int) (Prescribed, bool) {
	return fourZoneSchedule.next(layout, step)
}
