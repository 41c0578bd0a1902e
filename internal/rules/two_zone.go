package rules

import "github.com/roach88/kumihimo/internal/ir"

// Halves of the ring used by the two-zone family.
var (
	TopHalf    = Zone{Name: "top", Lo: 0, Hi: ir.HalfRing}
	BottomHalf = Zone{Name: "bottom", Lo: ir.HalfRing, Hi: ir.RingSize}
)

var twoZoneSchedule = schedule{
	// Even steps: highest top strand drops to the first free bottom slot.
	{Source: TopHalf, Pick: Last, Destination: BottomHalf, Scan: []int{15, 14, 13, 12, 11, 10, 9, 8}},
	// Odd steps: lowest bottom strand climbs back to the first free top slot.
	{Source: BottomHalf, Pick: First, Destination: TopHalf, Scan: []int{7, 6, 5, 4, 3, 2, 1, 0}},
}

// TwoZone is the alternating family used by kongo gumi on eight strands.
type TwoZone struct{}

var _ Rule = TwoZone{}

func (TwoZone) Family() Family { return FamilyTwoZone }

func (TwoZone) Cycle() int { return len(twoZoneSchedule) }

func (TwoZone) Phase(step int) Phase { return twoZoneSchedule.phase(step) }

func (TwoZone) Next(layout ir.Layout, step int) (Prescribed, bool) {
	return twoZoneSchedule.next(layout, step)
}
