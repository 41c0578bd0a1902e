package rules

import (
	"fmt"
	"slices"

	"github.com/roach88/kumihimo/internal/ir"
)

// Family names a closed set of move algorithms.
type Family string

const (
	// FamilyTwoZone alternates strands between the two halves of the ring.
	FamilyTwoZone Family = "two-zone"

	// FamilyFourZone rotates strands through four quadrants.
	FamilyFourZone Family = "four-zone"
)

// Zone is a contiguous run of ring slots [Lo, Hi).
type Zone struct {
	Name string
	Lo   int
	Hi   int
}

// Contains reports whether a slot belongs to the zone.
func (z Zone) Contains(position int) bool {
	return position >= z.Lo && position < z.Hi
}

func (z Zone) String() string {
	return fmt.Sprintf("%s[%d,%d)", z.Name, z.Lo, z.Hi)
}

// End selects which strand of a zone moves once the zone is sorted by
// ascending position.
type End int

const (
	// First picks the lowest-position strand.
	First End = iota
	// Last picks the highest-position strand.
	Last
)

func (e End) String() string {
	if e == Last {
		return "last"
	}
	return "first"
}

// Phase is one entry of a family's schedule.
type Phase struct {
	Source      Zone
	Pick        End
	Destination Zone
	// Scan is the declared order in which destination slots are tried.
	Scan []int
}

// Prescribed is the unique legal move for a layout and step.
type Prescribed struct {
	Source      ir.Strand
	Destination int
}

// Move converts the prescription into a loggable move.
func (p Prescribed) Move() ir.Move {
	return ir.Move{StrandID: p.Source.ID, From: p.Source.Position, To: p.Destination}
}

// Rule computes the next legal move for one pattern family.
//
// Implementations must be pure: Next depends only on its arguments.
type Rule interface {
	// Family identifies the algorithm.
	Family() Family

	// Cycle is the schedule length; Phase(s) == Phase(s+Cycle()).
	Cycle() int

	// Phase returns the schedule entry for a step.
	Phase(step int) Phase

	// Next returns the prescribed move, or false when the source zone is
	// empty or no destination slot is vacant.
	Next(layout ir.Layout, step int) (Prescribed, bool)
}

// schedule is the shared implementation behind every family.
type schedule []Phase

func (s schedule) index(step int) int {
	n := len(s)
	return ((step % n) + n) % n
}

func (s schedule) phase(step int) Phase {
	p := s[s.index(step)]
	p.Scan = slices.Clone(p.Scan)
	return p
}

func (s schedule) next(layout ir.Layout, step int) (Prescribed, bool) {
	p := s[s.index(step)]

	zone := layout.Filter(p.Source.Contains)
	if len(zone) == 0 {
		return Prescribed{}, false
	}
	source := zone[0]
	if p.Pick == Last {
		source = zone[len(zone)-1]
	}

	for _, pos := range p.Scan {
		if !layout.Occupied(pos) {
			return Prescribed{Source: source, Destination: pos}, true
		}
	}
	return Prescribed{}, false
}
