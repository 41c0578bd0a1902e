package ir

import (
	"fmt"
	"sort"
)

// LayoutErrorCode categorizes layout violations.
type LayoutErrorCode string

const (
	// ErrCodeOutOfRange indicates a slot index outside [0, RingSize).
	ErrCodeOutOfRange LayoutErrorCode = "OUT_OF_RANGE"

	// ErrCodeOccupied indicates two strands claiming the same slot.
	ErrCodeOccupied LayoutErrorCode = "OCCUPIED"

	// ErrCodeDuplicateID indicates two strands sharing an identifier.
	ErrCodeDuplicateID LayoutErrorCode = "DUPLICATE_ID"

	// ErrCodeEmptyID indicates a strand without an identifier.
	ErrCodeEmptyID LayoutErrorCode = "EMPTY_ID"

	// ErrCodeTooMany indicates more strands than ring slots.
	ErrCodeTooMany LayoutErrorCode = "TOO_MANY"

	// ErrCodeUnknownStrand indicates a move naming a strand not on the ring.
	ErrCodeUnknownStrand LayoutErrorCode = "UNKNOWN_STRAND"

	// ErrCodeWrongOrigin indicates a move whose From is not the strand's slot.
	ErrCodeWrongOrigin LayoutErrorCode = "WRONG_ORIGIN"
)

// LayoutError reports a violation of the one-strand-per-slot model.
type LayoutError struct {
	Code    LayoutErrorCode
	Message string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Layout is the live mapping of strands to ring slots.
//
// Layout is a value type backed by a fixed-size array: assigning or passing a
// Layout copies every strand record, so history snapshots never alias the live
// layout. Two layouts compare equal with == exactly when they hold the same
// strands in the same order at the same positions.
type Layout struct {
	strands [RingSize]Strand
	count   int
}

// NewLayout validates strands and builds a layout preserving their order.
func NewLayout(strands []Strand) (Layout, error) {
	var l Layout
	if len(strands) > RingSize {
		return l, &LayoutError{
			Code:    ErrCodeTooMany,
			Message: fmt.Sprintf("%d strands exceed %d slots", len(strands), RingSize),
		}
	}

	var taken [RingSize]bool
	ids := make(map[string]bool, len(strands))
	for i, s := range strands {
		if s.ID == "" {
			return Layout{}, &LayoutError{Code: ErrCodeEmptyID, Message: fmt.Sprintf("strand[%d] has no id", i)}
		}
		if ids[s.ID] {
			return Layout{}, &LayoutError{Code: ErrCodeDuplicateID, Message: fmt.Sprintf("strand id %q repeated", s.ID)}
		}
		if !ValidPosition(s.Position) {
			return Layout{}, &LayoutError{
				Code:    ErrCodeOutOfRange,
				Message: fmt.Sprintf("strand %q at position %d", s.ID, s.Position),
			}
		}
		if taken[s.Position] {
			return Layout{}, &LayoutError{
				Code:    ErrCodeOccupied,
				Message: fmt.Sprintf("position %d holds more than one strand", s.Position),
			}
		}
		ids[s.ID] = true
		taken[s.Position] = true
		l.strands[i] = s
	}
	l.count = len(strands)
	return l, nil
}

// MustLayout is like NewLayout but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustLayout(strands []Strand) Layout {
	l, err := NewLayout(strands)
	if err != nil {
		panic(err)
	}
	return l
}

// Len returns the number of strands on the ring.
func (l Layout) Len() int {
	return l.count
}

// Strands returns the strands in their original setup order.
func (l Layout) Strands() []Strand {
	out := make([]Strand, l.count)
	copy(out, l.strands[:l.count])
	return out
}

// ByPosition returns the strands sorted by ascending slot.
func (l Layout) ByPosition() []Strand {
	return l.Filter(func(int) bool { return true })
}

// Filter returns the strands whose slot satisfies keep, sorted by ascending slot.
func (l Layout) Filter(keep func(position int) bool) []Strand {
	var out []Strand
	for _, s := range l.strands[:l.count] {
		if keep(s.Position) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// At returns the strand occupying a slot.
func (l Layout) At(position int) (Strand, bool) {
	for _, s := range l.strands[:l.count] {
		if s.Position == position {
			return s, true
		}
	}
	return Strand{}, false
}

// Occupied reports whether a slot holds a strand.
func (l Layout) Occupied(position int) bool {
	_, ok := l.At(position)
	return ok
}

// Find returns the strand with the given id.
func (l Layout) Find(id string) (Strand, bool) {
	if i := l.index(id); i >= 0 {
		return l.strands[i], true
	}
	return Strand{}, false
}

func (l Layout) index(id string) int {
	for i, s := range l.strands[:l.count] {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Apply returns the layout after m. The receiver is left untouched.
func (l Layout) Apply(m Move) (Layout, error) {
	i := l.index(m.StrandID)
	if i < 0 {
		return l, &LayoutError{Code: ErrCodeUnknownStrand, Message: fmt.Sprintf("strand %q not on the ring", m.StrandID)}
	}
	if l.strands[i].Position != m.From {
		return l, &LayoutError{
			Code:    ErrCodeWrongOrigin,
			Message: fmt.Sprintf("strand %q is at %d, not %d", m.StrandID, l.strands[i].Position, m.From),
		}
	}
	if !ValidPosition(m.To) {
		return l, &LayoutError{Code: ErrCodeOutOfRange, Message: fmt.Sprintf("destination %d", m.To)}
	}
	if l.Occupied(m.To) {
		return l, &LayoutError{Code: ErrCodeOccupied, Message: fmt.Sprintf("destination %d is occupied", m.To)}
	}

	next := l
	next.strands[i].Position = m.To
	return next, nil
}
