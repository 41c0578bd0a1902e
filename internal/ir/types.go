package ir

import "fmt"

// Ring geometry shared by every modelled pattern family.
const (
	// RingSize is the number of slots around the marudai.
	RingSize = 16

	// HalfRing splits the ring into the first half [0,8) and second half [8,16).
	HalfRing = RingSize / 2
)

// Strand is one braiding thread (tama) sitting in a ring slot.
type Strand struct {
	ID       string `json:"id" yaml:"id"`
	Color    string `json:"color" yaml:"color"`
	Position int    `json:"position" yaml:"position"`
}

// Pattern is a named braid recipe: initial layout plus total move count.
// Patterns are immutable once loaded; the move algorithm is chosen by ID.
type Pattern struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description" yaml:"description"`
	Setup        []Strand `json:"setup" yaml:"setup"`
	TotalSteps   int      `json:"totalSteps" yaml:"totalSteps"`
	PreviewImage string   `json:"previewImage,omitempty" yaml:"previewImage,omitempty"`
}

// Move relocates one strand from one slot to a vacant slot.
type Move struct {
	StrandID string `json:"strand_id"`
	From     int    `json:"from"`
	To       int    `json:"to"`
}

// String renders the move as "id from→to".
func (m Move) String() string {
	return fmt.Sprintf("%s %d→%d", m.StrandID, m.From, m.To)
}

// MoveLog is the ordered, append-only record of committed moves.
// Its length is the authoritative step counter.
type MoveLog []Move

// Clone returns an independent copy of the log.
func (l MoveLog) Clone() MoveLog {
	if l == nil {
		return MoveLog{}
	}
	out := make(MoveLog, len(l))
	copy(out, l)
	return out
}

// InFirstHalf reports whether a slot lies in the first half of the ring.
func InFirstHalf(position int) bool {
	return position < HalfRing
}

// ValidPosition reports whether a slot index is on the ring.
func ValidPosition(position int) bool {
	return position >= 0 && position < RingSize
}
