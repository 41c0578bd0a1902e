// Package rules derives the single legal move for a braid.
//
// Each pattern family is one Rule: a pure function of the current layout and
// the number of moves already committed. A Rule partitions the ring into fixed
// zones, picks a schedule entry (Phase) by step modulo the family's cycle
// length, takes the first or last strand of the source zone sorted by
// ascending position, and scans the destination zone in a declared order for
// the first vacant slot.
//
// Rules hold no mutable state. For a fixed layout and step they return the
// same move on every call, which is what lets undo and preview replay agree
// with live play.
//
// Pattern ids are bound to rules through a Registry. Looking up an id with no
// rule is an error (*UnknownPatternError), never a silent "no move".
package rules
