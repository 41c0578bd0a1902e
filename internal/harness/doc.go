// Package harness runs scripted play sessions against the braid state
// machine.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: kongo_first_moves
//	description: "The first two-zone moves and an undo"
//	pattern: kongo_gumi_8
//	session_id: test-session-0001
//	steps:
//	  - select: t7
//	    expect: accepted
//	  - choose: 14
//	    expect: rejected
//	  - choose: 15
//	  - undo: true
//	  - auto: 4
//	assertions:
//	  - type: log_length
//	    count: 4
//	  - type: strand_at
//	    strand: t7
//	    position: 7
//	  - type: preview_consistent
//
// Each step sets exactly one of select, choose, cancel, undo, restart or
// auto. The optional expect clause is "accepted" or "rejected".
//
// # Assertion Types
//
//   - log_length: the move log holds count moves
//   - strand_at: a strand sits at a slot
//   - state: the session lifecycle state (idle, ready, awaiting_selection,
//     awaiting_destination, complete)
//   - preview_consistent: both preview models replay the log with no skips
//     and the log replays through the rule engine to the live layout
//   - layout_equals_setup: every strand is back on its setup slot
//
// # Deterministic Testing
//
// Sessions run with an instant animator, a fixed session id and a logical
// clock for trace sequence numbers, so the same scenario always produces a
// byte-identical trace for golden comparison.
package harness
