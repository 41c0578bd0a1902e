// Package engine implements the braid state machine.
//
// A Session owns the live strand layout, the move log and an undo history of
// layout snapshots. Moves are accepted only when they match the rule bound to
// the loaded pattern; every other request is a silent no-op that returns
// false.
//
// STATES:
//
//	Idle ──Load──▶ Ready ──SelectStrand──▶ AwaitingDestination
//	                 ▲                        │        │
//	                 │               CancelSelection   ChooseDestination
//	                 │                        ▼        ▼
//	                 └──────────────── AwaitingSelection ──▶ Complete
//
// Undo is accepted from any state with history and returns to
// AwaitingSelection.
//
// MOVE COMMIT:
//
// ChooseDestination marks the session busy, releases the lock, and waits for
// the Animator. While busy, SelectStrand, ChooseDestination, CancelSelection
// and Undo are dropped, not queued. When the animator resolves, the commit
// happens atomically: push snapshot, append move, apply position, clear
// selection.
//
// INVARIANTS:
//   - len(history) == len(log) at all times
//   - at most one strand per slot (enforced by ir.Layout)
//   - the rule sees only (layout, len(log))
package engine
