// Package ir provides the canonical data model for kumihimo braiding.
//
// This package contains the braid vocabulary only. All other internal
// packages import ir; ir imports nothing internal. This keeps the model the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - The ring has a fixed size (RingSize) and at most one strand per slot
//   - Layout is a value type: copying it produces an independent snapshot
//   - Moves are immutable once logged; the log length is the step counter
//   - NO float types in anything that is hashed or archived
//   - All JSON tags use snake_case except the catalog fields inherited from
//     patterns.json (totalSteps, previewImage)
package ir
