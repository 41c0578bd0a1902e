package engine

import (
	"context"
	"fmt"
)

// Autoplay applies up to n prescribed moves through the same select and
// choose path a user takes. It stops early, without error, when the pattern
// completes. It returns the number of moves committed.
func Autoplay(ctx context.Context, s *Session, n int) (int, error) {
	applied := 0
	for applied < n {
		if err := ctx.Err(); err != nil {
			return applied, err
		}

		switch s.State() {
		case Idle:
			return applied, fmt.Errorf("autoplay: no pattern loaded")
		case Complete:
			return applied, nil
		case AwaitingDestination:
			s.CancelSelection()
		}

		p, ok := s.Expected()
		if !ok {
			return applied, NewNoLegalMoveError(s.Pattern().ID, s.Step())
		}
		if !s.SelectStrand(p.Source.ID) {
			return applied, fmt.Errorf("autoplay: selection of %q dropped at step %d", p.Source.ID, s.Step())
		}
		accepted, err := s.ChooseDestination(ctx, p.Destination)
		if err != nil {
			return applied, err
		}
		if !accepted {
			return applied, fmt.Errorf("autoplay: destination %d dropped at step %d", p.Destination, s.Step())
		}
		applied++
	}
	return applied, nil
}
