package engine

import (
	"context"
	"time"

	"github.com/roach88/kumihimo/internal/ir"
)

// DefaultAnimationDuration matches the length of the ring tween.
const DefaultAnimationDuration = 600 * time.Millisecond

// Animator performs the visual transition for a move.
//
// The session waits for Animate to return before committing the move. A
// non-nil error aborts the commit. Implementations should honour ctx.
type Animator interface {
	Animate(ctx context.Context, move ir.Move) error
}

// AnimatorFunc adapts a function to the Animator interface.
type AnimatorFunc func(ctx context.Context, move ir.Move) error

// Animate calls f.
func (f AnimatorFunc) Animate(ctx context.Context, move ir.Move) error {
	return f(ctx, move)
}

// InstantAnimator resolves immediately. Used by autoplay, replay and tests.
type InstantAnimator struct{}

// Animate returns ctx.Err() and nothing else.
func (InstantAnimator) Animate(ctx context.Context, _ ir.Move) error {
	return ctx.Err()
}

// DelayAnimator resolves after a fixed duration.
type DelayAnimator struct {
	Duration time.Duration
}

// Animate blocks for Duration or until ctx is done.
func (a DelayAnimator) Animate(ctx context.Context, _ ir.Move) error {
	d := a.Duration
	if d <= 0 {
		d = DefaultAnimationDuration
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
