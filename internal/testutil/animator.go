package testutil

import (
	"context"
	"sync"

	"github.com/roach88/kumihimo/internal/ir"
)

// BlockingAnimator holds every move until Release is called.
//
// Tests use it to keep a session busy while they issue competing requests:
//
//	anim := testutil.NewBlockingAnimator()
//	go func() { s.ChooseDestination(ctx, 15) }()
//	<-anim.Started()
//	// session is busy here
//	anim.Release()
type BlockingAnimator struct {
	started chan ir.Move
	release chan struct{}
}

// NewBlockingAnimator creates an animator with nothing in flight.
func NewBlockingAnimator() *BlockingAnimator {
	return &BlockingAnimator{
		started: make(chan ir.Move, 16),
		release: make(chan struct{}),
	}
}

// Animate reports the move on Started and waits for Release or ctx.
func (a *BlockingAnimator) Animate(ctx context.Context, move ir.Move) error {
	a.started <- move
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-a.release:
		return nil
	}
}

// Started yields each move as its animation begins.
func (a *BlockingAnimator) Started() <-chan ir.Move {
	return a.started
}

// Release lets one waiting animation finish.
func (a *BlockingAnimator) Release() {
	a.release <- struct{}{}
}

// RecordingAnimator resolves immediately and remembers every move.
//
// Thread-safety: safe for concurrent use via internal mutex.
type RecordingAnimator struct {
	mu    sync.Mutex
	moves []ir.Move
	err   error
}

// NewRecordingAnimator creates an animator that fails with err when err is
// non-nil.
func NewRecordingAnimator(err error) *RecordingAnimator {
	return &RecordingAnimator{err: err}
}

// Animate records move and returns the configured error.
func (a *RecordingAnimator) Animate(ctx context.Context, move ir.Move) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.moves = append(a.moves, move)
	if a.err != nil {
		return a.err
	}
	return ctx.Err()
}

// Moves returns the recorded moves in order.
func (a *RecordingAnimator) Moves() []ir.Move {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]ir.Move, len(a.moves))
	copy(out, a.moves)
	return out
}
