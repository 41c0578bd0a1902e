package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kumihimo/internal/ir"
	"github.com/roach88/kumihimo/internal/rules"
	"github.com/roach88/kumihimo/internal/testutil"
)

func strandsAt(positions ...int) []ir.Strand {
	out := make([]ir.Strand, len(positions))
	for i, p := range positions {
		out[i] = ir.Strand{ID: fmt.Sprintf("t%d", i), Color: fmt.Sprintf("C%d", i), Position: p}
	}
	return out
}

func kongoPattern() ir.Pattern {
	return ir.Pattern{
		ID:         rules.KongoGumi8,
		Name:       "Kongo Gumi",
		Setup:      strandsAt(0, 1, 2, 3, 4, 5, 6, 7),
		TotalSteps: 16,
	}
}

func kakuPattern() ir.Pattern {
	return ir.Pattern{
		ID:         rules.KakuYatsuGumi8,
		Name:       "Kaku Yatsu Gumi",
		Setup:      strandsAt(1, 2, 5, 6, 9, 10, 13, 14),
		TotalSteps: 16,
	}
}

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithIDGenerator(testutil.NewFixedIDGenerator("session-1")),
	}
	return New(append(base, opts...)...)
}

func loaded(t *testing.T, p ir.Pattern, opts ...Option) *Session {
	t.Helper()
	s := newTestSession(t, opts...)
	require.NoError(t, s.Load(p))
	return s
}

// commit plays the prescribed move and fails the test if it is not accepted.
func commit(t *testing.T, s *Session) ir.Move {
	t.Helper()
	p, ok := s.Expected()
	require.True(t, ok)
	require.True(t, s.SelectStrand(p.Source.ID))
	accepted, err := s.ChooseDestination(context.Background(), p.Destination)
	require.NoError(t, err)
	require.True(t, accepted)
	return p.Move()
}

func TestSession_NewIsIdle(t *testing.T) {
	s := newTestSession(t)

	assert.Equal(t, Idle, s.State())
	assert.False(t, s.Busy())
	assert.False(t, s.SelectStrand("t0"))
	assert.False(t, s.Undo())
	_, ok := s.Expected()
	assert.False(t, ok)
}

func TestSession_Load(t *testing.T) {
	s := loaded(t, kongoPattern())

	assert.Equal(t, Ready, s.State())
	assert.Equal(t, "session-1", s.ID())
	assert.Equal(t, 0, s.Step())
	assert.Empty(t, s.Log())
	assert.Equal(t, ir.MustLayout(kongoPattern().Setup), s.Layout())
	assert.Equal(t, Progress{Done: 0, Total: 16}, s.Progress())
}

func TestSession_LoadUnknownPattern(t *testing.T) {
	s := newTestSession(t)
	p := kongoPattern()
	p.ID = "kongo_gumi_9"

	err := s.Load(p)
	require.Error(t, err)
	assert.True(t, IsUnknownPattern(err))

	var upe *rules.UnknownPatternError
	require.True(t, errors.As(err, &upe))
	assert.Equal(t, rules.KongoGumi8, upe.Suggestion)
	assert.Equal(t, Idle, s.State())
}

func TestSession_LoadInvalidSetup(t *testing.T) {
	tests := []struct {
		name  string
		patch func(*ir.Pattern)
	}{
		{"shared slot", func(p *ir.Pattern) { p.Setup[1].Position = 0 }},
		{"off ring", func(p *ir.Pattern) { p.Setup[0].Position = 16 }},
		{"zero steps", func(p *ir.Pattern) { p.TotalSteps = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t)
			p := kongoPattern()
			tt.patch(&p)

			err := s.Load(p)
			var re *RuntimeError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, ErrCodeInvalidSetup, re.Code)
			assert.Equal(t, Idle, s.State())
		})
	}
}

func TestSession_LoadCopiesSetup(t *testing.T) {
	p := kongoPattern()
	s := loaded(t, p)

	p.Setup[0].Position = 12
	assert.Equal(t, 0, s.Pattern().Setup[0].Position)
}

func TestSession_TwoZoneScenario(t *testing.T) {
	s := loaded(t, kongoPattern())

	// Step 0: strand at 7 goes to the first vacancy scanning 15..8
	assert.True(t, s.IsLegalSource("t7"))
	require.True(t, s.SelectStrand("t7"))
	assert.Equal(t, AwaitingDestination, s.State())
	assert.True(t, s.IsLegalDestination(15))
	assert.False(t, s.IsLegalDestination(14))

	accepted, err := s.ChooseDestination(context.Background(), 15)
	require.NoError(t, err)
	require.True(t, accepted)
	assert.Equal(t, AwaitingSelection, s.State())
	assert.Equal(t, ir.MoveLog{{StrandID: "t7", From: 7, To: 15}}, s.Log())

	// Step 1: the lowest bottom strand returns to the first vacancy scanning 7..0
	p, ok := s.Expected()
	require.True(t, ok)
	assert.Equal(t, "t7", p.Source.ID)
	assert.Equal(t, 15, p.Source.Position)
	assert.Equal(t, 7, p.Destination)
}

func TestSession_SelectWrongStrandIsNoop(t *testing.T) {
	s := loaded(t, kongoPattern())
	before := s.Snapshot()

	assert.False(t, s.SelectStrand("t0"))
	assert.False(t, s.SelectStrand("nope"))

	after := s.Snapshot()
	assert.Equal(t, before.State, after.State)
	assert.Equal(t, before.Revision, after.Revision)
	_, selected := s.Selected()
	assert.False(t, selected)
}

func TestSession_ChooseWrongDestinationIsNoop(t *testing.T) {
	s := loaded(t, kongoPattern())
	require.True(t, s.SelectStrand("t7"))

	accepted, err := s.ChooseDestination(context.Background(), 14)
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Equal(t, AwaitingDestination, s.State())
	assert.Equal(t, 0, s.Step())

	sel, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, "t7", sel.ID)
}

func TestSession_ChooseWithoutSelectionIsNoop(t *testing.T) {
	s := loaded(t, kongoPattern())

	accepted, err := s.ChooseDestination(context.Background(), 15)
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Equal(t, Ready, s.State())
}

func TestSession_SelectWhileAwaitingDestinationIsNoop(t *testing.T) {
	s := loaded(t, kongoPattern())
	require.True(t, s.SelectStrand("t7"))

	assert.False(t, s.SelectStrand("t7"))
	assert.False(t, s.IsLegalSource("t7"))
}

func TestSession_CancelSelection(t *testing.T) {
	s := loaded(t, kongoPattern())
	assert.False(t, s.CancelSelection())

	require.True(t, s.SelectStrand("t7"))
	assert.True(t, s.CancelSelection())
	assert.Equal(t, AwaitingSelection, s.State())
	_, ok := s.Selected()
	assert.False(t, ok)

	// Selection is accepted again after a cancel
	assert.True(t, s.SelectStrand("t7"))
}

func TestSession_UndoEmptyHistoryIsNoop(t *testing.T) {
	s := loaded(t, kongoPattern())
	before := s.Snapshot()

	assert.False(t, s.Undo())
	assert.Equal(t, before, s.Snapshot())
}

func TestSession_UndoIsStrictInverse(t *testing.T) {
	for _, p := range []ir.Pattern{kongoPattern(), kakuPattern()} {
		t.Run(p.ID, func(t *testing.T) {
			s := loaded(t, p)
			setup := s.Layout()

			layouts := []ir.Layout{setup}
			for i := 0; i < p.TotalSteps; i++ {
				commit(t, s)
				layouts = append(layouts, s.Layout())
				assert.Equal(t, s.Step(), s.historyLen())
			}
			require.Equal(t, Complete, s.State())

			for i := p.TotalSteps; i > 0; i-- {
				require.True(t, s.Undo())
				assert.Equal(t, layouts[i-1], s.Layout(), "after undo to step %d", i-1)
				assert.Equal(t, s.Step(), s.historyLen())
			}

			assert.Equal(t, setup, s.Layout())
			assert.Empty(t, s.Log())
			assert.Equal(t, AwaitingSelection, s.State())
			assert.False(t, s.Undo())
		})
	}
}

func TestSession_UndoClearsSelection(t *testing.T) {
	s := loaded(t, kongoPattern())
	commit(t, s)
	require.True(t, s.SelectStrand("t7"))

	require.True(t, s.Undo())
	_, ok := s.Selected()
	assert.False(t, ok)
	assert.Equal(t, AwaitingSelection, s.State())
	assert.Equal(t, 0, s.Step())
}

func TestSession_Complete(t *testing.T) {
	p := kakuPattern()
	p.TotalSteps = 3
	s := loaded(t, p)

	for i := 0; i < 3; i++ {
		commit(t, s)
	}

	assert.Equal(t, Complete, s.State())
	assert.Equal(t, 1.0, s.Progress().Fraction())
	_, ok := s.Expected()
	assert.False(t, ok)
	assert.False(t, s.SelectStrand("t6"))

	// Undo leaves the finished state
	require.True(t, s.Undo())
	assert.Equal(t, AwaitingSelection, s.State())
	_, ok = s.Expected()
	assert.True(t, ok)
}

func TestSession_RestartResets(t *testing.T) {
	gen := testutil.NewSequenceGenerator("session")
	s := newTestSession(t, WithIDGenerator(gen))
	require.NoError(t, s.Load(kongoPattern()))
	commit(t, s)
	commit(t, s)

	require.NoError(t, s.Load(kongoPattern()))
	assert.Equal(t, Ready, s.State())
	assert.Empty(t, s.Log())
	assert.Equal(t, 0, s.historyLen())
	assert.Equal(t, "session-2", s.ID())
}

func TestSession_SecondCommitWhileAnimatingIsDropped(t *testing.T) {
	anim := testutil.NewBlockingAnimator()
	s := loaded(t, kongoPattern(), WithAnimator(anim))
	ctx := context.Background()

	require.True(t, s.SelectStrand("t7"))

	type result struct {
		accepted bool
		err      error
	}
	first := make(chan result, 1)
	go func() {
		ok, err := s.ChooseDestination(ctx, 15)
		first <- result{ok, err}
	}()

	assert.Equal(t, ir.Move{StrandID: "t7", From: 7, To: 15}, <-anim.Started())
	require.True(t, s.Busy())

	// Every request during the animation is dropped
	accepted, err := s.ChooseDestination(ctx, 15)
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.False(t, s.Undo())
	assert.False(t, s.CancelSelection())
	assert.False(t, s.SelectStrand("t7"))
	assert.False(t, s.IsLegalDestination(15))
	assert.ErrorIs(t, s.Load(kongoPattern()), ErrBusy)
	assert.Equal(t, 0, s.Step(), "nothing committed while animating")

	anim.Release()
	r := <-first
	require.NoError(t, r.err)
	assert.True(t, r.accepted)

	assert.False(t, s.Busy())
	assert.Equal(t, 1, s.Step(), "log advanced exactly once")
	assert.Len(t, anim.Started(), 0, "no second animation was started")
}

func TestSession_AnimatorErrorCommitsNothing(t *testing.T) {
	boom := errors.New("tween aborted")
	anim := testutil.NewRecordingAnimator(boom)
	s := loaded(t, kongoPattern(), WithAnimator(anim))
	setup := s.Layout()

	require.True(t, s.SelectStrand("t7"))
	accepted, err := s.ChooseDestination(context.Background(), 15)
	assert.False(t, accepted)
	assert.ErrorIs(t, err, boom)

	assert.False(t, s.Busy())
	assert.Equal(t, 0, s.Step())
	assert.Equal(t, setup, s.Layout())
	assert.Equal(t, AwaitingDestination, s.State())
	assert.Len(t, anim.Moves(), 1)
}

func TestSession_CancelledContext(t *testing.T) {
	s := loaded(t, kongoPattern())
	require.True(t, s.SelectStrand("t7"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	accepted, err := s.ChooseDestination(ctx, 15)
	assert.False(t, accepted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, s.Step())
}

func TestSession_SnapshotIsIndependent(t *testing.T) {
	s := loaded(t, kongoPattern())
	commit(t, s)

	snap := s.Snapshot()
	snap.Log[0].To = 3

	assert.Equal(t, 15, s.Log()[0].To)
	assert.Equal(t, "session-1", snap.SessionID)
	assert.Equal(t, rules.KongoGumi8, snap.PatternID)
	assert.True(t, snap.HasExpected)
	assert.Equal(t, 7, snap.Expected.Destination)
}

func TestSession_RevisionAdvancesOnChange(t *testing.T) {
	s := loaded(t, kongoPattern())
	r0 := s.Revision()

	require.True(t, s.SelectStrand("t7"))
	r1 := s.Revision()
	assert.Greater(t, r1, r0)

	s.SelectStrand("t0")
	assert.Equal(t, r1, s.Revision())
}

func TestProgress(t *testing.T) {
	assert.Equal(t, "step 3 / 16", Progress{Done: 3, Total: 16}.String())
	assert.Equal(t, 0.25, Progress{Done: 4, Total: 16}.Fraction())
	assert.Equal(t, 0.0, Progress{}.Fraction())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "awaiting_destination", AwaitingDestination.String())
	assert.Equal(t, "unknown", State(42).String())

	st, ok := ParseState("complete")
	require.True(t, ok)
	assert.Equal(t, Complete, st)
	_, ok = ParseState("done")
	assert.False(t, ok)
}
