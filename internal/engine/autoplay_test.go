package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kumihimo/internal/ir"
	"github.com/roach88/kumihimo/internal/testutil"
)

func TestAutoplay_StopsAtCompletion(t *testing.T) {
	s := loaded(t, kakuPattern())

	n, err := Autoplay(context.Background(), s, 100)
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Equal(t, Complete, s.State())
}

func TestAutoplay_Partial(t *testing.T) {
	s := loaded(t, kakuPattern())

	n, err := Autoplay(context.Background(), s, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	expected := ir.MoveLog{
		{StrandID: "t1", From: 2, To: 15},
		{StrandID: "t6", From: 13, To: 3},
		{StrandID: "t3", From: 6, To: 11},
		{StrandID: "t4", From: 9, To: 7},
	}
	assert.Equal(t, expected, s.Log())
}

func TestAutoplay_UsesAnimator(t *testing.T) {
	anim := testutil.NewRecordingAnimator(nil)
	s := loaded(t, kongoPattern(), WithAnimator(anim))

	_, err := Autoplay(context.Background(), s, 2)
	require.NoError(t, err)
	assert.Equal(t, []ir.Move(s.Log()), anim.Moves())
}

func TestAutoplay_ReplacesPendingSelection(t *testing.T) {
	s := loaded(t, kongoPattern())
	require.True(t, s.SelectStrand("t7"))

	n, err := Autoplay(context.Background(), s, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAutoplay_Idle(t *testing.T) {
	_, err := Autoplay(context.Background(), newTestSession(t), 1)
	assert.Error(t, err)
}

func TestAutoplay_NoLegalMove(t *testing.T) {
	p := kongoPattern()
	// Bottom half only: the first even step has no source
	p.Setup = []ir.Strand{{ID: "b", Color: "x", Position: 9}}
	s := loaded(t, p)

	n, err := Autoplay(context.Background(), s, 3)
	assert.Equal(t, 0, n)

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeNoLegalMove, re.Code)
	assert.Equal(t, 0, re.Step)
}

func TestAutoplay_ContextCancelled(t *testing.T) {
	s := loaded(t, kongoPattern())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := Autoplay(ctx, s, 5)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, context.Canceled)
}
