package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/kumihimo/internal/ir"
)

func TestDelayAnimator_Resolves(t *testing.T) {
	start := time.Now()
	err := DelayAnimator{Duration: 10 * time.Millisecond}.Animate(context.Background(), ir.Move{})

	assert.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestDelayAnimator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := DelayAnimator{Duration: time.Hour}.Animate(ctx, ir.Move{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnimatorFunc(t *testing.T) {
	var got ir.Move
	a := AnimatorFunc(func(_ context.Context, m ir.Move) error {
		got = m
		return nil
	})

	move := ir.Move{StrandID: "t1", From: 2, To: 15}
	assert.NoError(t, a.Animate(context.Background(), move))
	assert.Equal(t, move, got)
}

func TestClock_Monotonic(t *testing.T) {
	c := NewClock()
	assert.Equal(t, uint64(0), c.Current())
	assert.Equal(t, uint64(1), c.Next())
	assert.Equal(t, uint64(2), c.Next())
	assert.Equal(t, uint64(2), c.Current())
}

func TestFixedGenerator(t *testing.T) {
	gen := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", gen.Generate())
	assert.Equal(t, "b", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}

func TestUUIDv7Generator(t *testing.T) {
	a := UUIDv7Generator{}.Generate()
	b := UUIDv7Generator{}.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
