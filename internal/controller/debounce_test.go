package controller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_LatestGenerationWins(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	first := d.Begin("k")
	second := d.Begin("k")

	assert.False(t, d.Current("k", first))
	assert.True(t, d.Current("k", second))
	assert.False(t, d.Settle(context.Background(), "k", first))
	assert.True(t, d.Settle(context.Background(), "k", second))
}

func TestDebouncer_KeysAreIndependent(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	a := d.Begin("a")
	b := d.Begin("b")

	assert.True(t, d.Current("a", a))
	assert.True(t, d.Current("b", b))
}

func TestDebouncer_Forget(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	gen := d.Begin("k")
	d.Forget("k")
	assert.False(t, d.Current("k", gen))

	next := d.Begin("k")
	assert.NotEqual(t, gen, next)
	assert.True(t, d.Current("k", next))
}

func TestDebouncer_DefaultDelay(t *testing.T) {
	assert.Equal(t, DefaultDebounceDelay, NewDebouncer(0).Delay())
}

func TestDebouncer_ReleaseDropsOnlyLatest(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	first := d.Begin("k")
	second := d.Begin("k")

	d.Release("k", first)
	assert.Equal(t, 1, d.Pending())
	assert.True(t, d.Current("k", second))

	d.Release("k", second)
	assert.Zero(t, d.Pending())
	assert.False(t, d.Current("k", first))
	assert.False(t, d.Current("k", second))
}

func TestDebouncer_CancelledSettleReleases(t *testing.T) {
	d := NewDebouncer(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := d.Begin("k")
	assert.False(t, d.Settle(ctx, "k", gen))
	assert.Zero(t, d.Pending())
}
