package clock

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFake_TickAndCancel(t *testing.T) {
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	c := NewFake(start)

	var n int
	cancel := c.EverySecond(func() { n++ })
	assert.Equal(t, 1, c.Active())

	c.Tick(3)
	assert.Equal(t, 3, n)
	assert.Equal(t, start.Add(3*time.Second), c.Now())

	cancel()
	cancel()
	c.Tick(2)
	assert.Equal(t, 3, n)
	assert.Equal(t, 0, c.Active())
}

func TestFake_CancelFromInsideTick(t *testing.T) {
	c := NewFake(time.Now())

	var n int
	var cancel func()
	cancel = c.EverySecond(func() {
		n++
		cancel()
	})

	c.Tick(5)
	assert.Equal(t, 1, n)
}

func TestFake_SetAndAdvance(t *testing.T) {
	start := time.Date(2026, time.March, 2, 23, 59, 0, 0, time.UTC)
	c := NewFake(start)

	c.Advance(2 * time.Minute)
	assert.Equal(t, 3, c.Now().Day())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestSystem_EverySecond(t *testing.T) {
	if testing.Short() {
		t.Skip("waits on the wall clock")
	}

	var n atomic.Int32
	cancel := System{}.EverySecond(func() { n.Add(1) })
	time.Sleep(1500 * time.Millisecond)
	cancel()
	cancel()

	got := n.Load()
	time.Sleep(1200 * time.Millisecond)
	assert.GreaterOrEqual(t, got, int32(1))
	assert.Equal(t, got, n.Load(), "no ticks after cancel")
}
