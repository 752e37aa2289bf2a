// Package clock provides the system clock and a deterministic fake for tests.
package clock

import (
	"sync"
	"time"

	"github.com/xvierd/wellflow/internal/ports"
)

// System is the wall clock. Its ticks come from a time.Ticker, which drops
// ticks when the callback falls behind.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// EverySecond starts a goroutine that calls tick once per second.
func (System) EverySecond(tick func()) func() {
	ticker := time.NewTicker(time.Second)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				select {
				case <-done:
					return
				default:
				}
				tick()
			}
		}
	}()

	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

// Fake is deterministic and test-friendly. Ticks fire only when Tick is called.
type Fake struct {
	mu      sync.Mutex
	t       time.Time
	nextID  int
	tickers map[int]func()
}

func NewFake(start time.Time) *Fake {
	return &Fake{t: start, tickers: make(map[int]func())}
}

func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Fake) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func (c *Fake) EverySecond(tick func()) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.tickers[id] = tick
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.tickers, id)
		c.mu.Unlock()
	}
}

// Tick advances the clock by n seconds, firing every active ticker after
// each second. Tickers cancelled mid-way stop receiving ticks.
func (c *Fake) Tick(n int) {
	for range n {
		c.mu.Lock()
		c.t = c.t.Add(time.Second)
		ids := make([]int, 0, len(c.tickers))
		for id := range c.tickers {
			ids = append(ids, id)
		}
		c.mu.Unlock()

		for _, id := range ids {
			c.mu.Lock()
			tick, ok := c.tickers[id]
			c.mu.Unlock()
			if ok {
				tick()
			}
		}
	}
}

// Active returns the number of live tick subscriptions.
func (c *Fake) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

var (
	_ ports.Clock = System{}
	_ ports.Clock = (*Fake)(nil)
)
