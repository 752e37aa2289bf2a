package ports

import "time"

// Clock abstracts wall time and the one-second tick that drives live sessions.
// This is a driven port (implemented by adapters).
type Clock interface {
	// Now returns the current local time.
	Now() time.Time

	// EverySecond calls tick once per second until cancel is called.
	// Ticks that arrive while tick is still running are dropped.
	EverySecond(tick func()) (cancel func())
}
