// Package clock abstracts the time source and the sleep primitive so schedulers can be
// driven by wall time in production and by a virtual clock in tests.
package clock

import (
	"context"
	"time"
)

// Clock reports the current instant. The location of the returned time is the location
// calendar patterns are evaluated in.
type Clock interface {
	Now() time.Time
}

// Sleeper blocks the caller for d. Implementations return ctx.Err() when ctx ends first.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// Source is a Clock that can also sleep and arm one-shot timers.
type Source interface {
	Clock
	Sleeper

	// After returns a channel that receives once d has elapsed. d <= 0 fires immediately.
	After(d time.Duration) <-chan time.Time
}
