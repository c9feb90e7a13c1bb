package clock

import (
	"context"
	"time"
)

// RealClock is backed by the time package.
type RealClock struct {
	loc *time.Location
}

var _ Source = RealClock{}

// Real returns a wall clock reporting time in loc. A nil loc means time.Local.
func Real(loc *time.Location) RealClock {
	if loc == nil {
		loc = time.Local
	}
	return RealClock{loc: loc}
}

// UTC returns a wall clock reporting time in UTC.
func UTC() RealClock { return Real(time.UTC) }

func (c RealClock) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

func (c RealClock) Now() time.Time { return time.Now().In(c.Location()) }

func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Sleep waits on a timer; a cancelled ctx stops the timer and returns ctx.Err().
func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
