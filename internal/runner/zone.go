package runner

import (
	"time"

	"tasque/pkg/clock"
)

// zonedClock reports the wrapped clock's instants in a location that changes with the
// config. Only the runner goroutine touches loc.
type zonedClock struct {
	clock.Source
	loc *time.Location
}

func (z *zonedClock) Now() time.Time { return z.Source.Now().In(z.loc) }
