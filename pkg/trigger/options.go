package trigger

import (
	"time"

	"tasque/pkg/clock"
	"tasque/pkg/logx"
)

type config struct {
	clock   clock.Clock
	sleeper clock.Sleeper
	log     logx.Logger
}

// Option configures a Stream or a Scheduler.
type Option func(*config)

func defaultConfig() config {
	return config{clock: clock.UTC()}
}

func buildConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.sleeper == nil {
		if sl, ok := cfg.clock.(clock.Sleeper); ok {
			cfg.sleeper = sl
		} else {
			cfg.sleeper = clock.UTC()
		}
	}
	return cfg
}

// WithClock sets the time source. Occurrences are computed in the location of the times it
// reports. If c can also sleep and no WithSleeper is given, the Scheduler sleeps on c.
func WithClock(c clock.Clock) Option {
	return func(cfg *config) {
		if c != nil {
			cfg.clock = c
		}
	}
}

// WithLocation uses the wall clock in loc.
func WithLocation(loc *time.Location) Option {
	return WithClock(clock.Real(loc))
}

// WithSleeper sets the primitive the Scheduler waits with.
func WithSleeper(s clock.Sleeper) Option {
	return func(cfg *config) {
		if s != nil {
			cfg.sleeper = s
		}
	}
}

func WithLogger(l logx.Logger) Option {
	return func(cfg *config) { cfg.log = l }
}
