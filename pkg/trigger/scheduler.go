package trigger

import (
	"context"
	"iter"
	"time"

	"golang.org/x/time/rate"

	"tasque/pkg/clock"
	"tasque/pkg/logx"
)

// Scheduler is a Stream that waits for each fire time before returning the identifier.
type Scheduler[ID comparable] struct {
	stream  *Stream[ID]
	clock   clock.Clock
	sleeper clock.Sleeper
	log     logx.Logger
	early   *rate.Limiter
}

func NewScheduler[ID comparable](opts ...Option) *Scheduler[ID] {
	cfg := buildConfig(opts)
	return &Scheduler[ID]{
		stream:  newStream[ID](cfg),
		clock:   cfg.clock,
		sleeper: cfg.sleeper,
		log:     cfg.log,
		early:   rate.NewLimiter(rate.Every(time.Minute), 1),
	}
}

// NewUTC returns a Scheduler evaluating schedules in UTC.
func NewUTC[ID comparable](opts ...Option) *Scheduler[ID] {
	return NewScheduler[ID](append([]Option{WithLocation(time.UTC)}, opts...)...)
}

// NewLocal returns a Scheduler evaluating schedules in the local time zone.
func NewLocal[ID comparable](opts ...Option) *Scheduler[ID] {
	return NewScheduler[ID](append([]Option{WithLocation(time.Local)}, opts...)...)
}

// Stream exposes the underlying non-blocking stream.
func (s *Scheduler[ID]) Stream() *Stream[ID] { return s.stream }

func (s *Scheduler[ID]) With(task Task[ID]) *Scheduler[ID] {
	s.stream.Insert(task)
	return s
}

func (s *Scheduler[ID]) Insert(task Task[ID]) bool { return s.stream.Insert(task) }
func (s *Scheduler[ID]) Remove(id ID) bool         { return s.stream.Remove(id) }
func (s *Scheduler[ID]) Contains(id ID) bool       { return s.stream.Contains(id) }

// Next waits until the next task is due and returns its identifier. It returns ErrExhausted
// when no task has an occurrence and ctx.Err() when the wait is cancelled; in that case the
// selection is rewound so a later call returns the same task.
func (s *Scheduler[ID]) Next(ctx context.Context) (ID, error) {
	var zero ID
	due, ok := s.stream.Next()
	if !ok {
		return zero, ErrExhausted
	}
	if due.Tied {
		return due.ID, nil
	}
	if d := due.At.Sub(s.clock.Now()); d > 0 {
		if err := s.sleeper.Sleep(ctx, d); err != nil {
			s.stream.Rewind(due.At)
			return zero, err
		}
		if now := s.clock.Now(); now.Before(due.At.Add(-time.Second)) && s.early.Allow() {
			s.log.Warn("woke before fire time",
				logx.Time("now", now),
				logx.Time("due", due.At),
			)
		}
	}
	return due.ID, nil
}

// All yields identifiers until ctx is done or the stream is exhausted.
func (s *Scheduler[ID]) All(ctx context.Context) iter.Seq[ID] {
	return func(yield func(ID) bool) {
		for {
			id, err := s.Next(ctx)
			if err != nil {
				return
			}
			if !yield(id) {
				return
			}
		}
	}
}
