package trigger

import (
	"time"

	"golang.org/x/time/rate"

	"tasque/pkg/clock"
	"tasque/pkg/logx"
)

// Due is one pull result.
type Due[ID comparable] struct {
	ID ID
	// At is the fire time the task was selected for.
	At time.Time
	// Tied reports that At was already handed out by an earlier pull; there is nothing to
	// wait for.
	Tied bool
}

type entry[ID comparable] struct {
	task   Task[ID]
	next   time.Time
	has    bool // next holds an occurrence
	cached bool // next was computed since the last reset
}

// Stream yields task identifiers in non-decreasing order of fire time without blocking.
//
// Every pull uses a floor of max(now, previous selection) + 1s, truncated to the second, so
// a clock that steps back or a sleep that wakes early never reports the same instant twice.
// Tasks tied at the selected instant are handed out by subsequent pulls, each exactly once,
// before any later instant.
type Stream[ID comparable] struct {
	clock clock.Clock
	log   logx.Logger
	lag   *rate.Limiter

	tasks []entry[ID]
	ready []ID

	prev    time.Time
	hasPrev bool

	// guard in force before the most recent fresh selection
	before    time.Time
	hadBefore bool
}

// NewStream returns an empty stream driven by the UTC wall clock unless overridden.
func NewStream[ID comparable](opts ...Option) *Stream[ID] {
	cfg := buildConfig(opts)
	return newStream[ID](cfg)
}

func newStream[ID comparable](cfg config) *Stream[ID] {
	return &Stream[ID]{
		clock: cfg.clock,
		log:   cfg.log,
		lag:   rate.NewLimiter(rate.Every(time.Minute), 1),
	}
}

// With inserts task and returns the stream for chaining.
func (s *Stream[ID]) With(task Task[ID]) *Stream[ID] {
	s.Insert(task)
	return s
}

// Insert registers task, replacing any task with the same identifier. It reports whether a
// task was replaced.
func (s *Stream[ID]) Insert(task Task[ID]) bool {
	replaced := s.Remove(task.id)
	s.tasks = append(s.tasks, entry[ID]{task: task})
	return replaced
}

// Remove unregisters every task with identifier id, including tied selections not yet
// handed out. It reports whether anything was removed.
func (s *Stream[ID]) Remove(id ID) bool {
	kept := s.tasks[:0]
	for _, e := range s.tasks {
		if e.task.id != id {
			kept = append(kept, e)
		}
	}
	removed := len(kept) != len(s.tasks)
	clear(s.tasks[len(kept):])
	s.tasks = kept

	ready := s.ready[:0]
	for _, r := range s.ready {
		if r != id {
			ready = append(ready, r)
		}
	}
	s.ready = ready
	return removed
}

func (s *Stream[ID]) Contains(id ID) bool {
	for _, e := range s.tasks {
		if e.task.id == id {
			return true
		}
	}
	return false
}

func (s *Stream[ID]) Len() int { return len(s.tasks) }

// IDs returns the registered identifiers in registration order.
func (s *Stream[ID]) IDs() []ID {
	out := make([]ID, 0, len(s.tasks))
	for _, e := range s.tasks {
		out = append(out, e.task.id)
	}
	return out
}

// Rewind undoes the most recent selection, which was pulled for at but never acted on: tied
// selections are dropped, cached fire times are recomputed and the drift guard returns to
// where it stood before that pull, so the next pull may select at again or anything a newly
// inserted task has due earlier.
func (s *Stream[ID]) Rewind(at time.Time) {
	s.ready = s.ready[:0]
	s.Invalidate()
	if !s.hadBefore {
		s.hasPrev = false
		return
	}
	guard := at.Truncate(time.Second).Add(-time.Second)
	if s.before.Before(guard) {
		guard = s.before
	}
	s.prev, s.hasPrev = guard, true
}

// Invalidate drops cached fire times, e.g. after the clock's location changed.
func (s *Stream[ID]) Invalidate() {
	for i := range s.tasks {
		s.tasks[i].cached = false
	}
}

// Next pulls the next due task. It reports false when no task has an occurrence.
func (s *Stream[ID]) Next() (Due[ID], bool) {
	if n := len(s.ready); n > 0 {
		id := s.ready[n-1]
		s.ready = s.ready[:n-1]
		return Due[ID]{ID: id, At: s.prev, Tied: true}, true
	}

	floor := s.floor()

	var (
		earliest time.Time
		found    bool
	)
	for i := range s.tasks {
		e := &s.tasks[i]
		if !e.cached || (e.has && e.next.Before(floor)) {
			e.next, e.has = e.task.NextOccurrence(floor)
			e.cached = true
		}
		if e.has && (!found || e.next.Before(earliest)) {
			earliest, found = e.next, true
		}
	}
	if !found {
		return Due[ID]{}, false
	}

	s.before, s.hadBefore = s.prev, s.hasPrev
	s.prev, s.hasPrev = earliest, true

	var first ID
	picked := false
	for _, e := range s.tasks {
		if !e.has || !e.next.Equal(earliest) {
			continue
		}
		if !picked {
			first, picked = e.task.id, true
			continue
		}
		s.ready = append(s.ready, e.task.id)
	}
	return Due[ID]{ID: first, At: earliest}, true
}

func (s *Stream[ID]) floor() time.Time {
	now := s.clock.Now()
	base := now
	if s.hasPrev && s.prev.After(now) {
		base = s.prev
		if s.lag.Allow() {
			s.log.Debug("clock behind last selection; using it as the floor",
				logx.Time("now", now),
				logx.Time("selected", s.prev),
				logx.Duration("lag", s.prev.Sub(now)),
			)
		}
	}
	return base.Add(time.Second).Truncate(time.Second)
}
