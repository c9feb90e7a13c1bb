package trigger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"tasque/pkg/clock"
	"tasque/pkg/logx"
	"tasque/pkg/schedule"
)

func at(y int, mo time.Month, d, h, mi, s int) time.Time {
	return time.Date(y, mo, d, h, mi, s, 0, time.UTC)
}

func pattern(t *testing.T, b schedule.Builder) schedule.Pattern {
	t.Helper()
	p, err := b.Build()
	if err != nil {
		t.Fatalf("build pattern: %v", err)
	}
	return p
}

func task(t *testing.T, id string, bs ...schedule.Builder) Task[string] {
	t.Helper()
	tb := NewTaskBuilder(id)
	for _, b := range bs {
		tb = tb.At(pattern(t, b))
	}
	return tb.Build()
}

func mustNext(t *testing.T, s *Stream[string]) Due[string] {
	t.Helper()
	due, ok := s.Next()
	if !ok {
		t.Fatal("Next reported no task")
	}
	return due
}

func TestStreamOrdersByFireTime(t *testing.T) {
	t.Parallel()
	fake := clock.Fake(at(2022, 4, 4, 18, 1, 14))
	s := NewStream[string](WithClock(fake)).
		With(task(t, "hourly", schedule.EveryHour())).
		With(task(t, "minutely", schedule.EveryMinute())).
		With(task(t, "at-15s", schedule.EveryMinute().AtSecond(15)))

	want := []struct {
		id string
		at time.Time
	}{
		{"at-15s", at(2022, 4, 4, 18, 1, 15)},
		{"minutely", at(2022, 4, 4, 18, 2, 0)},
		{"at-15s", at(2022, 4, 4, 18, 2, 15)},
		{"minutely", at(2022, 4, 4, 18, 3, 0)},
	}
	for i, w := range want {
		due := mustNext(t, s)
		if due.ID != w.id || !due.At.Equal(w.at) || due.Tied {
			t.Fatalf("pull %d = %+v, want %s at %s", i, due, w.id, w.at)
		}
	}
}

func TestStreamTiedTasks(t *testing.T) {
	t.Parallel()
	fake := clock.Fake(at(2022, 4, 4, 18, 1, 14))
	s := NewStream[string](WithClock(fake)).
		With(task(t, "a", schedule.EveryMinute())).
		With(task(t, "b", schedule.EveryMinute())).
		With(task(t, "c", schedule.EveryMinute()))

	first := mustNext(t, s)
	if first.ID != "a" || first.Tied || !first.At.Equal(at(2022, 4, 4, 18, 2, 0)) {
		t.Fatalf("first = %+v, want a at 18:02:00", first)
	}
	// Remaining ties are popped last-in first.
	for _, id := range []string{"c", "b"} {
		due := mustNext(t, s)
		if due.ID != id || !due.Tied || !due.At.Equal(first.At) {
			t.Fatalf("tied pull = %+v, want %s tied at %s", due, id, first.At)
		}
	}
	next := mustNext(t, s)
	if next.ID != "a" || next.Tied || !next.At.Equal(at(2022, 4, 4, 18, 3, 0)) {
		t.Fatalf("after ties = %+v, want a at 18:03:00", next)
	}
}

func TestStreamSkipsTaskWithoutOccurrences(t *testing.T) {
	t.Parallel()
	fake := clock.Fake(at(2022, 4, 4, 18, 1, 14))
	s := NewStream[string](WithClock(fake)).
		With(NewTaskBuilder("never").Build()).
		With(task(t, "minutely", schedule.EveryMinute()))

	for i := 0; i < 5; i++ {
		if due := mustNext(t, s); due.ID != "minutely" {
			t.Fatalf("pull %d = %+v, want minutely", i, due)
		}
	}

	if !s.Remove("minutely") {
		t.Fatal("Remove(minutely) = false, want true")
	}
	if due, ok := s.Next(); ok {
		t.Fatalf("Next = %+v, want none", due)
	}
	if s.Len() != 1 || !s.Contains("never") {
		t.Fatalf("IDs = %v, want [never]", s.IDs())
	}
}

func TestStreamDriftGuard(t *testing.T) {
	t.Parallel()
	fake := clock.Fake(at(2022, 4, 4, 10, 0, 0).Add(500 * time.Millisecond))
	var buf bytes.Buffer
	s := NewStream[string](WithClock(fake), WithLogger(logx.NewJSON(&buf, "debug"))).
		With(task(t, "tick", schedule.EverySecond()))

	want := at(2022, 4, 4, 10, 0, 1)
	for i := 0; i < 4; i++ {
		due := mustNext(t, s)
		if !due.At.Equal(want) {
			t.Fatalf("pull %d at %s, want %s", i, due.At, want)
		}
		want = want.Add(time.Second)
	}

	// A clock stepping backwards never repeats an instant.
	fake.Set(at(2022, 4, 4, 9, 59, 0))
	if due := mustNext(t, s); !due.At.Equal(want) {
		t.Fatalf("after step back at %s, want %s", due.At, want)
	}

	if n := strings.Count(buf.String(), "clock behind last selection"); n != 1 {
		t.Fatalf("lag messages = %d, want 1 (throttled)\n%s", n, buf.String())
	}
}

func TestStreamRewind(t *testing.T) {
	t.Parallel()
	fake := clock.Fake(at(2022, 4, 4, 18, 1, 14))
	s := NewStream[string](WithClock(fake)).
		With(task(t, "a", schedule.EveryMinute())).
		With(task(t, "b", schedule.EveryMinute()))

	first := mustNext(t, s)
	s.Rewind(first.At)

	again := mustNext(t, s)
	if again.ID != first.ID || !again.At.Equal(first.At) || again.Tied {
		t.Fatalf("after Rewind = %+v, want %+v", again, first)
	}
	tied := mustNext(t, s)
	if tied.ID != "b" || !tied.Tied {
		t.Fatalf("tied = %+v, want b tied", tied)
	}
	if next := mustNext(t, s); !next.At.Equal(first.At.Add(time.Minute)) {
		t.Fatalf("next at %s, want %s", next.At, first.At.Add(time.Minute))
	}
}

func TestStreamRegistry(t *testing.T) {
	t.Parallel()
	fake := clock.Fake(at(2022, 4, 4, 18, 1, 14))
	s := NewStream[string](WithClock(fake))

	if s.Insert(task(t, "a", schedule.EveryHour())) {
		t.Fatal("Insert(a) replaced, want new")
	}
	s.Insert(task(t, "b", schedule.EveryMinute()))
	if !s.Insert(task(t, "a", schedule.EveryMinute())) {
		t.Fatal("second Insert(a) = false, want replaced")
	}
	if got := s.IDs(); len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Fatalf("IDs() = %v, want [b a]", got)
	}

	// b and a tie; removing the buffered one drops it from the tie group.
	if due := mustNext(t, s); due.ID != "b" {
		t.Fatalf("first = %+v, want b", due)
	}
	if !s.Remove("a") {
		t.Fatal("Remove(a) = false")
	}
	if due := mustNext(t, s); due.ID != "b" || due.Tied {
		t.Fatalf("after Remove = %+v, want b untied", due)
	}
	if s.Remove("a") || s.Contains("a") {
		t.Fatal("a still registered")
	}
}

func TestStreamUsesClockLocation(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC+2", 2*60*60)
	fake := clock.Fake(time.Date(2022, 4, 4, 9, 0, 0, 0, loc))
	s := NewStream[string](WithClock(fake)).
		With(task(t, "ten", schedule.EveryDay().AtHour(10)))

	due := mustNext(t, s)
	want := time.Date(2022, 4, 4, 10, 0, 0, 0, loc)
	if !due.At.Equal(want) || due.At.Location() != loc {
		t.Fatalf("At = %s, want %s", due.At, want)
	}
}

func TestTaskBuilderCopies(t *testing.T) {
	t.Parallel()
	base := NewTaskBuilder("x").At(pattern(t, schedule.EveryHour()))
	a := base.At(pattern(t, schedule.EveryMinute())).Build()
	b := base.At(pattern(t, schedule.EveryDay())).Build()
	if a.Schedule().Len() != 2 || b.Schedule().Len() != 2 {
		t.Fatalf("lens = %d, %d, want 2, 2", a.Schedule().Len(), b.Schedule().Len())
	}
	if a.Schedule().Patterns()[1] == b.Schedule().Patterns()[1] {
		t.Fatal("builders share backing storage")
	}
	if a.ID() != "x" {
		t.Fatalf("ID() = %q, want x", a.ID())
	}
}

func TestStreamRewindAdmitsEarlierTask(t *testing.T) {
	t.Parallel()
	fake := clock.Fake(at(2022, 4, 4, 18, 1, 14))
	s := NewStream[string](WithClock(fake)).
		With(task(t, "sec-10", schedule.EveryMinute().AtSecond(10)))

	if due := mustNext(t, s); !due.At.Equal(at(2022, 4, 4, 18, 2, 10)) {
		t.Fatalf("first at %s, want 18:02:10", due.At)
	}
	pending := mustNext(t, s)
	if !pending.At.Equal(at(2022, 4, 4, 18, 3, 10)) {
		t.Fatalf("second at %s, want 18:03:10", pending.At)
	}

	// 18:03:10 is abandoned and a task due earlier arrives.
	s.Insert(task(t, "sec-40", schedule.EveryMinute().AtSecond(40)))
	s.Rewind(pending.At)

	for _, want := range []struct {
		id string
		at time.Time
	}{
		{"sec-40", at(2022, 4, 4, 18, 2, 40)},
		{"sec-10", at(2022, 4, 4, 18, 3, 10)},
	} {
		due := mustNext(t, s)
		if due.ID != want.id || !due.At.Equal(want.at) {
			t.Fatalf("pull = %+v, want %s at %s", due, want.id, want.at)
		}
	}
}

func TestStreamInvalidate(t *testing.T) {
	t.Parallel()
	fake := clock.Fake(at(2022, 4, 4, 8, 0, 0))
	s := NewStream[string](WithClock(fake)).
		With(task(t, "nine", schedule.EveryDay().AtHour(9)))

	s.Invalidate()
	first := mustNext(t, s)
	if !first.At.Equal(at(2022, 4, 4, 9, 0, 0)) {
		t.Fatalf("first at %s, want 09:00", first.At)
	}
	// Same absolute instant is never handed out twice, even after invalidation.
	s.Invalidate()
	if next := mustNext(t, s); !next.At.Equal(at(2022, 4, 5, 9, 0, 0)) {
		t.Fatalf("after Invalidate at %s, want next day 09:00", next.At)
	}
}
