package schedule

import (
	"testing"
	"time"
)

func TestSetNextOccurrence(t *testing.T) {
	t.Parallel()

	tt1 := mustBuild(t, EveryDay().AtHour(10).AtMinute(30).AtSecond(0))
	tt2 := mustBuild(t, EverySecond().AtDay(9))
	tt3 := mustBuild(t, EverySecond().AtMinute(5).AtSecond(0))
	tt4 := mustBuild(t, EverySecond().AtSecond(15))
	tt5 := mustBuild(t, EverySecond().AtDay(11).AtHour(10).AtMinute(15).AtSecond(0))
	tt6 := mustBuild(t, EverySecond().AtHour(12).AtSecond(40))
	tt7 := mustBuild(t, EverySecond().AtDay(31).AtSecond(0))

	tests := []struct {
		name string
		set  Set
		now  time.Time
		want time.Time
	}{
		{"single", NewSet(tt1), utc(2022, 4, 4, 18, 1, 14), utc(2022, 4, 5, 10, 30, 0)},
		{"five", NewSet(tt1, tt2, tt3, tt4, tt5), utc(2022, 4, 4, 18, 1, 14), utc(2022, 4, 4, 18, 1, 15)},
		{"four", NewSet(tt1, tt2, tt3, tt5), utc(2022, 4, 4, 18, 1, 14), utc(2022, 4, 4, 18, 5, 0)},
		{"seven", NewSet(tt1, tt2, tt3, tt4, tt5, tt6, tt7), utc(2022, 4, 4, 18, 1, 14), utc(2022, 4, 4, 18, 1, 15)},
		{"seven month end", NewSet(tt1, tt2, tt3, tt4, tt5, tt6, tt7), utc(2022, 5, 31, 18, 1, 14), utc(2022, 5, 31, 18, 1, 15)},
		{"six month end", NewSet(tt1, tt2, tt3, tt5, tt6, tt7), utc(2022, 5, 31, 18, 1, 14), utc(2022, 5, 31, 18, 2, 0)},
		{"already matching", NewSet(tt1, tt2, tt3, tt4, tt5, tt6, tt7), utc(2022, 4, 9, 18, 1, 14), utc(2022, 4, 9, 18, 1, 14)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.set.NextOccurrence(tt.now)
			if !ok {
				t.Fatalf("NextOccurrence(%s) reported no occurrence", tt.now)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("NextOccurrence(%s) = %s, want %s", tt.now, got, tt.want)
			}
		})
	}
}

func TestEmptySetNeverFires(t *testing.T) {
	t.Parallel()
	for _, s := range []Set{{}, NewSet()} {
		if got, ok := s.NextOccurrence(utc(2022, 4, 4, 18, 1, 14)); ok {
			t.Fatalf("NextOccurrence = %s, want none", got)
		}
		if s.Len() != 0 {
			t.Fatalf("Len = %d, want 0", s.Len())
		}
	}
}

func TestSetReturnsMinimumOfPatterns(t *testing.T) {
	t.Parallel()
	p1 := mustBuild(t, EveryHour().AtEveryNthMinute(17))
	p2 := mustBuild(t, EveryMinute().AtEveryNthSecondBetween(30, 59, 11))
	set := NewSet(p1, p2)

	now := utc(2024, 2, 28, 23, 50, 1)
	for i := 0; i < 200; i++ {
		got, ok := set.NextOccurrence(now)
		if !ok {
			t.Fatal("expected an occurrence")
		}
		want := p1.NextOccurrence(now)
		if n2 := p2.NextOccurrence(now); n2.Before(want) {
			want = n2
		}
		if !got.Equal(want) {
			t.Fatalf("NextOccurrence(%s) = %s, want %s", now, got, want)
		}
		now = got.Add(time.Second)
	}
}

func TestSetCopiesInput(t *testing.T) {
	t.Parallel()
	ps := []Pattern{mustBuild(t, EveryHour()), mustBuild(t, EveryDay())}
	set := NewSet(ps...)
	ps[0] = mustBuild(t, EveryMonth())
	if got := set.Patterns()[0]; got != mustBuild(t, EveryHour()) {
		t.Fatalf("Patterns()[0] = %s, want every hour", got)
	}
	if set.Len() != 2 {
		t.Fatalf("Len = %d, want 2", set.Len())
	}
}
