package schedule

import (
	"slices"
	"strings"
	"time"
)

// Set is a union of patterns: it fires whenever any of its patterns does.
//
// A single pattern is stored inline. The zero Set is empty and never fires.
type Set struct {
	one    Pattern
	single bool
	many   []Pattern
}

// NewSet builds a Set from the given patterns. The slice is copied.
func NewSet(patterns ...Pattern) Set {
	switch len(patterns) {
	case 0:
		return Set{}
	case 1:
		return Set{one: patterns[0], single: true}
	default:
		return Set{many: slices.Clone(patterns)}
	}
}

// Len returns the number of patterns in the set.
func (s Set) Len() int {
	if s.single {
		return 1
	}
	return len(s.many)
}

// Patterns returns a copy of the set's patterns.
func (s Set) Patterns() []Pattern {
	if s.single {
		return []Pattern{s.one}
	}
	return slices.Clone(s.many)
}

// NextOccurrence returns the earliest occurrence >= t across all patterns. It reports false
// for an empty set.
func (s Set) NextOccurrence(t time.Time) (time.Time, bool) {
	if s.single {
		return s.one.NextOccurrence(t), true
	}
	var (
		best  time.Time
		found bool
	)
	for _, p := range s.many {
		next := p.NextOccurrence(t)
		if !found || next.Before(best) {
			best = next
			found = true
		}
	}
	return best, found
}

func (s Set) String() string {
	if s.single {
		return s.one.String()
	}
	parts := make([]string, 0, len(s.many))
	for _, p := range s.many {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, " | ")
}
