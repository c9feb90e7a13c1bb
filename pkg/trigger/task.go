package trigger

import (
	"time"

	"tasque/pkg/schedule"
)

// Task pairs an identifier with the schedule it fires on. Tasks are immutable.
type Task[ID comparable] struct {
	id  ID
	set schedule.Set
}

func NewTask[ID comparable](id ID, set schedule.Set) Task[ID] {
	return Task[ID]{id: id, set: set}
}

func (t Task[ID]) ID() ID { return t.id }

func (t Task[ID]) Schedule() schedule.Set { return t.set }

// NextOccurrence returns the first instant at or after floor the task fires at.
func (t Task[ID]) NextOccurrence(floor time.Time) (time.Time, bool) {
	return t.set.NextOccurrence(floor)
}

// TaskBuilder collects patterns for one task.
type TaskBuilder[ID comparable] struct {
	id       ID
	patterns []schedule.Pattern
}

func NewTaskBuilder[ID comparable](id ID) TaskBuilder[ID] {
	return TaskBuilder[ID]{id: id}
}

// At adds one pattern.
func (b TaskBuilder[ID]) At(p schedule.Pattern) TaskBuilder[ID] {
	return b.AtSeveral(p)
}

// AtSeveral adds patterns; the task fires whenever any of them matches.
func (b TaskBuilder[ID]) AtSeveral(ps ...schedule.Pattern) TaskBuilder[ID] {
	next := make([]schedule.Pattern, 0, len(b.patterns)+len(ps))
	next = append(next, b.patterns...)
	b.patterns = append(next, ps...)
	return b
}

// Build returns the task. A builder with no patterns yields a task that never fires.
func (b TaskBuilder[ID]) Build() Task[ID] {
	return NewTask(b.id, schedule.NewSet(b.patterns...))
}
