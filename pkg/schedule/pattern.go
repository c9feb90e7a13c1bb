package schedule

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Days below this value exist in every month.
const minMonthDays = 28

// Pattern is a calendar rule: an instant matches when its day-of-month, hour, minute and
// second all belong to the corresponding fields.
//
// The zero Pattern matches midnight of the first day of every month.
type Pattern struct {
	day    Field
	hour   Field
	minute Field
	second Field
}

// New combines four fields into a Pattern. Each field must carry the unit of its position.
func New(day, hour, minute, second Field) (Pattern, error) {
	for _, c := range []struct {
		f    Field
		want Unit
	}{{day, Day}, {hour, Hour}, {minute, Minute}, {second, Second}} {
		if c.f.unit != c.want {
			return Pattern{}, fmt.Errorf("%w: %s field given for %s", ErrInvalidRange, c.f.unit, c.want)
		}
	}
	return Pattern{day: day, hour: hour, minute: minute, second: second}, nil
}

func (p Pattern) Day() Field    { return p.day }
func (p Pattern) Hour() Field   { return p.hour }
func (p Pattern) Minute() Field { return p.minute }
func (p Pattern) Second() Field { return p.second }

// Matches reports whether t (sub-second part ignored) satisfies every field.
func (p Pattern) Matches(t time.Time) bool {
	c := civilOf(t)
	return p.day.Contains(uint8(c.day-1)) &&
		p.hour.Contains(uint8(c.hour)) &&
		p.minute.Contains(uint8(c.minute)) &&
		p.second.Contains(uint8(c.second))
}

// NextOccurrence returns the earliest instant >= t, truncated to the second, that matches the
// pattern. The result is in t's location. If t already matches, t truncated to the second is
// returned.
//
// Wall-clock readings that do not exist or repeat around a DST transition are resolved by
// time.Date.
func (p Pattern) NextOccurrence(t time.Time) time.Time {
	c := civilOf(t)
	p.advanceDay(&c)
	return c.in(t.Location())
}

func (p Pattern) advanceSecond(c *civil) {
	if s, ok := p.second.MinAtOrAbove(uint8(c.second)); ok {
		c.second = int(s)
		return
	}
	c.nextMinute()
	c.second = int(p.second.Min())
}

func (p Pattern) advanceMinute(c *civil) {
	p.advanceSecond(c)

	m, ok := p.minute.MinAtOrAbove(uint8(c.minute))
	switch {
	case ok && int(m) == c.minute:
	case ok:
		c.minute = int(m)
		c.second = int(p.second.Min())
	default:
		c.nextHour()
		c.minute = int(p.minute.Min())
		c.second = int(p.second.Min())
	}
}

func (p Pattern) advanceHour(c *civil) {
	p.advanceMinute(c)

	h, ok := p.hour.MinAtOrAbove(uint8(c.hour))
	switch {
	case ok && int(h) == c.hour:
	case ok:
		c.hour = int(h)
		p.resetBelowHour(c)
	default:
		c.nextDay()
		c.hour = int(p.hour.Min())
		p.resetBelowHour(c)
	}
}

func (p Pattern) advanceDay(c *civil) {
	p.advanceHour(c)

	current := uint8(c.day - 1)
	target, ok := p.day.MinAtOrAbove(current)
	if ok && target == current {
		return
	}
	if ok && fitsMonth(target, c.year, c.month) {
		c.day = int(target) + 1
		p.resetBelowDay(c)
		return
	}

	// No acceptable day left in this month: take the first later month long enough for
	// the field's smallest day. Terminates within a year since every field minimum <= 30.
	target = p.day.Min()
	for {
		c.nextMonth()
		if fitsMonth(target, c.year, c.month) {
			c.day = int(target) + 1
			p.resetBelowDay(c)
			return
		}
	}
}

func (p Pattern) resetBelowHour(c *civil) {
	c.minute = int(p.minute.Min())
	c.second = int(p.second.Min())
}

func (p Pattern) resetBelowDay(c *civil) {
	c.hour = int(p.hour.Min())
	p.resetBelowHour(c)
}

func fitsMonth(day0 uint8, year int, month time.Month) bool {
	return day0 < minMonthDays || int(day0) < daysIn(year, month)
}

// String renders the pattern as a six-field cron expression (seconds first) accepted by
// ParseCron.
func (p Pattern) String() string {
	return p.second.format(0) + " " +
		p.minute.format(0) + " " +
		p.hour.format(0) + " " +
		p.day.format(1) + " * *"
}

// CronSchedule adapts the pattern to robfig/cron, whose Next must return an instant strictly
// after its argument.
func (p Pattern) CronSchedule() cron.Schedule { return cronSchedule{p: p} }

type cronSchedule struct{ p Pattern }

func (s cronSchedule) Next(t time.Time) time.Time {
	return s.p.NextOccurrence(t.Truncate(time.Second).Add(time.Second))
}
