package schedule

import "time"

// civil is a wall-clock reading with whole-second precision. Carries between units follow
// the Gregorian calendar; the location only matters when converting back to a time.Time.
type civil struct {
	year   int
	month  time.Month
	day    int // 1-based
	hour   int
	minute int
	second int
}

func civilOf(t time.Time) civil {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return civil{year: y, month: mo, day: d, hour: h, minute: mi, second: s}
}

func (c civil) in(loc *time.Location) time.Time {
	return time.Date(c.year, c.month, c.day, c.hour, c.minute, c.second, 0, loc)
}

// daysIn returns the number of days in the given month, leap years included.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (c *civil) nextMonth() {
	if c.month == time.December {
		c.year++
		c.month = time.January
		return
	}
	c.month++
}

func (c *civil) nextDay() {
	c.day++
	if c.day > daysIn(c.year, c.month) {
		c.day = 1
		c.nextMonth()
	}
}

func (c *civil) nextHour() {
	c.hour++
	if c.hour > 23 {
		c.hour = 0
		c.nextDay()
	}
}

func (c *civil) nextMinute() {
	c.minute++
	if c.minute > 59 {
		c.minute = 0
		c.nextHour()
	}
}
