package schedule

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// maxCronPatterns bounds how many patterns a single expression may expand into.
const maxCronPatterns = 64

// robfig/cron marks "*" and "?" with the top bit of a field mask.
const cronStarBit = 1 << 63

var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseCron parses a six-field cron expression (second minute hour day-of-month month
// day-of-week) or one of the descriptors @hourly, @daily, @midnight and @monthly.
//
// Month and day-of-week must be unrestricted. Lists ("0,20,45") and ranges are decomposed
// into arithmetic progressions; the result is the union of their combinations.
func ParseCron(spec string) (Set, error) {
	spec = strings.TrimSpace(spec)
	if strings.HasPrefix(spec, "TZ=") || strings.HasPrefix(spec, "CRON_TZ=") {
		return Set{}, fmt.Errorf("%w: %q: timezone comes from the clock", ErrUnsupportedCron, spec)
	}
	parsed, err := cronParser.Parse(spec)
	if err != nil {
		return Set{}, fmt.Errorf("parse cron %q: %w", spec, err)
	}
	ss, ok := parsed.(*cron.SpecSchedule)
	if !ok {
		return Set{}, fmt.Errorf("%w: %q is not a calendar expression", ErrUnsupportedCron, spec)
	}
	if !cronFull(ss.Month, 1, 12) {
		return Set{}, fmt.Errorf("%w: %q restricts the month", ErrUnsupportedCron, spec)
	}
	if ss.Dow&cronStarBit == 0 {
		return Set{}, fmt.Errorf("%w: %q restricts the day of week", ErrUnsupportedCron, spec)
	}

	// Dom bits are 1-based in robfig/cron.
	days := cronFields(Day, ss.Dom, 1)
	hours := cronFields(Hour, ss.Hour, 0)
	minutes := cronFields(Minute, ss.Minute, 0)
	seconds := cronFields(Second, ss.Second, 0)

	n := len(days) * len(hours) * len(minutes) * len(seconds)
	if n == 0 {
		return Set{}, fmt.Errorf("%w: %q matches nothing", ErrUnsupportedCron, spec)
	}
	if n > maxCronPatterns {
		return Set{}, fmt.Errorf("%w: %q expands to %d patterns (max %d)", ErrUnsupportedCron, spec, n, maxCronPatterns)
	}

	patterns := make([]Pattern, 0, n)
	for _, d := range days {
		for _, h := range hours {
			for _, m := range minutes {
				for _, s := range seconds {
					patterns = append(patterns, Pattern{day: d, hour: h, minute: m, second: s})
				}
			}
		}
	}
	return NewSet(patterns...), nil
}

// ParseCronList parses several expressions into one Set.
func ParseCronList(specs []string) (Set, error) {
	var all []Pattern
	for _, spec := range specs {
		set, err := ParseCron(spec)
		if err != nil {
			return Set{}, err
		}
		all = append(all, set.Patterns()...)
	}
	if len(all) > maxCronPatterns {
		return Set{}, fmt.Errorf("%w: %d patterns (max %d)", ErrUnsupportedCron, len(all), maxCronPatterns)
	}
	return NewSet(all...), nil
}

func cronFull(mask uint64, lo, hi int) bool {
	for v := lo; v <= hi; v++ {
		if mask&(1<<uint(v)) == 0 {
			return false
		}
	}
	return true
}

// cronFields splits the values of a robfig/cron field mask into maximal arithmetic
// progressions, greedily from the smallest remaining value.
func cronFields(unit Unit, mask uint64, offset int) []Field {
	top := int(unit.Max())
	var values []int
	for v := 0; v <= top; v++ {
		if mask&(1<<uint(v+offset)) != 0 {
			values = append(values, v)
		}
	}

	taken := make(map[int]bool, len(values))
	var out []Field
	for i, start := range values {
		if taken[start] {
			continue
		}
		taken[start] = true

		step, end := 1, start
		for _, next := range values[i+1:] {
			if !taken[next] {
				step = next - start
				break
			}
		}
		for v := start + step; v <= top && mask&(1<<uint(v+offset)) != 0 && !taken[v]; v += step {
			taken[v] = true
			end = v
		}
		if end == start {
			step = 1
		}
		// "*/n" stays "*/n" when rendered.
		if start == 0 && end+step > top {
			end = top
		}
		out = append(out, Field{unit: unit, start: uint8(start), end: uint8(end), step: uint8(step)})
	}
	return out
}
