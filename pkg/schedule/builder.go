package schedule

// Builder configures a Pattern fluently. Every setter validates its input; the first error
// is kept and returned by Build, later setters become no-ops.
type Builder struct {
	p   Pattern
	err error
}

// EverySecond starts from a pattern matching every second.
func EverySecond() Builder {
	return Builder{p: Pattern{day: Every(Day), hour: Every(Hour), minute: Every(Minute), second: Every(Second)}}
}

// EveryMinute starts from a pattern matching second 0 of every minute.
func EveryMinute() Builder {
	return Builder{p: Pattern{day: Every(Day), hour: Every(Hour), minute: Every(Minute), second: exactZero(Second)}}
}

// EveryHour starts from a pattern matching minute 0, second 0 of every hour.
func EveryHour() Builder {
	return Builder{p: Pattern{day: Every(Day), hour: Every(Hour), minute: exactZero(Minute), second: exactZero(Second)}}
}

// EveryDay starts from a pattern matching midnight of every day.
func EveryDay() Builder {
	return Builder{p: Pattern{day: Every(Day), hour: exactZero(Hour), minute: exactZero(Minute), second: exactZero(Second)}}
}

// EveryMonth starts from a pattern matching midnight of the first day of every month.
func EveryMonth() Builder {
	return Builder{p: Pattern{day: exactZero(Day), hour: exactZero(Hour), minute: exactZero(Minute), second: exactZero(Second)}}
}

// Build returns the pattern or the first validation error.
func (b Builder) Build() (Pattern, error) {
	if b.err != nil {
		return Pattern{}, b.err
	}
	return b.p, nil
}

func (b Builder) with(f Field, err error) Builder {
	if b.err != nil {
		return b
	}
	if err != nil {
		b.err = err
		return b
	}
	switch f.unit {
	case Day:
		b.p.day = f
	case Hour:
		b.p.hour = f
	case Minute:
		b.p.minute = f
	case Second:
		b.p.second = f
	}
	return b
}

// AtDay matches the given 1-based day of month.
func (b Builder) AtDay(day int) Builder           { return b.with(Exact(Day, day-1)) }
func (b Builder) AtFirstDay() Builder              { return b.with(exactZero(Day), nil) }
func (b Builder) AtEveryDay() Builder              { return b.with(Every(Day), nil) }
func (b Builder) AtEveryNthDay(n int) Builder      { return b.with(EveryStep(Day, n)) }
func (b Builder) AtDaysBetween(lo, hi int) Builder { return b.with(Between(Day, lo-1, hi-1)) }

// AtEveryNthDayBetween matches lo, lo+n, ... up to hi; lo and hi are 1-based.
func (b Builder) AtEveryNthDayBetween(lo, hi, n int) Builder {
	return b.with(BetweenStep(Day, lo-1, hi-1, n))
}

func (b Builder) AtHour(h int) Builder              { return b.with(Exact(Hour, h)) }
func (b Builder) AtZeroHour() Builder               { return b.with(exactZero(Hour), nil) }
func (b Builder) AtEveryHour() Builder              { return b.with(Every(Hour), nil) }
func (b Builder) AtEveryNthHour(n int) Builder      { return b.with(EveryStep(Hour, n)) }
func (b Builder) AtHoursBetween(lo, hi int) Builder { return b.with(Between(Hour, lo, hi)) }
func (b Builder) AtEveryNthHourBetween(lo, hi, n int) Builder {
	return b.with(BetweenStep(Hour, lo, hi, n))
}

func (b Builder) AtMinute(m int) Builder              { return b.with(Exact(Minute, m)) }
func (b Builder) AtZeroMinute() Builder               { return b.with(exactZero(Minute), nil) }
func (b Builder) AtEveryMinute() Builder              { return b.with(Every(Minute), nil) }
func (b Builder) AtEveryNthMinute(n int) Builder      { return b.with(EveryStep(Minute, n)) }
func (b Builder) AtMinutesBetween(lo, hi int) Builder { return b.with(Between(Minute, lo, hi)) }
func (b Builder) AtEveryNthMinuteBetween(lo, hi, n int) Builder {
	return b.with(BetweenStep(Minute, lo, hi, n))
}

func (b Builder) AtSecond(s int) Builder              { return b.with(Exact(Second, s)) }
func (b Builder) AtZeroSecond() Builder               { return b.with(exactZero(Second), nil) }
func (b Builder) AtEverySecond() Builder              { return b.with(Every(Second), nil) }
func (b Builder) AtEveryNthSecond(n int) Builder      { return b.with(EveryStep(Second, n)) }
func (b Builder) AtSecondsBetween(lo, hi int) Builder { return b.with(Between(Second, lo, hi)) }
func (b Builder) AtEveryNthSecondBetween(lo, hi, n int) Builder {
	return b.with(BetweenStep(Second, lo, hi, n))
}
