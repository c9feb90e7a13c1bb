package schedule

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unit identifies the calendar unit a Field constrains.
type Unit uint8

const (
	Day Unit = iota // 0-based day of month
	Hour
	Minute
	Second
)

// Max returns the largest value a field of this unit may hold.
func (u Unit) Max() uint8 {
	switch u {
	case Day:
		return 30
	case Hour:
		return 23
	default:
		return 59
	}
}

func (u Unit) String() string {
	switch u {
	case Day:
		return "day"
	case Hour:
		return "hour"
	case Minute:
		return "minute"
	case Second:
		return "second"
	default:
		return "unit(" + strconv.Itoa(int(u)) + ")"
	}
}

// Field is the set {start, start+step, start+2*step, ...} ∩ [start, end] for one unit.
//
// The zero Field matches only 0.
type Field struct {
	unit  Unit
	start uint8
	end   uint8
	step  uint8
}

// NewField validates start <= end <= unit.Max() and step >= 1.
//
// Fields are stored in canonical form: end is lowered to the last value actually reached
// from start, a progression from 0 that cannot fit another step spans the whole domain, and
// a single value has step 1. Two fields with the same value set compare equal.
func NewField(unit Unit, start, end, step int) (Field, error) {
	if unit > Second {
		return Field{}, fmt.Errorf("%w: %s", ErrInvalidRange, unit)
	}
	top := int(unit.Max())
	if start < 0 || start > end || end > top || step < 1 || step > math.MaxUint8 {
		return Field{}, fmt.Errorf("%w: %s %d-%d/%d", ErrInvalidRange, unit, start, end, step)
	}
	end = start + (end-start)/step*step
	if end == start {
		step = 1
	}
	if start == 0 && end+step > top {
		end = top
	}
	return Field{unit: unit, start: uint8(start), end: uint8(end), step: uint8(step)}, nil
}

// Exact matches only v.
func Exact(unit Unit, v int) (Field, error) { return NewField(unit, v, v, 1) }

// Between matches every value in [lo, hi].
func Between(unit Unit, lo, hi int) (Field, error) { return NewField(unit, lo, hi, 1) }

// BetweenStep matches lo, lo+step, ... up to hi.
func BetweenStep(unit Unit, lo, hi, step int) (Field, error) {
	return NewField(unit, lo, hi, step)
}

// Every matches the whole domain of unit.
func Every(unit Unit) Field {
	return Field{unit: unit, start: 0, end: unit.Max(), step: 1}
}

// EveryStep matches 0, step, 2*step, ... across the whole domain of unit.
func EveryStep(unit Unit, step int) (Field, error) {
	return NewField(unit, 0, int(unit.Max()), step)
}

func exactZero(unit Unit) Field { return Field{unit: unit, step: 1} }

func (f Field) Unit() Unit { return f.unit }

// Min returns the smallest value the field can take.
func (f Field) Min() uint8 { return f.start }

func (f Field) stepOrOne() uint8 {
	if f.step == 0 {
		return 1
	}
	return f.step
}

// MinAtOrAbove returns the smallest value of the field that is >= lb. It reports false when
// no such value exists within [start, end].
func (f Field) MinAtOrAbove(lb uint8) (uint8, bool) {
	if lb <= f.start {
		return f.start, true
	}
	step := f.stepOrOne()
	offset := lb - f.start
	steps := offset / step
	if offset%step != 0 {
		steps++
	}
	// 255*255 fits in uint16; anything past the 8-bit domain is a miss, not a wrap.
	delta := uint16(steps) * uint16(step)
	if delta > uint16(math.MaxUint8-f.start) {
		return 0, false
	}
	v := f.start + uint8(delta)
	if v > f.end {
		return 0, false
	}
	return v, true
}

// Contains reports whether v is one of the field's values.
func (f Field) Contains(v uint8) bool {
	if v < f.start || v > f.end {
		return false
	}
	return (v-f.start)%f.stepOrOne() == 0
}

// String renders the field in cron notation. Day values are shown 1-based.
func (f Field) String() string {
	var base uint8
	if f.unit == Day {
		base = 1
	}
	return f.format(base)
}

func (f Field) format(base uint8) string {
	var b strings.Builder
	switch {
	case f.start == f.end:
		b.WriteString(strconv.Itoa(int(f.start + base)))
		return b.String()
	case f.start == 0 && f.end == f.unit.Max():
		b.WriteByte('*')
	default:
		b.WriteString(strconv.Itoa(int(f.start + base)))
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(int(f.end + base)))
	}
	if step := f.stepOrOne(); step != 1 {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(int(step)))
	}
	return b.String()
}
