package schedule

import (
	"errors"
	"testing"
)

func mustField(t *testing.T) func(Field, error) Field {
	return func(f Field, err error) Field {
		t.Helper()
		if err != nil {
			t.Fatalf("field: %v", err)
		}
		return f
	}
}

func TestFieldMinAtOrAbove(t *testing.T) {
	t.Parallel()

	every := Every(Minute)
	every5 := mustField(t)(EveryStep(Minute, 5))
	between := mustField(t)(Between(Minute, 5, 9))
	between2 := mustField(t)(BetweenStep(Minute, 5, 9, 2))
	from30by7 := mustField(t)(BetweenStep(Minute, 30, 59, 7))

	tests := []struct {
		name  string
		f     Field
		lb    uint8
		want  uint8
		found bool
	}{
		{"every/0", every, 0, 0, true},
		{"every/1", every, 1, 1, true},
		{"every/59", every, 59, 59, true},
		{"every/60", every, 60, 0, false},

		{"step5/0", every5, 0, 0, true},
		{"step5/1", every5, 1, 5, true},
		{"step5/5", every5, 5, 5, true},
		{"step5/6", every5, 6, 10, true},
		{"step5/11", every5, 11, 15, true},
		{"step5/55", every5, 55, 55, true},
		{"step5/56", every5, 56, 0, false},

		{"between/0", between, 0, 5, true},
		{"between/6", between, 6, 6, true},
		{"between/9", between, 9, 9, true},
		{"between/10", between, 10, 0, false},

		{"between2/1", between2, 1, 5, true},
		{"between2/6", between2, 6, 7, true},
		{"between2/8", between2, 8, 9, true},
		{"between2/10", between2, 10, 0, false},

		{"by7/1", from30by7, 1, 30, true},
		{"by7/31", from30by7, 31, 37, true},
		{"by7/38", from30by7, 38, 44, true},
		{"by7/45", from30by7, 45, 51, true},
		{"by7/58", from30by7, 58, 58, true},
		{"by7/59", from30by7, 59, 0, false},
		{"by7/255", from30by7, 255, 0, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.f.MinAtOrAbove(tt.lb)
			if ok != tt.found || got != tt.want {
				t.Fatalf("MinAtOrAbove(%d) = (%d, %v), want (%d, %v)", tt.lb, got, ok, tt.want, tt.found)
			}
		})
	}
}

func TestFieldExactBounds(t *testing.T) {
	t.Parallel()
	f := mustField(t)(Exact(Minute, 18))
	for lb := 0; lb <= 255; lb++ {
		got, ok := f.MinAtOrAbove(uint8(lb))
		if lb <= 18 {
			if !ok || got != 18 {
				t.Fatalf("MinAtOrAbove(%d) = (%d, %v), want (18, true)", lb, got, ok)
			}
			continue
		}
		if ok {
			t.Fatalf("MinAtOrAbove(%d) = (%d, true), want miss", lb, got)
		}
	}
}

func TestFieldLargeStepDoesNotWrap(t *testing.T) {
	t.Parallel()
	f := mustField(t)(BetweenStep(Second, 58, 59, 255))
	if got, ok := f.MinAtOrAbove(59); ok {
		t.Fatalf("MinAtOrAbove(59) = %d, want miss", got)
	}
	if got, ok := f.MinAtOrAbove(58); !ok || got != 58 {
		t.Fatalf("MinAtOrAbove(58) = (%d, %v), want (58, true)", got, ok)
	}
}

func TestFieldRejectsInvalidRanges(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		fn   func() (Field, error)
	}{
		{"start after end", func() (Field, error) { return Between(Minute, 10, 5) }},
		{"hour past domain", func() (Field, error) { return Exact(Hour, 24) }},
		{"day past domain", func() (Field, error) { return Exact(Day, 31) }},
		{"second past domain", func() (Field, error) { return Between(Second, 0, 60) }},
		{"zero step", func() (Field, error) { return EveryStep(Second, 0) }},
		{"negative start", func() (Field, error) { return NewField(Minute, -1, 5, 1) }},
		{"huge step", func() (Field, error) { return BetweenStep(Minute, 0, 59, 256) }},
		{"unknown unit", func() (Field, error) { return NewField(Unit(9), 0, 1, 1) }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			if !errors.Is(err, ErrInvalidRange) {
				t.Fatalf("err = %v, want ErrInvalidRange", err)
			}
		})
	}
}

func TestFieldContainsAndString(t *testing.T) {
	t.Parallel()
	f := mustField(t)(BetweenStep(Hour, 1, 20, 7))
	for _, v := range []uint8{1, 8, 15} {
		if !f.Contains(v) {
			t.Fatalf("Contains(%d) = false, want true", v)
		}
	}
	for _, v := range []uint8{0, 2, 20, 22} {
		if f.Contains(v) {
			t.Fatalf("Contains(%d) = true, want false", v)
		}
	}

	tests := []struct {
		f    Field
		want string
	}{
		{Every(Second), "*"},
		{mustField(t)(EveryStep(Second, 7)), "*/7"},
		{mustField(t)(Exact(Minute, 5)), "5"},
		{mustField(t)(Between(Minute, 5, 9)), "5-9"},
		{f, "1-15/7"},
		{mustField(t)(BetweenStep(Hour, 0, 20, 7)), "0-14/7"},
		{mustField(t)(BetweenStep(Hour, 0, 23, 7)), "*/7"},
		{mustField(t)(Exact(Day, 28)), "29"},
		{Every(Day), "*"},
	}
	for _, tt := range tests {
		if got := tt.f.String(); got != tt.want {
			t.Fatalf("String() = %q, want %q", got, tt.want)
		}
	}
}
