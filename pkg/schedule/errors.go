package schedule

import "errors"

var (
	// ErrInvalidRange is returned when a field is built with start > end, a value outside the
	// unit's domain, or a zero step.
	ErrInvalidRange = errors.New("invalid field range")

	// ErrUnsupportedCron is returned for cron expressions that cannot be expressed as
	// day/hour/minute/second patterns.
	ErrUnsupportedCron = errors.New("unsupported cron expression")
)
