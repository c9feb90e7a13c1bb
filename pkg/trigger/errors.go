package trigger

import "errors"

// ErrExhausted is returned when no registered task has a next occurrence. It is not
// permanent: inserting a task makes the stream productive again.
var ErrExhausted = errors.New("no task has a next occurrence")
