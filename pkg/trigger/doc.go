// Package trigger keeps a registry of tasks, each with a schedule.Set, and yields their
// identifiers in the order their next occurrences fall due.
//
// Stream is the non-blocking core: every pull reports the identifier together with its fire
// time and leaves waiting to the caller. Scheduler wraps a Stream and sleeps until the fire
// time itself:
//
//	s := trigger.NewUTC[string]().
//		With(trigger.NewTaskBuilder("report").At(daily).Build())
//	for id := range s.All(ctx) {
//		run(id)
//	}
//
// Neither type is safe for concurrent use; one goroutine owns a stream.
package trigger
