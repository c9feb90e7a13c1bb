// Package schedule describes recurring calendar patterns and computes their next occurrence.
//
// A Pattern combines four Fields (day-of-month, hour, minute, second). Each Field is a
// stepped, inclusive range of acceptable values. A Set combines several Patterns with OR
// semantics.
//
// Occurrences are resolved on wall-clock components in the location of the input time:
// seconds first, then minutes, hours and finally day-of-month. Moving a coarser unit resets
// every finer unit to its field minimum. Months too short for the requested day are skipped.
//
// Patterns can also be written as six-field cron expressions (seconds first):
//
//	set, err := schedule.ParseCron("0 */7 1-20 * * *")
package schedule
