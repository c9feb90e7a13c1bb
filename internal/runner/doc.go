// Package runner drives a trigger.Stream from a tasque config: it waits for each due task,
// announces it on the event bus, records it in the fire journal, and applies config reloads
// between waits.
package runner
