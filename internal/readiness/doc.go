// Package readiness decides when a monitored process has announced that it
// is ready. It is purely reactive: Watcher holds no timers and only changes
// state when a line is observed.
package readiness
