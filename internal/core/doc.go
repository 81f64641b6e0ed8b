// Package core provides the internal implementation of readyproc.
// It contains Controller, the lifecycle state machine that spawns one
// process, feeds its output to the readiness watcher and the transcript,
// settles Start exactly once and tears the process tree down on Stop.
package core
