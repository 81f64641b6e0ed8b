// Package fileutil normalizes user-supplied file paths and prepares their
// parent directories. readyproc runs it over the transcript path and the
// history database path at construction time, so a bad path fails before
// any process is spawned.
package fileutil
