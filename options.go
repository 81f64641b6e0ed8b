package readyproc

import (
	"fmt"
	"time"

	"github.com/giantswarm/readyproc/internal/core"
)

// Matcher is the ready condition: each stdout line is passed to
// MatchString until it returns true. *regexp.Regexp satisfies it.
type Matcher = core.Matcher

// requirePositive panics if v <= 0 with a descriptive message.
func requirePositive[T int | time.Duration](name string, v T) {
	if v <= 0 {
		panic(fmt.Sprintf("readyproc: %s must be greater than 0, got %v", name, v))
	}
}

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("readyproc: %s must not be empty", name))
	}
}

// Option configures a Controller during construction via New.
//
// Several With* functions panic on invalid input (empty command or paths,
// non-positive durations). These panics are intentional: option values are
// typically constants, so an invalid value is a programmer error. The ready
// condition is the exception: it often comes from user input, so a missing
// or invalid one is reported by New as ErrInvalidConfiguration.
type Option func(*controllerConfig)

// WithCommand sets the shell command line to run. It is passed to
// /bin/sh -c on unix and cmd.exe /c on Windows.
//
// Default: "npm start".
//
// Panics if command is empty.
func WithCommand(command string) Option {
	requireNonEmpty("command", command)
	return func(c *controllerConfig) {
		c.Command = command
	}
}

// WithWaitFor sets the ready condition. It replaces any pattern set with
// WithWaitForPattern. A nil matcher makes New fail.
func WithWaitFor(m Matcher) Option {
	return func(c *controllerConfig) {
		c.WaitFor = m
		c.WaitForPattern = ""
	}
}

// WithWaitForPattern sets the ready condition to a regular expression in
// [regexp] syntax, compiled by New. It replaces any matcher set with
// WithWaitFor. An empty or invalid pattern makes New fail.
func WithWaitForPattern(pattern string) Option {
	return func(c *controllerConfig) {
		c.WaitFor = nil
		c.WaitForPattern = pattern
	}
}

// WithSaveLogTo writes a transcript of all output to path. A leading "~"
// is expanded to the home directory. The parent directory must exist when
// Start is called; an existing file is truncated.
//
// Panics if path is empty.
func WithSaveLogTo(path string) Option {
	requireNonEmpty("log path", path)
	return func(c *controllerConfig) {
		c.LogPath = path
	}
}

// WithReference sets a label written into the transcript header, e.g. a
// build number or test name.
func WithReference(ref string) Option {
	return func(c *controllerConfig) {
		c.Reference = ref
	}
}

// WithDir sets the working directory of the process.
//
// Default: the working directory of the caller when Start is called.
//
// Panics if dir is empty.
func WithDir(dir string) Option {
	requireNonEmpty("working directory", dir)
	return func(c *controllerConfig) {
		c.Dir = dir
	}
}

// WithStopTimeout sets how long Stop waits after SIGTERM before it kills
// the process tree.
//
// Default: 10 seconds.
//
// Panics if d <= 0.
func WithStopTimeout(d time.Duration) Option {
	requirePositive("stop timeout", d)
	return func(c *controllerConfig) {
		c.StopTimeout = d
	}
}

// WithHistoryDB records every start attempt in a SQLite database at path.
// Recording is best-effort: failures are logged and never fail Start or
// Stop. The parent directory is created if missing.
//
// Panics if path is empty.
func WithHistoryDB(path string) Option {
	requireNonEmpty("history database path", path)
	return func(c *controllerConfig) {
		c.HistoryPath = path
	}
}
