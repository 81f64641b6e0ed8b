package core

import "github.com/giantswarm/readyproc/internal/sentinel"

// ErrInvalidConfiguration is returned by NewController when the ready
// pattern is missing or invalid, or when a configured path cannot be
// normalized.
const ErrInvalidConfiguration = sentinel.Error("invalid configuration")

// ErrInvalidLogPath is returned by Start when the transcript cannot be
// opened for writing. No process has been spawned when it is returned.
const ErrInvalidLogPath = sentinel.Error("invalid log path")

// ErrPrematureExit matches, via errors.Is, the *PrematureExitError
// returned by Start when the process exits before becoming ready.
const ErrPrematureExit = sentinel.Error("process exited before becoming ready")

// ErrNothingToStop is returned by Stop when no process is live, including
// when the process exited on its own just before Stop reached it.
const ErrNothingToStop = sentinel.Error("no process to stop")

// ErrAlreadyStarted is returned by Start while a process is still live.
// Stop it (or wait for it to exit) before starting again.
const ErrAlreadyStarted = sentinel.Error("process already started")

// prematureExitMessage is the exact text callers and log scrapers match on.
const prematureExitMessage = "The process exited before indicating that it was ready for testing"

// PrematureExitError is returned by Start when the process ends before a
// line matches the ready pattern. An exit code of 0 is still a failure.
type PrematureExitError struct {
	// ExitCode is the process exit code, or -1 if a signal ended it.
	ExitCode int
	// Signal is the name of the terminating signal, empty otherwise.
	Signal string
}

func (e *PrematureExitError) Error() string {
	return prematureExitMessage
}

// Is makes errors.Is(err, ErrPrematureExit) hold.
func (e *PrematureExitError) Is(target error) bool {
	return target == ErrPrematureExit
}
