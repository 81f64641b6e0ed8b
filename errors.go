package readyproc

import "github.com/giantswarm/readyproc/internal/core"

// Sentinel errors for error inspection with errors.Is.
// These are immutable constants safe for use in wrapped error chain comparison.
const (
	// ErrInvalidConfiguration is returned by New when no valid ready pattern
	// is configured, or a configured path cannot be normalized.
	ErrInvalidConfiguration = core.ErrInvalidConfiguration

	// ErrInvalidLogPath is returned by Start when the transcript cannot be
	// opened. No process is spawned in that case.
	ErrInvalidLogPath = core.ErrInvalidLogPath

	// ErrPrematureExit is returned by Start when the process exits before
	// printing a ready line. Use errors.As with *PrematureExitError to get
	// the exit code.
	ErrPrematureExit = core.ErrPrematureExit

	// ErrNothingToStop is returned by Stop when no process is live.
	ErrNothingToStop = core.ErrNothingToStop

	// ErrAlreadyStarted is returned by Start while a process is still live.
	ErrAlreadyStarted = core.ErrAlreadyStarted
)

// PrematureExitError carries the exit code (or terminating signal) of a
// process that ended before it became ready.
type PrematureExitError = core.PrematureExitError
