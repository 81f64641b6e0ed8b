package readyproc

import "context"

// Controller runs one external process at a time.
//
// Callers must follow this lifecycle ordering:
//
//	New → Start → Stop (repeatable) → Close
//
// All methods are safe for concurrent use.
type Controller interface {
	// Start spawns the process and blocks until a stdout line matches the
	// ready pattern. It returns a *PrematureExitError (matching
	// ErrPrematureExit) if the process exits first, even with code 0.
	//
	// If ctx ends before either happens, Start returns the context error
	// but the process keeps running; call Stop to end it.
	//
	// Returns ErrAlreadyStarted if a process is still live and
	// ErrInvalidLogPath if the transcript cannot be opened.
	Start(ctx context.Context) error

	// Stop terminates the process and all of its descendants. It returns
	// ErrNothingToStop if no process is live, including after a premature
	// exit and on a second Stop. When Stop returns nil the transcript is
	// complete.
	Stop(ctx context.Context) error

	// IsRunning reports whether the process is live and has become ready.
	IsRunning() bool

	// PID returns the process ID of the live process, or 0.
	PID() int

	// Exited returns a channel that is closed when the live process exits,
	// or nil if no process is live.
	Exited() <-chan struct{}

	// Close stops a process that is still live and releases the run
	// history. Safe to call more than once.
	Close() error
}
