package process

import (
	"errors"
	"os/exec"
	"strconv"
	"syscall"
)

// ExitStatus describes how a process ended. Exactly one of Code and Signal
// is meaningful: Signal is set when a signal terminated the process, and
// Code is -1 in that case.
type ExitStatus struct {
	Code   int
	Signal string

	// Err is the raw cmd.Wait error when it was not a plain exit status
	// (for example an I/O failure while waiting). Code is -1 then.
	Err error
}

// Signaled reports whether a signal terminated the process.
func (s ExitStatus) Signaled() bool {
	return s.Signal != ""
}

// String returns the signal name when one is set, otherwise the exit code.
func (s ExitStatus) String() string {
	if s.Signal != "" {
		return s.Signal
	}
	return strconv.Itoa(s.Code)
}

func exitStatusFromError(err error) ExitStatus {
	if err == nil {
		return ExitStatus{}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return ExitStatus{Code: -1, Signal: signalName(ws.Signal())}
		}
		return ExitStatus{Code: exitErr.ExitCode()}
	}
	return ExitStatus{Code: -1, Err: err}
}
