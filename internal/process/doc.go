// Package process launches a shell command with piped output and owns it
// until it exits.
//
// Spawn starts the command in its own process group (on unix) and drains
// stdout and stderr on independent goroutines, splitting them into lines.
// Handle exposes the PID, a one-shot exit channel and the exit status, and
// TerminateTree stops the process together with every descendant it forked.
package process
