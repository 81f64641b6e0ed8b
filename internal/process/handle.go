package process

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrEmptyCommand is returned by Spawn when no command is given.
var ErrEmptyCommand = errors.New("command must not be empty")

// outputDrainTimeout bounds how long the reaper waits for the output pumps
// after the process has exited. Descendants that inherited stdout or stderr
// can hold the pipes open indefinitely.
const outputDrainTimeout = time.Second

// SpawnConfig configures Spawn.
type SpawnConfig struct {
	// Command is run through the platform shell (/bin/sh -c, cmd.exe /c).
	Command string
	// Dir is the working directory. Empty means the caller's.
	Dir string
	// Env replaces the environment when non-nil.
	Env []string

	// Stdout and Stderr receive decoded lines, each on its own goroutine.
	// Either may be nil, in which case the stream is drained and dropped.
	Stdout LineFunc
	Stderr LineFunc

	Logger *slog.Logger
}

// Handle owns one spawned process.
//
// The exit status is written once by the reaper goroutine before exited is
// closed, so reading it after <-Exited() needs no further synchronization.
type Handle struct {
	cmd     *exec.Cmd
	pid     int
	command string
	log     *slog.Logger

	exited chan struct{}
	status ExitStatus
}

// Spawn starts cfg.Command with piped stdout and stderr. On unix the shell
// is made leader of a new process group so TerminateTree can reach every
// descendant.
//
// Output is drained by two goroutines while a third waits for the process.
// Exited fires once the process has exited and the pumps have reached EOF,
// or outputDrainTimeout after the exit if a descendant still holds the
// pipes. Lines written after that are dropped.
func Spawn(cfg SpawnConfig) (*Handle, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, ErrEmptyCommand
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	cmd := newShellCmd(cfg.Command)
	cmd.Dir = cfg.Dir
	if cfg.Env != nil {
		cmd.Env = cfg.Env
	}

	// The pipes are ours rather than exec's so that cmd.Wait neither closes
	// the read ends nor waits for them.
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		closeFiles(stdoutR, stdoutW)
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	startErr := cmd.Start()
	// The child has its own copies of the write ends; ours would keep the
	// pumps from ever seeing EOF.
	closeFiles(stdoutW, stderrW)
	if startErr != nil {
		closeFiles(stdoutR, stderrR)
		return nil, fmt.Errorf("start %q: %w", cfg.Command, startErr)
	}

	h := &Handle{
		cmd:     cmd,
		pid:     cmd.Process.Pid,
		command: cfg.Command,
		log:     log.With("pid", cmd.Process.Pid),
		exited:  make(chan struct{}),
	}

	var g errgroup.Group
	g.Go(func() error { return pump(stdoutR, cfg.Stdout) })
	g.Go(func() error { return pump(stderrR, cfg.Stderr) })
	go h.reap(&g, stdoutR, stderrR)

	return h, nil
}

// reap is the only caller of cmd.Wait. It owns the read ends of the pipes.
func (h *Handle) reap(g *errgroup.Group, readers ...*os.File) {
	waitErr := h.cmd.Wait()

	pumped := make(chan error, 1)
	go func() { pumped <- g.Wait() }()

	timer := time.NewTimer(outputDrainTimeout)
	defer timer.Stop()

	select {
	case err := <-pumped:
		if err != nil {
			h.log.Warn("reading process output failed", "error", err)
		}
		closeFiles(readers...)
	case <-timer.C:
		h.log.Debug("output still open after exit; detaching from it", "timeout", outputDrainTimeout)
		// Closing the read ends unblocks the pumps. A descendant that keeps
		// writing gets EPIPE.
		closeFiles(readers...)
		timer.Reset(outputDrainTimeout)
		select {
		case <-pumped:
		case <-timer.C:
			h.log.Warn("output readers did not stop after detaching")
		}
	}

	h.status = exitStatusFromError(waitErr)
	if h.status.Err != nil {
		h.log.Warn("waiting for process failed", "error", h.status.Err)
	}
	h.log.Debug("process exited", "exit", h.status.String())
	close(h.exited)
}

func closeFiles(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

// PID returns the process ID of the shell. On unix it is also the process
// group ID.
func (h *Handle) PID() int {
	return h.pid
}

// Command returns the command line the handle was spawned with.
func (h *Handle) Command() string {
	return h.command
}

// Exited returns a channel that is closed once the process has exited and
// its output has been delivered, see Spawn for the bound on the latter.
func (h *Handle) Exited() <-chan struct{} {
	return h.exited
}

// ExitStatus returns the exit status and true once the process has exited,
// or a zero status and false while it is still running.
func (h *Handle) ExitStatus() (ExitStatus, bool) {
	select {
	case <-h.exited:
		return h.status, true
	default:
		return ExitStatus{}, false
	}
}
