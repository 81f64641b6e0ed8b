package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/giantswarm/readyproc/internal/history"
	"github.com/giantswarm/readyproc/internal/logsink"
	"github.com/giantswarm/readyproc/internal/process"
	"github.com/giantswarm/readyproc/internal/readiness"
)

// logTitle is the banner of every transcript.
const logTitle = "readyproc process log"

// historyTimeout bounds each history write. History is best-effort and
// must never hold up Start or Stop for long.
const historyTimeout = 5 * time.Second

// closeWaitTimeout bounds how long Close waits for the exit bookkeeping of
// the last run.
const closeWaitTimeout = 15 * time.Second

// Controller drives the lifecycle of one external process: spawn, watch
// stdout for the ready pattern, record a transcript and terminate the
// process tree on Stop.
//
// Synchronization strategy:
//   - mu guards state, handle, current and last. It is held for the whole
//     of launch, so output callbacks that reach markReady before launch
//     returns block until the attempt is fully installed.
//   - historyMu guards the lazily opened history store. Ledger writes never
//     run under mu; the run ID reaches the attempt through att.recorded.
//   - Each Start creates an attempt. Goroutines belonging to an older
//     attempt compare c.current against their own attempt before touching
//     controller state, so a late exit can never reset a newer process.
//   - The attempt's result channel is settled exactly once through
//     sync.Once. The first ready line and the exit race for it. The exit is
//     observed after the output has been drained, so a ready line printed
//     before exiting wins.
type Controller struct {
	cfg Config
	log *slog.Logger

	mu      sync.Mutex
	state   State
	handle  *process.Handle
	current *attempt
	last    *attempt

	historyMu sync.Mutex
	history   *history.Store
}

// attempt is the bookkeeping of one Start.
type attempt struct {
	sink    *logsink.Sink // nil when no transcript is configured
	watcher *readiness.Watcher
	pid     int

	result chan error // buffered; receives exactly one value
	once   sync.Once
	done   chan struct{} // closed once exit bookkeeping has finished

	stopping    atomic.Bool
	writeFailed atomic.Bool

	// history and runID are set before recorded is closed.
	recorded chan struct{}
	history  *history.Store // nil when history is disabled or unavailable
	runID    int64
}

// settle delivers err as the result of Start. Only the first call has an
// effect; it reports whether this call was the one.
func (a *attempt) settle(err error) bool {
	settled := false
	a.once.Do(func() {
		a.result <- err
		settled = true
	})
	return settled
}

// NewController validates cfg and returns an idle controller.
// The returned error wraps ErrInvalidConfiguration.
func NewController(cfg Config) (*Controller, error) {
	normalized, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}
	return &Controller{
		cfg: normalized,
		log: Logger(),
	}, nil
}

// Start spawns the process and blocks until it prints a line matching the
// ready pattern (nil) or exits first (*PrematureExitError). If ctx ends
// first, Start stops waiting and returns the context error; the process
// keeps running and must still be stopped with Stop.
func (c *Controller) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("start process: %w", err)
	}
	att, err := c.launch()
	if err != nil {
		return err
	}

	select {
	case err := <-att.result:
		return err
	case <-ctx.Done():
		// Prefer a result that arrived at the same time.
		select {
		case err := <-att.result:
			return err
		default:
		}
		return fmt.Errorf("waiting for process %d to become ready: %w", att.pid, ctx.Err())
	}
}

// launch opens the transcript, spawns the process and installs the new
// attempt. Nothing is spawned if the transcript cannot be opened.
func (c *Controller) launch() (*attempt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle != nil {
		return nil, ErrAlreadyStarted
	}

	dir := c.cfg.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		dir = wd
	}

	c.state = StateStarting
	started := time.Now()
	att := &attempt{
		watcher:  readiness.New(c.cfg.WaitFor),
		result:   make(chan error, 1),
		done:     make(chan struct{}),
		recorded: make(chan struct{}),
	}

	if c.cfg.LogPath != "" {
		sink, err := logsink.Open(c.cfg.LogPath, logsink.Header{
			Title:     logTitle,
			Command:   c.cfg.Command,
			Reference: c.cfg.Reference,
			Started:   started,
		})
		if err != nil {
			c.state = StateIdle
			return nil, fmt.Errorf("%w: %w", ErrInvalidLogPath, err)
		}
		att.sink = sink
	}

	h, err := process.Spawn(process.SpawnConfig{
		Command: c.cfg.Command,
		Dir:     dir,
		Stdout:  func(line string) { c.onStdout(att, line) },
		Stderr:  func(line string) { c.onStderr(att, line) },
		Logger:  c.log,
	})
	if err != nil {
		if att.sink != nil {
			if closeErr := att.sink.Close(); closeErr != nil {
				c.log.Warn("closing process log failed", "path", att.sink.Path(), "error", closeErr)
			}
		}
		c.state = StateIdle
		return nil, fmt.Errorf("spawn process: %w", err)
	}

	att.pid = h.PID()
	c.handle = h
	c.current = att
	c.last = att
	c.state = StateRunning
	c.log.Info("process spawned", "pid", att.pid, "command", c.cfg.Command, "dir", dir)

	go c.recordRun(att, started)
	go c.watchExit(att, h)
	return att, nil
}

// recordRun adds the attempt to the run history and closes att.recorded.
// It runs outside c.mu.
func (c *Controller) recordRun(att *attempt, started time.Time) {
	defer close(att.recorded)

	store := c.historyStore()
	if store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()
	id, err := store.Begin(ctx, history.Run{
		Command:   c.cfg.Command,
		Reference: c.cfg.Reference,
		PID:       att.pid,
		StartedAt: started,
	})
	if err != nil {
		c.log.Warn("recording run failed", "pid", att.pid, "error", err)
		return
	}
	att.history = store
	att.runID = id
}

// historyStore opens the ledger on first use.
func (c *Controller) historyStore() *history.Store {
	c.historyMu.Lock()
	defer c.historyMu.Unlock()

	if c.cfg.HistoryPath == "" || c.history != nil {
		return c.history
	}
	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()
	store, err := history.Open(ctx, c.cfg.HistoryPath, c.log)
	if err != nil {
		c.log.Warn("opening run history failed; runs will not be recorded", "path", c.cfg.HistoryPath, "error", err)
		return nil
	}
	c.history = store
	return store
}

func (c *Controller) onStdout(att *attempt, line string) {
	c.log.Debug("process output", "stream", "stdout", "line", line)
	c.writeLine(att, logsink.TagStdout, line)
	if att.watcher.Observe(line) {
		c.markReady(att)
	}
}

func (c *Controller) onStderr(att *attempt, line string) {
	c.log.Debug("process output", "stream", "stderr", "line", line)
	c.writeLine(att, logsink.TagStderr, line)
}

// writeLine appends to the transcript. Only the first failure is logged.
func (c *Controller) writeLine(att *attempt, tag logsink.Tag, line string) {
	if att.sink == nil {
		return
	}
	if err := att.sink.WriteLine(tag, line); err != nil && att.writeFailed.CompareAndSwap(false, true) {
		c.log.Warn("writing process log failed", "path", att.sink.Path(), "error", err)
	}
}

func (c *Controller) markReady(att *attempt) {
	now := time.Now()

	c.mu.Lock()
	owned := c.current == att
	if owned {
		c.state = StateReady
	}
	c.mu.Unlock()

	// A Stop that raced the ready line wins; the exit settles Start.
	if !owned {
		return
	}
	if att.settle(nil) {
		c.log.Info("process ready", "pid", att.pid)
	}
	<-att.recorded
	if att.history != nil {
		ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
		defer cancel()
		if err := att.history.MarkReady(ctx, att.runID, now); err != nil {
			c.log.Warn("recording ready run failed", "pid", att.pid, "error", err)
		}
	}
}

// watchExit finishes an attempt once its process has exited. The
// transcript is complete and the state is reset before Start is settled,
// so a premature Start returns with IsRunning already false.
func (c *Controller) watchExit(att *attempt, h *process.Handle) {
	defer close(att.done)

	<-h.Exited()
	status, _ := h.ExitStatus()
	now := time.Now()

	if att.sink != nil {
		c.writeLine(att, logsink.TagExitCode, status.String())
		if err := att.sink.Close(); err != nil {
			c.log.Warn("closing process log failed", "path", att.sink.Path(), "error", err)
		}
	}

	c.mu.Lock()
	if c.current == att {
		c.handle = nil
		c.current = nil
		c.state = StateIdle
	}
	c.mu.Unlock()

	settled := att.settle(&PrematureExitError{ExitCode: status.Code, Signal: status.Signal})

	outcome := history.OutcomeExited
	switch {
	case att.stopping.Load():
		outcome = history.OutcomeStopped
		c.log.Info("process stopped", "pid", att.pid, "exit", status.String())
	case settled:
		outcome = history.OutcomePrematureExit
		c.log.Warn("process exited before becoming ready", "pid", att.pid, "exit", status.String())
	default:
		c.log.Info("process exited", "pid", att.pid, "exit", status.String())
	}

	<-att.recorded
	if att.history != nil {
		ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
		defer cancel()
		if err := att.history.Finish(ctx, att.runID, outcome, status.Code, status.Signal, now); err != nil {
			c.log.Warn("recording finished run failed", "pid", att.pid, "error", err)
		}
	}
}

// Stop terminates the process tree. It returns ErrNothingToStop if no
// process is live, including when the process exited on its own just
// before Stop reached it. On success the transcript has been closed by
// the time Stop returns, unless ctx ends first.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	h, att := c.handle, c.current
	c.handle = nil
	c.current = nil
	c.state = StateIdle
	c.mu.Unlock()

	if h == nil {
		return ErrNothingToStop
	}
	att.stopping.Store(true)
	c.log.Info("stopping process tree", "pid", att.pid, "grace", c.cfg.StopTimeout)

	if err := h.TerminateTree(ctx, c.cfg.StopTimeout); err != nil {
		if errors.Is(err, process.ErrProcessNotFound) {
			return ErrNothingToStop
		}
		c.log.Warn("stopping process tree failed", "pid", att.pid, "error", err)
		return fmt.Errorf("stop process %d: %w", att.pid, err)
	}

	select {
	case <-att.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop process %d: %w", att.pid, ctx.Err())
	}
}

// IsRunning reports whether the process is live and has become ready.
func (c *Controller) IsRunning() bool {
	return c.State() == StateReady
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// PID returns the process ID of the live process, or 0 when idle.
func (c *Controller) PID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle == nil {
		return 0
	}
	return c.handle.PID()
}

// Exited returns a channel closed when the live process exits, or nil when
// idle.
func (c *Controller) Exited() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle == nil {
		return nil
	}
	return c.handle.Exited()
}

// Close stops a process that is still live, waits for the exit bookkeeping
// of the last run and closes the run history. It is a safety net for
// callers that forgot Stop; a live process at Close time is logged as a
// warning. The controller may be started again afterwards.
func (c *Controller) Close() error {
	var errs []error

	c.mu.Lock()
	live := c.handle != nil
	last := c.last
	c.mu.Unlock()
	if live {
		c.log.Warn("controller closed with a live process; stopping it")
		if err := c.Stop(context.Background()); err != nil && !errors.Is(err, ErrNothingToStop) {
			errs = append(errs, err)
		}
	}

	if last != nil {
		timer := time.NewTimer(closeWaitTimeout)
		select {
		case <-last.done:
		case <-timer.C:
			c.log.Warn("exit bookkeeping did not finish; closing run history anyway", "pid", last.pid)
		}
		timer.Stop()
	}

	c.historyMu.Lock()
	store := c.history
	c.history = nil
	c.historyMu.Unlock()
	if store != nil {
		if err := store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close run history: %w", err))
		}
	}

	return errors.Join(errs...)
}
