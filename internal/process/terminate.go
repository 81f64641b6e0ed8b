package process

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrProcessNotFound is returned by TerminateTree when the process tree no
// longer exists, typically because it exited on its own just before.
var ErrProcessNotFound = errors.New("process not found")

// DefaultStopTimeout is the grace period TerminateTree gives the tree to
// exit after the polite signal when the caller passes a non-positive one.
const DefaultStopTimeout = 10 * time.Second

// killDrainTimeout bounds the wait for the process after the forced kill.
// A forced kill cannot be caught, so this only fires if the kernel is stuck.
const killDrainTimeout = 10 * time.Second

// groupKillTimeout bounds the wait for the rest of the process group after
// it was force-killed.
const groupKillTimeout = 2 * time.Second

// treePollInterval is the interval between liveness checks of the group.
const treePollInterval = 20 * time.Millisecond

var errExitTimeout = errors.New("timed out waiting for process exit")

// TerminateTree stops the process and all of its descendants.
//
// Flow:
//  1. Ask the whole tree to exit (SIGTERM to the process group on unix).
//  2. Wait up to grace for the process itself to exit.
//  3. Wait for the rest of the group in what is left of grace. Descendants
//     got the same signal and may still be shutting down.
//  4. Force-kill whatever is left (SIGKILL). If the process itself missed
//     the grace period, it is killed along with the group and awaited for
//     killDrainTimeout.
//
// If the tree is already gone at step 1, ErrProcessNotFound is returned.
// If ctx ends while waiting, the tree is force-killed before returning the
// context error so that nothing is left orphaned.
func (h *Handle) TerminateTree(ctx context.Context, grace time.Duration) error {
	if grace <= 0 {
		grace = DefaultStopTimeout
	}
	deadline := time.Now().Add(grace)

	if err := signalTree(h.pid, false); err != nil {
		return err
	}

	err := h.waitExit(ctx, grace)
	if err == nil {
		return h.sweep(ctx, time.Until(deadline))
	}
	if ctx.Err() != nil {
		return h.abandon(ctx)
	}

	h.log.Warn("process did not exit within grace period; killing tree", "grace", grace)
	if err := signalTree(h.pid, true); err != nil && !errors.Is(err, ErrProcessNotFound) {
		return err
	}
	// The caller's deadline was meant for the grace period.
	if err := h.waitExit(context.WithoutCancel(ctx), killDrainTimeout); err != nil {
		return fmt.Errorf("process %d still alive after kill: %w", h.pid, err)
	}
	return h.sweep(ctx, 0)
}

// waitExit waits up to d for the process to be reaped.
func (h *Handle) waitExit(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-h.exited:
		return nil
	case <-timer.C:
		return errExitTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// sweep waits up to grace for the rest of the group to exit after the
// process itself was reaped, then force-kills what is left.
func (h *Handle) sweep(ctx context.Context, grace time.Duration) error {
	if grace > 0 {
		err := Poll(ctx, PollConfig{
			Interval: treePollInterval,
			Timeout:  grace,
			Name:     fmt.Sprintf("process group %d exit", h.pid),
			Logger:   h.log,
		}, h.groupGone)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return h.abandon(ctx)
		}
	}

	if !treeAlive(h.pid) {
		return nil
	}
	h.log.Debug("killing what is left of the process group")
	if err := signalTree(h.pid, true); err != nil {
		if errors.Is(err, ErrProcessNotFound) {
			return nil
		}
		return err
	}
	if err := Poll(context.WithoutCancel(ctx), PollConfig{
		Interval: treePollInterval,
		Timeout:  groupKillTimeout,
		Name:     fmt.Sprintf("process group %d kill", h.pid),
		Logger:   h.log,
	}, h.groupGone); err != nil {
		h.log.Warn("process group still alive after kill", "error", err)
	}
	return nil
}

func (h *Handle) groupGone(context.Context, int) (bool, error) {
	return !treeAlive(h.pid), nil
}

// abandon force-kills the tree after ctx ended and returns the context
// error.
func (h *Handle) abandon(ctx context.Context) error {
	if err := signalTree(h.pid, true); err != nil && !errors.Is(err, ErrProcessNotFound) {
		h.log.Warn("force kill after cancellation failed; processes may be orphaned", "error", err)
	}
	return fmt.Errorf("terminate process tree %d: %w", h.pid, ctx.Err())
}
