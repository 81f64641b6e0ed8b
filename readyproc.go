package readyproc

import (
	"context"

	"github.com/giantswarm/readyproc/internal/core"
)

// Compile-time interface satisfaction check.
var _ Controller = (*controllerWrapper)(nil)

// controllerWrapper wraps core.Controller to implement the Controller
// interface.
//
// The core.Controller is stored as a named (unexported) field rather than
// embedded to prevent callers from using type assertions to reach internal
// methods (e.g. State) that are not part of the public interface.
type controllerWrapper struct {
	ctrl *core.Controller
}

// New creates a Controller. No process is started until Start.
//
// A ready condition is required: pass WithWaitFor or WithWaitForPattern.
// New returns an error wrapping ErrInvalidConfiguration if it is missing
// or invalid, or if a configured path cannot be normalized.
//
//nolint:ireturn // Returns Controller interface by design for testability (mockable).
func New(opts ...Option) (Controller, error) {
	cfg := defaultControllerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ctrl, err := core.NewController(cfg.toCoreConfig())
	if err != nil {
		return nil, err
	}
	return &controllerWrapper{ctrl: ctrl}, nil
}

// Start wraps core.Controller.Start.
func (w *controllerWrapper) Start(ctx context.Context) error {
	return w.ctrl.Start(ctx)
}

// Stop wraps core.Controller.Stop.
func (w *controllerWrapper) Stop(ctx context.Context) error {
	return w.ctrl.Stop(ctx)
}

// IsRunning wraps core.Controller.IsRunning.
func (w *controllerWrapper) IsRunning() bool {
	return w.ctrl.IsRunning()
}

// PID wraps core.Controller.PID.
func (w *controllerWrapper) PID() int {
	return w.ctrl.PID()
}

// Exited wraps core.Controller.Exited.
func (w *controllerWrapper) Exited() <-chan struct{} {
	return w.ctrl.Exited()
}

// Close wraps core.Controller.Close.
func (w *controllerWrapper) Close() error {
	return w.ctrl.Close()
}
