package core

import (
	"log/slog"
	"sync/atomic"
)

// logger is the package-level logger, stored atomically so SetLogger may
// race with running controllers. A nil value means "use the default".
// Named "logger" to avoid shadowing the stdlib "log" package.
var logger atomic.Pointer[slog.Logger]

// defaultLogger caches slog.Default() with the readyproc component
// attribute. If slog.SetDefault is called after the first Logger call the
// cache is stale until SetLogger(nil) clears it.
var defaultLogger atomic.Pointer[slog.Logger]

// Logger returns the current package-level logger. It never returns nil.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	l := newDefaultLogger()
	if defaultLogger.CompareAndSwap(nil, l) {
		return l
	}
	if l2 := defaultLogger.Load(); l2 != nil {
		return l2
	}
	return l
}

func newDefaultLogger() *slog.Logger {
	return slog.Default().With("component", "readyproc")
}

// SetLogger replaces the package-level logger. A nil l restores the
// default, re-derived from slog.Default() on the next Logger call.
// Controllers capture the logger when they are constructed.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
	defaultLogger.Store(nil)
}
