package readyproc

import (
	"log/slog"

	"github.com/giantswarm/readyproc/internal/core"
)

// SetLogger replaces the package-level logger used by readyproc.
// The provided logger should already have any desired attributes;
// readyproc will not add a component attribute to it.
//
// If l is nil, the logger resets to the default: slog.Default() with a
// "component" attribute, re-derived on the next use and then cached.
//
// A Controller captures the logger in New, so SetLogger affects only
// controllers created afterwards. Call it in TestMain before m.Run.
//
// Example:
//
//	readyproc.SetLogger(myLogger.With("component", "dev-server"))
func SetLogger(l *slog.Logger) {
	core.SetLogger(l)
}
