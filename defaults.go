package readyproc

import (
	"time"

	"github.com/giantswarm/readyproc/internal/process"
)

// Default configuration values for New.
const (
	// DefaultCommand is the shell command run when WithCommand is not given.
	DefaultCommand = "npm start"

	// DefaultStopTimeout is how long Stop waits after SIGTERM before it
	// kills the process tree with SIGKILL.
	DefaultStopTimeout time.Duration = process.DefaultStopTimeout
)
