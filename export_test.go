package readyproc

import "time"

// ConfigSnapshot holds a copy of controllerConfig fields for test assertions.
// Exported only via export_test.go so that the _test package can verify
// option closures actually mutate the config without accessing internals.
type ConfigSnapshot struct {
	Command        string
	WaitFor        Matcher
	WaitForPattern string
	LogPath        string
	Reference      string
	Dir            string
	StopTimeout    time.Duration
	HistoryPath    string
}

// ApplyOptionsForTesting creates a default controllerConfig, applies the
// given options, and returns a ConfigSnapshot of the result.
func ApplyOptionsForTesting(opts ...Option) ConfigSnapshot {
	cfg := defaultControllerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return ConfigSnapshot{
		Command:        cfg.Command,
		WaitFor:        cfg.WaitFor,
		WaitForPattern: cfg.WaitForPattern,
		LogPath:        cfg.LogPath,
		Reference:      cfg.Reference,
		Dir:            cfg.Dir,
		StopTimeout:    cfg.StopTimeout,
		HistoryPath:    cfg.HistoryPath,
	}
}
