package readyproc

import "github.com/giantswarm/readyproc/internal/core"

// controllerConfig holds configuration for a Controller. This unexported
// type wraps core.Config via embedding, keeping internal/core types out of
// the public API signature while avoiding field-by-field duplication.
type controllerConfig struct {
	core.Config
}

func defaultControllerConfig() controllerConfig {
	return controllerConfig{
		Config: core.Config{
			Command:     DefaultCommand,
			StopTimeout: DefaultStopTimeout,
		},
	}
}

// toCoreConfig returns the embedded core.Config.
func (c controllerConfig) toCoreConfig() core.Config {
	return c.Config
}
