package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// Sentinel errors returned by Poll for invalid configuration.
var (
	// ErrIntervalNotPositive indicates a non-positive poll interval.
	ErrIntervalNotPositive = errors.New("interval must be positive")

	// ErrTimeoutNotPositive indicates a non-positive timeout.
	ErrTimeoutNotPositive = errors.New("timeout must be positive")
)

// Condition is evaluated by Poll until it returns true or an error.
// The attempt parameter is 1-based.
type Condition func(ctx context.Context, attempt int) (done bool, err error)

// PollConfig configures Poll.
type PollConfig struct {
	Interval time.Duration
	Timeout  time.Duration
	Name     string       // used in errors and logs
	Logger   *slog.Logger // defaults to slog.Default()
}

// Poll evaluates cond immediately and then every Interval until it reports
// done, returns an error, Timeout elapses or ctx is canceled.
func Poll(ctx context.Context, cfg PollConfig, cond Condition) error {
	if cfg.Name == "" {
		return errors.New("poll: name must not be empty")
	}
	if cfg.Interval <= 0 {
		return fmt.Errorf("poll %s: %w", cfg.Name, ErrIntervalNotPositive)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("poll %s: %w", cfg.Name, ErrTimeoutNotPositive)
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	// PollUntilContextTimeout runs the condition sequentially, so attempt
	// needs no synchronization.
	attempt := 0
	if err := wait.PollUntilContextTimeout(ctx, cfg.Interval, cfg.Timeout, true,
		func(pollCtx context.Context) (bool, error) {
			attempt++
			done, err := cond(pollCtx, attempt)
			if err != nil {
				return false, err
			}
			if done {
				log.Debug("poll succeeded", "name", cfg.Name, "attempt", attempt)
			}
			return done, nil
		}); err != nil {
		return fmt.Errorf("poll %s after %d attempts: %w", cfg.Name, attempt, err)
	}
	return nil
}
