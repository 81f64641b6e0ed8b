package core

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/giantswarm/readyproc/internal/fileutil"
	"github.com/giantswarm/readyproc/internal/process"
	"github.com/giantswarm/readyproc/internal/readiness"
)

// Matcher is the ready condition. *regexp.Regexp satisfies it.
type Matcher = readiness.Matcher

// Config holds the configuration for a Controller.
//
// Concurrency contract: a Controller keeps its own normalized copy, which
// is never mutated after NewController returns, so goroutines spawned by
// Start read it without synchronization.
type Config struct {
	// Command is the shell command line to run.
	Command string

	// WaitFor is the ready condition. Exactly one of WaitFor and
	// WaitForPattern must be set.
	WaitFor Matcher
	// WaitForPattern is a regular expression compiled into WaitFor.
	WaitForPattern string

	// LogPath is where the transcript is written. Empty disables it.
	LogPath string
	// Reference is an opaque label written into the transcript header.
	Reference string

	// Dir is the working directory of the process. Empty means the
	// caller's working directory at the time Start is called.
	Dir string

	// StopTimeout is the grace period between the polite termination
	// signal and the forced kill during Stop. Zero means
	// process.DefaultStopTimeout.
	StopTimeout time.Duration

	// HistoryPath is the SQLite ledger of start attempts. Empty disables it.
	HistoryPath string
}

// Normalize validates c and returns a copy with WaitForPattern compiled
// into WaitFor and every path made absolute. All violations are reported
// together, joined under ErrInvalidConfiguration.
func (c Config) Normalize() (Config, error) {
	var errs []error

	if strings.TrimSpace(c.Command) == "" {
		errs = append(errs, errors.New("command must not be empty"))
	}

	switch {
	case c.WaitFor != nil && c.WaitForPattern != "":
		errs = append(errs, errors.New("set either a wait-for matcher or a wait-for pattern, not both"))
	case c.WaitForPattern != "":
		re, err := regexp.Compile(c.WaitForPattern)
		if err != nil {
			errs = append(errs, fmt.Errorf("wait-for pattern: %w", err))
		} else {
			c.WaitFor = re
			c.WaitForPattern = ""
		}
	case isNilMatcher(c.WaitFor):
		errs = append(errs, errors.New("wait-for pattern is required"))
	}

	if c.LogPath != "" {
		p, err := fileutil.NormalizePath(c.LogPath)
		if err != nil {
			errs = append(errs, fmt.Errorf("save-log-to: %w", err))
		}
		c.LogPath = p
	}
	if c.HistoryPath != "" {
		p, err := fileutil.NormalizePath(c.HistoryPath)
		if err != nil {
			errs = append(errs, fmt.Errorf("history db: %w", err))
		}
		c.HistoryPath = p
	}

	switch {
	case c.StopTimeout == 0:
		c.StopTimeout = process.DefaultStopTimeout
	case c.StopTimeout < 0:
		errs = append(errs, fmt.Errorf("stop timeout must not be negative, got %s", c.StopTimeout))
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfiguration, errors.Join(errs...))
	}
	return c, nil
}

// isNilMatcher also catches typed nils such as (*regexp.Regexp)(nil),
// which would otherwise panic on the first line of output.
func isNilMatcher(m Matcher) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
