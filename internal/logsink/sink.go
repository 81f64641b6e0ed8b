package logsink

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/giantswarm/readyproc/internal/fileutil"
	"github.com/gofrs/flock"
)

// Tag prefixes each transcript line.
type Tag string

const (
	TagStdout   Tag = "STDOUT"
	TagStderr   Tag = "STDERR"
	TagExitCode Tag = "EXIT CODE"
)

// ErrLogInUse is returned by Open when another process holds the lock on
// the transcript path.
var ErrLogInUse = errors.New("log file is in use by another process")

// ErrClosed is returned by WriteLine after Close.
var ErrClosed = errors.New("log sink is closed")

// lockSuffix names the sibling lock file. The lock file is left on disk
// after Close: removing it would race with another process that has just
// locked it.
const lockSuffix = ".lock"

// Header is written once, right after the transcript is opened.
type Header struct {
	Title     string
	Command   string
	Reference string    // omitted from the header when empty
	Started   time.Time // zero means time.Now()
}

// Sink is an open transcript. WriteLine and Close are safe for concurrent
// use; stdout and stderr goroutines share one Sink.
type Sink struct {
	mu   sync.Mutex
	f    *os.File
	lock *flock.Flock
	path string
}

// Open locks path, truncates or creates it and writes hdr. The parent
// directory must already exist. On any error nothing is left open.
func Open(path string, hdr Header) (*Sink, error) {
	if err := fileutil.RequireParentDir(path); err != nil {
		return nil, err
	}

	fl := flock.New(path + lockSuffix)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("lock %s: %w", path, ErrLogInUse)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		_ = fl.Close()
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}

	s := &Sink{f: f, lock: fl, path: path}
	if _, err := f.WriteString(formatHeader(hdr)); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("write log header %s: %w", path, err)
	}
	return s, nil
}

// Path returns the transcript path.
func (s *Sink) Path() string {
	return s.path
}

// WriteLine appends "<tag>: <text>\n". Lines reach the file in call order.
func (s *Sink) WriteLine(tag Tag, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return ErrClosed
	}
	if _, err := s.f.WriteString(string(tag) + ": " + text + "\n"); err != nil {
		return fmt.Errorf("write log %s: %w", s.path, err)
	}
	return nil
}

// Close closes the transcript and releases the lock. It is idempotent.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	// Close on a flock also unlocks it.
	if lockErr := s.lock.Close(); lockErr != nil && err == nil {
		err = lockErr
	}
	if err != nil {
		return fmt.Errorf("close log %s: %w", s.path, err)
	}
	return nil
}

func formatHeader(hdr Header) string {
	started := hdr.Started
	if started.IsZero() {
		started = time.Now()
	}
	title := hdr.Title
	if title == "" {
		title = "process log"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "===== %s (%s) =====\n", title, started.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Command: %s\n", hdr.Command)
	if hdr.Reference != "" {
		fmt.Fprintf(&b, "Reference: %s\n", hdr.Reference)
	}
	b.WriteString("\n")
	return b.String()
}
