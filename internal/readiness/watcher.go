package readiness

import "sync/atomic"

// Matcher reports whether a line of output matches the ready condition.
// *regexp.Regexp satisfies Matcher.
type Matcher interface {
	MatchString(s string) bool
}

// Watcher flips a one-shot ready flag on the first line accepted by its
// Matcher. It is safe for concurrent use, although the controller only
// feeds it from the stdout goroutine.
type Watcher struct {
	matcher Matcher
	ready   atomic.Bool
}

// New returns a Watcher for m. Panics if m is nil; callers validate the
// matcher when building configuration.
func New(m Matcher) *Watcher {
	if m == nil {
		panic("readyproc: readiness matcher must not be nil")
	}
	return &Watcher{matcher: m}
}

// Observe tests line against the matcher. It returns true exactly once:
// for the first matching line. Every later call returns false, including
// further matches, and lines are not even tested once the watcher is ready.
func (w *Watcher) Observe(line string) bool {
	if w.ready.Load() {
		return false
	}
	if !w.matcher.MatchString(line) {
		return false
	}
	return w.ready.CompareAndSwap(false, true)
}

// Ready reports whether a matching line has been observed.
func (w *Watcher) Ready() bool {
	return w.ready.Load()
}
