package readyproc_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/giantswarm/readyproc"
)

// publicErrors lists every exported sentinel error.
var publicErrors = []struct {
	name string
	err  error
}{
	{"ErrAlreadyStarted", readyproc.ErrAlreadyStarted},
	{"ErrInvalidConfiguration", readyproc.ErrInvalidConfiguration},
	{"ErrInvalidLogPath", readyproc.ErrInvalidLogPath},
	{"ErrNothingToStop", readyproc.ErrNothingToStop},
	{"ErrPrematureExit", readyproc.ErrPrematureExit},
}

// TestPublicErrorConstants verifies that every exported error constant:
//   - implements the error interface (Error() returns a non-empty string)
//   - matches itself via errors.Is, also when wrapped via fmt.Errorf %w
//   - does not match an unrelated error
func TestPublicErrorConstants(t *testing.T) {
	t.Parallel()

	for _, tc := range publicErrors {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if msg := tc.err.Error(); msg == "" {
				t.Errorf("%s.Error() returned empty string", tc.name)
			}
			if !errors.Is(tc.err, tc.err) {
				t.Errorf("errors.Is(%s, %s) = false, want true (self-match)", tc.name, tc.name)
			}
			if wrapped := fmt.Errorf("wrapping: %w", tc.err); !errors.Is(wrapped, tc.err) {
				t.Errorf("errors.Is(wrapped %s) = false, want true", tc.name)
			}
			if errors.Is(tc.err, errors.New("some other error")) {
				t.Errorf("errors.Is(%s, errors.New(...)) = true, want false", tc.name)
			}
		})
	}
}

// TestPublicErrorConstantsAreDistinct verifies that no two exported error
// constants are equal to each other.
func TestPublicErrorConstantsAreDistinct(t *testing.T) {
	t.Parallel()

	for i, a := range publicErrors {
		for _, b := range publicErrors[i+1:] {
			if errors.Is(a.err, b.err) || errors.Is(b.err, a.err) {
				t.Errorf("%s and %s match each other: constants must be distinct", a.name, b.name)
			}
		}
	}
}

func TestPrematureExitErrorMatchesSentinel(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("start dev server: %w", &readyproc.PrematureExitError{ExitCode: 2})
	if !errors.Is(err, readyproc.ErrPrematureExit) {
		t.Error("errors.Is(err, ErrPrematureExit) = false")
	}
	var pe *readyproc.PrematureExitError
	if !errors.As(err, &pe) {
		t.Fatal("errors.As(err, *PrematureExitError) = false")
	}
	if pe.ExitCode != 2 {
		t.Errorf("ExitCode = %d, want 2", pe.ExitCode)
	}
}
