package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "runs.db"), nil)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	})
	return s
}

func TestStore_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openStore(t)

	started := time.UnixMilli(1_760_000_000_000)
	tests := map[string]struct {
		ready   bool
		outcome Outcome
		code    int
		signal  string
	}{
		"premature exit": {outcome: OutcomePrematureExit, code: 1},
		"stopped":        {ready: true, outcome: OutcomeStopped, code: -1, signal: "SIGTERM"},
		"exited":         {ready: true, outcome: OutcomeExited, code: 0},
	}

	// Subtests share one store and run sequentially.
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			id, err := s.Begin(ctx, Run{Command: "npm start", Reference: name, PID: 4242, StartedAt: started})
			if err != nil {
				t.Fatalf("Begin() error: %v", err)
			}
			if tc.ready {
				if err := s.MarkReady(ctx, id, started.Add(time.Second)); err != nil {
					t.Fatalf("MarkReady() error: %v", err)
				}
			}
			if err := s.Finish(ctx, id, tc.outcome, tc.code, tc.signal, started.Add(2*time.Second)); err != nil {
				t.Fatalf("Finish() error: %v", err)
			}

			runs, err := s.Recent(ctx, 1)
			if err != nil {
				t.Fatalf("Recent() error: %v", err)
			}
			if len(runs) != 1 {
				t.Fatalf("Recent() returned %d runs, want 1", len(runs))
			}
			got := runs[0]
			if got.ID != id || got.Reference != name || got.PID != 4242 || got.Command != "npm start" {
				t.Errorf("run = %+v", got)
			}
			if got.Outcome != tc.outcome || got.ExitCode != tc.code || got.Signal != tc.signal {
				t.Errorf("outcome/code/signal = %s/%d/%q, want %s/%d/%q",
					got.Outcome, got.ExitCode, got.Signal, tc.outcome, tc.code, tc.signal)
			}
			if !got.StartedAt.Equal(started) {
				t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
			}
			if tc.ready != !got.ReadyAt.IsZero() {
				t.Errorf("ReadyAt = %v, ready = %v", got.ReadyAt, tc.ready)
			}
			if got.EndedAt.IsZero() {
				t.Error("EndedAt not recorded")
			}
		})
	}
}

func TestStore_RecentOrderAndLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openStore(t)

	var ids []int64
	for i := range 5 {
		id, err := s.Begin(ctx, Run{Command: "cmd", PID: i + 1, StartedAt: time.Now()})
		if err != nil {
			t.Fatalf("Begin() error: %v", err)
		}
		ids = append(ids, id)
	}

	runs, err := s.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("Recent(3) returned %d runs", len(runs))
	}
	for i, r := range runs {
		if want := ids[len(ids)-1-i]; r.ID != want {
			t.Errorf("runs[%d].ID = %d, want %d", i, r.ID, want)
		}
		if r.Outcome != OutcomeRunning {
			t.Errorf("runs[%d].Outcome = %s, want running", i, r.Outcome)
		}
		if !r.EndedAt.IsZero() {
			t.Errorf("runs[%d].EndedAt = %v, want zero", i, r.EndedAt)
		}
	}
}

func TestStore_UpdateUnknownRun(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	err := s.MarkReady(context.Background(), 999, time.Now())
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("MarkReady(unknown) error = %v, want ErrRunNotFound", err)
	}
}

func TestStore_ReopenKeepsRuns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	s, err := Open(ctx, path, nil)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if _, err := s.Begin(ctx, Run{Command: "first", PID: 1, StartedAt: time.Now()}); err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	s, err = Open(ctx, path, nil)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer s.Close() //nolint:errcheck // test cleanup

	runs, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(runs) != 1 || runs[0].Command != "first" {
		t.Errorf("runs after reopen = %+v", runs)
	}
}
