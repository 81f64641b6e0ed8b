package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/giantswarm/readyproc/internal/history"
)

func TestPrintRuns(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	runs := []history.Run{
		{
			ID:        3,
			Command:   "npm start",
			PID:       300,
			StartedAt: start,
			Outcome:   history.OutcomeRunning,
		},
		{
			ID:        2,
			Command:   "exit 4",
			Reference: "ci-2",
			PID:       200,
			StartedAt: start,
			EndedAt:   start.Add(time.Second),
			Outcome:   history.OutcomePrematureExit,
			ExitCode:  4,
		},
		{
			ID:        1,
			Command:   "npm start",
			PID:       100,
			StartedAt: start,
			ReadyAt:   start.Add(1500 * time.Millisecond),
			EndedAt:   start.Add(time.Minute),
			Outcome:   history.OutcomeStopped,
			ExitCode:  -1,
			Signal:    "SIGTERM",
		},
	}

	var buf bytes.Buffer
	if err := printRuns(&buf, runs); err != nil {
		t.Fatalf("printRuns() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3:\n%s", len(lines), buf.String())
	}

	tests := map[int][]string{
		0: {"ID", "OUTCOME", "READY AFTER", "COMMAND"},
		1: {"3", "running", "npm start"},
		2: {"2", "premature_exit", " 4 ", "ci-2", "exit 4"},
		3: {"1", "stopped", "SIGTERM", "1.5s"},
	}
	for i, wants := range tests {
		for _, want := range wants {
			if !strings.Contains(lines[i], want) {
				t.Errorf("line %d %q does not contain %q", i, lines[i], want)
			}
		}
	}
}

func TestListRuns(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	store, err := history.Open(ctx, path, nil)
	if err != nil {
		t.Fatal(err)
	}
	start := time.Now()
	for _, cmd := range []string{"first", "second", "third"} {
		if _, err := store.Begin(ctx, history.Run{Command: cmd, PID: 1, StartedAt: start}); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := listRuns(ctx, &buf, path, 2); err != nil {
		t.Fatalf("listRuns() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2:\n%s", len(lines), buf.String())
	}
	if !strings.HasSuffix(lines[1], "third") || !strings.HasSuffix(lines[2], "second") {
		t.Errorf("runs not newest first:\n%s", buf.String())
	}
}

func TestListRuns_MissingLedger(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "missing.db")

	err := listRuns(context.Background(), &bytes.Buffer{}, path, 10)
	if err == nil || !strings.Contains(err.Error(), "no run history") {
		t.Fatalf("listRuns() error = %v, want no run history", err)
	}
	if _, statErr := os.Stat(path); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("listing created %s", path)
	}
}
