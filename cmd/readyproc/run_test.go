//go:build unix

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/giantswarm/readyproc"
)

func newTestController(t *testing.T, command string) readyproc.Controller {
	t.Helper()
	ctrl, err := readyproc.New(
		readyproc.WithCommand(command),
		readyproc.WithWaitForPattern("^ready$"),
		readyproc.WithStopTimeout(2*time.Second),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = ctrl.Close() })
	return ctrl
}

func TestServe(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		command   string
		interrupt bool
		wantCode  int // 0 means serve returns nil
		wantReady bool
	}{
		"interrupted after ready": {
			command:   "echo ready; sleep 60",
			interrupt: true,
			wantReady: true,
		},
		"exits after ready": {
			command:   "echo ready; sleep 0.2; exit 0",
			wantCode:  1,
			wantReady: true,
		},
		"premature exit passes the code on": {
			command:  "exit 3",
			wantCode: 3,
		},
		"premature exit with 0 still fails": {
			command:  "exit 0",
			wantCode: 1,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctrl := newTestController(t, tc.command)

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			var out bytes.Buffer
			done := make(chan error, 1)
			var pid int
			go func() { done <- serve(ctx, ctrl, &out, 2*time.Second) }()

			if tc.interrupt {
				deadline := time.Now().Add(10 * time.Second)
				for !ctrl.IsRunning() {
					if time.Now().After(deadline) {
						t.Fatal("process never became ready")
					}
					time.Sleep(10 * time.Millisecond)
				}
				pid = ctrl.PID()
				cancel()
			}

			err := <-done
			switch {
			case tc.wantCode == 0 && err != nil:
				t.Fatalf("serve() error = %v", err)
			case tc.wantCode != 0 && exitCode(err) != tc.wantCode:
				t.Fatalf("serve() error = %v (exit %d), want exit %d", err, exitCode(err), tc.wantCode)
			}

			gotReady := strings.HasPrefix(out.String(), "ready (pid ")
			if gotReady != tc.wantReady {
				t.Errorf("output = %q, want ready line: %v", out.String(), tc.wantReady)
			}
			if pid != 0 && !strings.Contains(out.String(), fmt.Sprintf("ready (pid %d)", pid)) {
				t.Errorf("output = %q, want pid %d", out.String(), pid)
			}
			if ctrl.IsRunning() {
				t.Error("process still running after serve returned")
			}
		})
	}
}

func TestServeInterruptedBeforeReady(t *testing.T) {
	t.Parallel()
	ctrl := newTestController(t, "sleep 60")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	var out bytes.Buffer

	err := serve(ctx, ctrl, &out, 2*time.Second)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("serve() error = %v, want context.DeadlineExceeded", err)
	}
	if ctrl.PID() != 0 {
		t.Error("process left running after an interrupted start")
	}
	if out.Len() != 0 {
		t.Errorf("output = %q, want none", out.String())
	}
}
