package process

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestPoll_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		cfg     PollConfig
		wantErr error
		wantMsg string
	}{
		"empty name": {
			cfg:     PollConfig{Interval: time.Millisecond, Timeout: time.Second},
			wantMsg: "name must not be empty",
		},
		"zero interval": {
			cfg:     PollConfig{Name: "test", Timeout: time.Second},
			wantErr: ErrIntervalNotPositive,
		},
		"negative interval": {
			cfg:     PollConfig{Name: "test", Interval: -time.Second, Timeout: time.Second},
			wantErr: ErrIntervalNotPositive,
		},
		"zero timeout": {
			cfg:     PollConfig{Name: "test", Interval: time.Millisecond},
			wantErr: ErrTimeoutNotPositive,
		},
		"negative timeout": {
			cfg:     PollConfig{Name: "test", Interval: time.Millisecond, Timeout: -time.Second},
			wantErr: ErrTimeoutNotPositive,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := Poll(context.Background(), tc.cfg, func(context.Context, int) (bool, error) {
				t.Error("condition must not run with invalid config")
				return false, nil
			})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Errorf("error = %v, want %v", err, tc.wantErr)
			}
			if tc.wantMsg != "" && !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("error = %v, want message containing %q", err, tc.wantMsg)
			}
		})
	}
}

func TestPoll_SucceedsAfterAttempts(t *testing.T) {
	t.Parallel()

	var seen []int
	err := Poll(context.Background(), PollConfig{
		Interval: time.Millisecond,
		Timeout:  5 * time.Second,
		Name:     "test",
	}, func(_ context.Context, attempt int) (bool, error) {
		seen = append(seen, attempt)
		return attempt == 3, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 3 || seen[0] != 1 || seen[2] != 3 {
		t.Errorf("attempts = %v, want [1 2 3]", seen)
	}
}

func TestPoll_ConditionErrorAborts(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	calls := 0
	err := Poll(context.Background(), PollConfig{
		Interval: time.Millisecond,
		Timeout:  5 * time.Second,
		Name:     "test",
	}, func(context.Context, int) (bool, error) {
		calls++
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
	if calls != 1 {
		t.Errorf("condition called %d times, want 1", calls)
	}
}

func TestPoll_Timeout(t *testing.T) {
	t.Parallel()

	start := time.Now()
	err := Poll(context.Background(), PollConfig{
		Interval: 5 * time.Millisecond,
		Timeout:  50 * time.Millisecond,
		Name:     "never",
	}, func(context.Context, int) (bool, error) {
		return false, nil
	})
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "poll never") {
		t.Errorf("error %q does not name the poll", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}
}

func TestPoll_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Poll(ctx, PollConfig{
		Interval: time.Millisecond,
		Timeout:  5 * time.Second,
		Name:     "canceled",
	}, func(context.Context, int) (bool, error) {
		return false, nil
	})
	if err == nil {
		t.Fatal("expected error for canceled context, got nil")
	}
}
