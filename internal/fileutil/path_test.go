package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	tests := map[string]struct {
		in      string
		want    string
		wantErr error
	}{
		"absolute stays":     {in: "/tmp/x/../y.log", want: filepath.Clean("/tmp/y.log")},
		"relative is joined": {in: "logs/server.log", want: filepath.Join(wd, "logs", "server.log")},
		"tilde alone":        {in: "~", want: home},
		"tilde slash":        {in: "~/logs/a.log", want: filepath.Join(home, "logs", "a.log")},
		"empty":              {in: "", wantErr: ErrEmptyPath},
		"blank":              {in: "   ", wantErr: ErrEmptyPath},
		"nul byte":           {in: "a\x00b", wantErr: ErrInvalidPathChar},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := NormalizePath(tc.in)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("NormalizePath(%q) error = %v, want %v", tc.in, err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizePath(%q) unexpected error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizePath_OtherUserHomeRejected(t *testing.T) {
	t.Parallel()

	if _, err := NormalizePath("~root/x.log"); err == nil {
		t.Fatal("expected error for ~user form")
	}
}
