package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyPath is returned by NormalizePath for an empty or blank path.
var ErrEmptyPath = errors.New("path must not be empty")

// ErrInvalidPathChar is returned by NormalizePath when the path contains a
// NUL byte, which no supported platform accepts in a file name.
var ErrInvalidPathChar = errors.New("path contains a NUL byte")

// NormalizePath expands a leading "~" to the current user's home directory,
// makes the path absolute relative to the working directory and cleans it.
// Only "~" and "~/..." are expanded; "~user" forms are returned as an error
// because resolving another user's home is not portable.
func NormalizePath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", ErrEmptyPath
	}
	if strings.ContainsRune(p, 0) {
		return "", ErrInvalidPathChar
	}

	if strings.HasPrefix(p, "~") {
		expanded, err := expandHome(p)
		if err != nil {
			return "", err
		}
		p = expanded
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("make %s absolute: %w", p, err)
	}
	return abs, nil
}

func expandHome(p string) (string, error) {
	rest := p[1:]
	if rest != "" && rest[0] != '/' && rest[0] != filepath.Separator {
		return "", fmt.Errorf("expand %s: only ~ and ~/ are supported", p)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", p, err)
	}
	return filepath.Join(home, rest), nil
}
