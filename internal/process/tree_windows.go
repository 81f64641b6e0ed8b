//go:build windows

package process

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
)

// taskkillNotFound is the exit status taskkill uses when no process
// matches the PID.
const taskkillNotFound = 128

// signalTree kills pid and its descendants with taskkill /T. Windows has
// no polite equivalent of SIGTERM for console processes, so force is
// ignored and the tree is always killed.
func signalTree(pid int, _ bool) error {
	out, err := exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(pid)).CombinedOutput()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == taskkillNotFound {
		return fmt.Errorf("taskkill %d: %w", pid, ErrProcessNotFound)
	}
	return fmt.Errorf("taskkill %d: %w: %s", pid, err, strings.TrimSpace(string(out)))
}

// treeAlive always reports false: taskkill /T has already walked the tree,
// so only the exit of the handle itself is awaited.
func treeAlive(int) bool {
	return false
}

func signalName(sig syscall.Signal) string {
	return sig.String()
}
