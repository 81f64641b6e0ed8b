//go:build unix

package process

import (
	"errors"
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// signalTree signals every member of the process group led by pid.
func signalTree(pid int, force bool) error {
	sig := unix.SIGTERM
	if force {
		sig = unix.SIGKILL
	}
	if err := unix.Kill(-pid, sig); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return fmt.Errorf("signal process group %d: %w", pid, ErrProcessNotFound)
		}
		return fmt.Errorf("signal process group %d with %s: %w", pid, unix.SignalName(sig), err)
	}
	return nil
}

// treeAlive reports whether any member of the process group led by pid
// still runs. EPERM counts as alive: the group exists, we just may not
// signal all of it.
func treeAlive(pid int) bool {
	if err := unix.Kill(-pid, 0); errors.Is(err, unix.ESRCH) {
		return false
	}
	return groupHasLiveMember(pid)
}

func signalName(sig syscall.Signal) string {
	if name := unix.SignalName(sig); name != "" {
		return name
	}
	return sig.String()
}
