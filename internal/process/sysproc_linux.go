//go:build linux

package process

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr makes the shell the leader of a new process group so
// the whole tree can be signaled through its PID. Pdeathsig makes the
// kernel send SIGTERM to the shell if the test binary dies abruptly.
func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGTERM,
	}
}
