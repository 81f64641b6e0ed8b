//go:build windows

package process

import (
	"os"
	"os/exec"
	"syscall"
)

// newShellCmd runs command through cmd.exe. CmdLine is set verbatim so
// that cmd.exe, not the Go argument quoting, interprets the command.
func newShellCmd(command string) *exec.Cmd {
	shell := os.Getenv("ComSpec")
	if shell == "" {
		shell = "cmd.exe"
	}
	cmd := exec.Command(shell)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CmdLine: shell + ` /d /s /c "` + command + `"`,
	}
	return cmd
}
