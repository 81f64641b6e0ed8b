//go:build unix

package process

import "os/exec"

func newShellCmd(command string) *exec.Cmd {
	cmd := exec.Command("/bin/sh", "-c", command)
	configureSysProcAttr(cmd)
	return cmd
}
