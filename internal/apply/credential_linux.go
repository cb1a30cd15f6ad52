// SPDX-License-Identifier: MPL-2.0

//go:build linux

package apply

import (
	"os/exec"
	"syscall"
)

// applyCredential makes cmd run with the given uid and gid.
func applyCredential(cmd *exec.Cmd, uid, gid uint32) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Credential: &syscall.Credential{Uid: uid, Gid: gid},
	}
}
