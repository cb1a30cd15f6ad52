// SPDX-License-Identifier: MPL-2.0

//go:build !linux

package apply

import "os/exec"

// applyCredential is a no-op off Linux. Plans that reach a switch-user
// step only make sense on Linux systems anyway; the surrounding steps
// (apt-get, useradd) fail long before credentials matter.
func applyCredential(_ *exec.Cmd, _, _ uint32) {}
