/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

//go:build linux

package tasks

import (
	"os/exec"
	"syscall"
)

// setCredential configures cmd to drop to uid/gid immediately before the
// exec syscall, via SysProcAttr.Credential. This is evaluated by the Go
// runtime at the point of exec, which is the privilege-drop-safe
// equivalent of a pre-exec hook.
func setCredential(cmd *exec.Cmd, uid, gid uint32) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Credential = &syscall.Credential{Uid: uid, Gid: gid}
}
