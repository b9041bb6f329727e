/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

//go:build !linux

package tasks

import "os/exec"

// setCredential is a no-op outside Linux: running a script as another
// local user is a Linux-only feature per the spec's scope.
func setCredential(cmd *exec.Cmd, uid, gid uint32) {}
