// SPDX-License-Identifier: Apache-2.0
//go:build !windows && !android

package engine

import "syscall"

const canExec = true

func execProcess(binary string, argv, envv []string) error {
	return syscall.Exec(binary, argv, envv)
}
