// SPDX-License-Identifier: Apache-2.0
//go:build !windows

package instance

import (
	"errors"

	"golang.org/x/sys/unix"
)

func processRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}
