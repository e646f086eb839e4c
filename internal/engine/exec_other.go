// SPDX-License-Identifier: Apache-2.0
//go:build windows || android

package engine

import "errors"

const canExec = false

func execProcess(string, []string, []string) error {
	return errors.New("exec is not supported on this platform")
}
