// SPDX-License-Identifier: Apache-2.0
//go:build !android

package main

import "errors"

func main() {
	fatal(errors.New("this shell runs on Android only; use gamegate on the desktop"))
}
