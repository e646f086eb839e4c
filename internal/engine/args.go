// SPDX-License-Identifier: Apache-2.0
// Package engine builds the engine command line and starts the engine.
package engine

// Args returns the engine arguments for root. The same directory serves as
// data, config and save directory. --verbose is appended when verbose is set.
func Args(root string, verbose bool) []string {
	args := []string{
		"--data-dir", root,
		"--config-dir", root,
		"--save-dir", root,
	}
	if verbose {
		args = append(args, "--verbose")
	}
	return args
}

// Verbose reports whether --verbose should be passed. Release builds never
// pass it.
func Verbose(configured bool) bool {
	return DebugBuild && configured
}
