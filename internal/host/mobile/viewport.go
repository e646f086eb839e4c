// SPDX-License-Identifier: Apache-2.0
package mobile

import (
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Viewport is a surface.Surface whose fixed size is read back by the GL
// paint loop.
type Viewport struct {
	mu            sync.Mutex
	width, height int
	fixed         bool
}

// SetFixedSize pins the drawable area.
func (v *Viewport) SetFixedSize(width, height int) {
	v.mu.Lock()
	v.width, v.height, v.fixed = width, height, true
	v.mu.Unlock()
}

// Size returns the pinned size, or the fallback when nothing is pinned.
func (v *Viewport) Size(fallbackWidth, fallbackHeight int) (int, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.fixed {
		return fallbackWidth, fallbackHeight
	}
	return v.width, v.height
}

// Getprop reads an Android system property.
var Getprop = func(name string) (string, error) {
	out, err := exec.Command("getprop", name).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// SDKVersion returns the Android API level, 0 when it cannot be read.
func SDKVersion() int {
	v, err := Getprop("ro.build.version.sdk")
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
