// SPDX-License-Identifier: Apache-2.0
// Package roots resolves the external root, the legacy internal root and
// the lock file location for the running platform.
package roots

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// AppName is the directory name used under per-user data and cache dirs.
const AppName = "gamegate"

// Env is the slice of the process environment root resolution reads.
type Env struct {
	GOOS     string
	Getenv   func(string) string
	ReadFile func(string) ([]byte, error)
	TempDir  func() string
}

// OSEnv is the real environment.
func OSEnv() Env {
	return Env{
		GOOS:     runtime.GOOS,
		Getenv:   os.Getenv,
		ReadFile: os.ReadFile,
		TempDir:  os.TempDir,
	}
}

// Roots are the two storage locations the launcher works with.
type Roots struct {
	External string
	Legacy   string
}

// Resolve applies the overrides and fills the rest with platform defaults.
func Resolve(env Env, external, legacy string) Roots {
	r := Roots{External: external, Legacy: legacy}
	if r.External == "" {
		r.External = ExternalRoot(env)
	}
	if r.Legacy == "" {
		r.Legacy = LegacyRoot(env)
	}
	return r
}

// ExternalRoot returns the default external root.
func ExternalRoot(env Env) string {
	switch env.GOOS {
	case "android":
		if pkg, ok := AndroidPackage(env); ok {
			return filepath.Join("/storage/emulated/0/Android/data", pkg, "files")
		}
		if ext := env.Getenv("EXTERNAL_STORAGE"); ext != "" {
			return filepath.Join(ext, AppName)
		}
	case "darwin":
		if home := env.Getenv("HOME"); home != "" {
			return filepath.Join(home, "Library", "Application Support", AppName)
		}
	case "windows":
		if local := env.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, AppName)
		}
	default:
		if dir := xdgData(env); dir != "" {
			return filepath.Join(dir, AppName)
		}
	}
	return filepath.Join(env.TempDir(), AppName)
}

// LegacyRoot returns the location earlier releases stored saves and
// settings in, or "" when the platform has none.
func LegacyRoot(env Env) string {
	switch env.GOOS {
	case "android":
		if pkg, ok := AndroidPackage(env); ok {
			return filepath.Join("/data/data", pkg, "files")
		}
	case "darwin":
		if home := env.Getenv("HOME"); home != "" {
			return filepath.Join(home, "Library", "Application Support", "diasurgical", "devilution")
		}
	case "windows":
		if appData := env.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "diasurgical", "devilution")
		}
	default:
		if dir := xdgData(env); dir != "" {
			return filepath.Join(dir, "diasurgical", "devilution")
		}
	}
	return ""
}

// LockPath is the single-instance lock file.
func LockPath(env Env) string {
	switch env.GOOS {
	case "darwin":
		if home := env.Getenv("HOME"); home != "" {
			return filepath.Join(home, "Library", "Caches", AppName, "lock")
		}
	case "windows":
		if local := env.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, AppName, "cache", "lock")
		}
	case "android":
		if pkg, ok := AndroidPackage(env); ok {
			return filepath.Join("/data/data", pkg, "cache", "lock")
		}
	default:
		if cache := env.Getenv("XDG_CACHE_HOME"); cache != "" {
			return filepath.Join(cache, AppName, "lock")
		}
		if home := env.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".cache", AppName, "lock")
		}
	}
	return filepath.Join(env.TempDir(), AppName, "lock")
}

// AndroidPackage reads the app package name from /proc/self/cmdline. A
// ":process" suffix is dropped.
func AndroidPackage(env Env) (string, bool) {
	data, err := env.ReadFile("/proc/self/cmdline")
	if err != nil {
		return "", false
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	name := strings.TrimSpace(string(data))
	if i := strings.IndexByte(name, ':'); i >= 0 {
		name = name[:i]
	}
	if name == "" || strings.ContainsRune(name, '/') {
		return "", false
	}
	return name, true
}

func xdgData(env Env) string {
	if dir := env.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	if home := env.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".local", "share")
	}
	return ""
}
