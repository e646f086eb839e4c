// SPDX-License-Identifier: Apache-2.0
package roots

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testEnv(goos string, vars map[string]string, cmdline string) Env {
	return Env{
		GOOS:   goos,
		Getenv: func(k string) string { return vars[k] },
		ReadFile: func(string) ([]byte, error) {
			if cmdline == "" {
				return nil, errors.New("no procfs")
			}
			return []byte(cmdline), nil
		},
		TempDir: func() string { return "/tmp" },
	}
}

func TestExternalRoot(t *testing.T) {
	tests := []struct {
		name string
		env  Env
		want string
	}{
		{"linux xdg", testEnv("linux", map[string]string{"XDG_DATA_HOME": "/xdg", "HOME": "/home/p"}, ""), filepath.Join("/xdg", "gamegate")},
		{"linux home", testEnv("linux", map[string]string{"HOME": "/home/p"}, ""), filepath.Join("/home/p", ".local", "share", "gamegate")},
		{"darwin", testEnv("darwin", map[string]string{"HOME": "/Users/p"}, ""), filepath.Join("/Users/p", "Library", "Application Support", "gamegate")},
		{"windows", testEnv("windows", map[string]string{"LOCALAPPDATA": "/appdata/local"}, ""), filepath.Join("/appdata/local", "gamegate")},
		{"android", testEnv("android", nil, "org.diasurgical.devilutionx\x00"), filepath.Join("/storage/emulated/0/Android/data", "org.diasurgical.devilutionx", "files")},
		{"android without procfs", testEnv("android", map[string]string{"EXTERNAL_STORAGE": "/sdcard"}, ""), filepath.Join("/sdcard", "gamegate")},
		{"nothing known", testEnv("linux", nil, ""), filepath.Join("/tmp", "gamegate")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExternalRoot(tt.env))
		})
	}
}

func TestLegacyRoot(t *testing.T) {
	assert.Equal(t, filepath.Join("/data/data", "org.diasurgical.devilutionx", "files"),
		LegacyRoot(testEnv("android", nil, "org.diasurgical.devilutionx:game\x00--flag\x00")))
	assert.Equal(t, filepath.Join("/home/p", ".local", "share", "diasurgical", "devilution"),
		LegacyRoot(testEnv("linux", map[string]string{"HOME": "/home/p"}, "")))
	assert.Equal(t, filepath.Join("/roaming", "diasurgical", "devilution"),
		LegacyRoot(testEnv("windows", map[string]string{"APPDATA": "/roaming"}, "")))
	assert.Equal(t, "", LegacyRoot(testEnv("linux", nil, "")))
}

func TestResolveOverrides(t *testing.T) {
	env := testEnv("linux", map[string]string{"HOME": "/home/p"}, "")

	r := Resolve(env, "/mnt/game", "")
	assert.Equal(t, "/mnt/game", r.External)
	assert.Equal(t, filepath.Join("/home/p", ".local", "share", "diasurgical", "devilution"), r.Legacy)

	r = Resolve(env, "", "/old")
	assert.Equal(t, "/old", r.Legacy)
}

func TestLockPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/cache", "gamegate", "lock"),
		LockPath(testEnv("linux", map[string]string{"XDG_CACHE_HOME": "/cache"}, "")))
	assert.Equal(t, filepath.Join("/tmp", "gamegate", "lock"), LockPath(testEnv("plan9", nil, "")))
}

func TestAndroidPackage(t *testing.T) {
	_, ok := AndroidPackage(testEnv("android", nil, "/system/bin/app_process\x00"))
	assert.False(t, ok)

	pkg, ok := AndroidPackage(testEnv("android", nil, "com.example.game:remote\x00"))
	assert.True(t, ok)
	assert.Equal(t, "com.example.game", pkg)
}
