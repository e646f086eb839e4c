// SPDX-License-Identifier: Apache-2.0
package store

import (
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{Name: "test", Level: hclog.Trace})
}

func newStores(t *testing.T) (*Store, billy.Filesystem) {
	t.Helper()
	base := memfs.New()
	ext, err := base.Chroot("/external")
	require.NoError(t, err)
	legacy, err := base.Chroot("/legacy")
	require.NoError(t, err)
	require.NoError(t, legacy.MkdirAll("/", 0o700))
	return New(ext, testLogger()), legacy
}

func read(t *testing.T, fs billy.Filesystem, name string) string {
	t.Helper()
	b, err := util.ReadFile(fs, name)
	require.NoError(t, err)
	return string(b)
}

func TestGetFileDoesNotTouchDisk(t *testing.T) {
	s, _ := newStores(t)

	f := s.GetFile("diabdat.mpq")
	assert.Equal(t, "diabdat.mpq", f.Name)
	assert.Equal(t, "/external/diabdat.mpq", f.Path)
	assert.Equal(t, "/external", s.ExternalFilesDirectory())
	assert.Equal(t, "/external/fonts.mpq", s.Path("/fonts.mpq"))

	_, err := s.Filesystem().Stat("/")
	assert.Error(t, err, "root must not be created by resolving paths")
}

func TestExists(t *testing.T) {
	s, _ := newStores(t)

	ok, err := s.Exists("spawn.mpq")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, s.HasFile("spawn.mpq"))

	require.NoError(t, util.WriteFile(s.Filesystem(), "spawn.mpq", []byte("x"), 0o600))
	ok, err = s.Exists("spawn.mpq")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, s.HasFile("spawn.mpq"))
}

func TestProbeCreatesRoot(t *testing.T) {
	s, _ := newStores(t)

	require.NoError(t, s.Probe())
	info, err := s.Filesystem().Stat("/")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := s.Filesystem().ReadDir("/")
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file must be cleaned up")
}

func TestMigrateFileMoves(t *testing.T) {
	for _, algo := range []ChecksumAlgorithm{ChecksumBlake2b, ChecksumSHA256} {
		t.Run(algo.String(), func(t *testing.T) {
			s, legacy := newStores(t)
			s = New(s.Filesystem(), testLogger(), WithChecksum(algo))
			require.NoError(t, util.WriteFile(legacy, "single_0.sv", []byte("hero"), 0o600))

			out, err := s.MigrateFile(legacy, "single_0.sv")
			require.NoError(t, err)
			assert.Equal(t, OutcomeMoved, out)
			assert.Equal(t, "hero", read(t, s.Filesystem(), "single_0.sv"))

			_, err = legacy.Stat("single_0.sv")
			assert.Error(t, err, "legacy copy must be gone")

			entries, err := s.Filesystem().ReadDir("/")
			require.NoError(t, err)
			require.Len(t, entries, 1, "no temp files may remain")
		})
	}
}

func TestMigrateFileCollisionKeepsExternal(t *testing.T) {
	s, legacy := newStores(t)
	require.NoError(t, util.WriteFile(s.Filesystem(), "single_0.sv", []byte("external"), 0o600))
	require.NoError(t, util.WriteFile(legacy, "single_0.sv", []byte("legacy"), 0o600))

	out, err := s.MigrateFile(legacy, "single_0.sv")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDiscarded, out)
	assert.Equal(t, "external", read(t, s.Filesystem(), "single_0.sv"))

	_, err = legacy.Stat("single_0.sv")
	assert.Error(t, err)
}

func TestMigrateFileSkips(t *testing.T) {
	s, legacy := newStores(t)
	require.NoError(t, legacy.MkdirAll("saves", 0o700))

	out, err := s.MigrateFile(legacy, "missing.sv")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, out)

	out, err = s.MigrateFile(legacy, "saves")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, out)

	_, err = legacy.Stat("saves")
	assert.NoError(t, err, "directories are left alone")
}

func TestMigrateFileTwiceIsStable(t *testing.T) {
	s, legacy := newStores(t)
	require.NoError(t, util.WriteFile(legacy, "diablo.ini", []byte("[Audio]"), 0o600))

	out, err := s.MigrateFile(legacy, "diablo.ini")
	require.NoError(t, err)
	assert.Equal(t, OutcomeMoved, out)

	out, err = s.MigrateFile(legacy, "diablo.ini")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, out)
	assert.Equal(t, "[Audio]", read(t, s.Filesystem(), "diablo.ini"))
}

func TestChecksum(t *testing.T) {
	sum, err := ChecksumSHA256.Checksum(strings.NewReader("abc"))
	require.NoError(t, err)
	assert.Equal(t, "sha256:ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum)

	sum, err = ChecksumBlake2b.Checksum(strings.NewReader("abc"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sum, "blake2b:"))
	assert.Len(t, sum, len("blake2b:")+64)

	algo, err := ParseChecksumAlgorithm("SHA256")
	require.NoError(t, err)
	assert.Equal(t, ChecksumSHA256, algo)
	_, err = ParseChecksumAlgorithm("md5")
	assert.Error(t, err)
}
