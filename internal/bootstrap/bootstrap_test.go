// SPDX-License-Identifier: Apache-2.0
package bootstrap

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/gamegate/internal/config"
	"github.com/provide-io/gamegate/internal/roots"
	gerrors "github.com/provide-io/gamegate/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv(dir string) roots.Env {
	return roots.Env{
		GOOS:     "linux",
		Getenv:   func(k string) string { return map[string]string{"HOME": dir}[k] },
		ReadFile: func(string) ([]byte, error) { return nil, errors.New("no procfs") },
		TempDir:  func() string { return dir },
	}
}

func TestBuildDefaults(t *testing.T) {
	dir := t.TempDir()
	c, err := Build(config.Default(), testEnv(dir), hclog.NewNullLogger())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, ".local", "share", "gamegate"), c.Roots.External)
	assert.Equal(t, c.Roots.External, c.Store.ExternalFilesDirectory())
	assert.NotNil(t, c.Legacy)
	assert.Equal(t, filepath.Join(dir, ".cache", "gamegate", "lock"), c.Lock.Path())
	assert.Equal(t, "1", c.Fonts.Expected())
}

func TestBuildAndEvaluate(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ExternalRoot = filepath.Join(dir, "ext")
	cfg.Paths.LegacyRoot = filepath.Join(dir, "old")
	cfg.Locale.Override = "en_US"
	require.NoError(t, os.MkdirAll(cfg.Paths.LegacyRoot, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Paths.LegacyRoot, "diabdat.mpq"), []byte("x"), 0o600))

	c, err := Build(cfg, testEnv(dir), hclog.NewNullLogger())
	require.NoError(t, err)

	out := c.Gate().Evaluate()
	assert.True(t, out.Ready, "a data file left in the legacy root is migrated before the check")
	assert.Equal(t, 1, out.Migration.Moved)

	l, err := c.Launcher()
	require.NoError(t, err)
	assert.Equal(t, "devilutionx", l.Binary)

	_, err = c.Acquirer(nil)
	require.NoError(t, err)
	_, err = c.Accessibility()
	require.NoError(t, err)
}

func TestBuildSameRoots(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ExternalRoot = dir
	cfg.Paths.LegacyRoot = dir

	c, err := Build(cfg, testEnv(dir), hclog.NewNullLogger())
	require.NoError(t, err)
	assert.Nil(t, c.Legacy, "nothing to migrate when both roots are the same")
}

func TestBuildRejectsChecksum(t *testing.T) {
	cfg := config.Default()
	cfg.Migrate.Checksum = "md5"
	_, err := Build(cfg, testEnv(t.TempDir()), hclog.NewNullLogger())
	assert.ErrorIs(t, err, gerrors.ErrInvalidConfig)
}

func TestLauncherRejectsExtraArgs(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.ExtraArgs = `"open`
	c, err := Build(cfg, testEnv(t.TempDir()), hclog.NewNullLogger())
	require.NoError(t, err)
	_, err = c.Launcher()
	assert.ErrorIs(t, err, gerrors.ErrInvalidConfig)
}
