// SPDX-License-Identifier: Apache-2.0
package instance

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	gerrors "github.com/provide-io/gamegate/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLock(t *testing.T, alive bool) *Lock {
	t.Helper()
	l := New(filepath.Join(t.TempDir(), "gamegate", "lock"), nil)
	l.alive = func(int) bool { return alive }
	return l
}

func TestAcquireAndRelease(t *testing.T) {
	l := newLock(t, false)

	require.NoError(t, l.TryAcquire())
	assert.True(t, l.Held())
	require.NoError(t, l.TryAcquire(), "re-acquiring an owned lock is a no-op")

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid())+"\n", string(data))

	l.Release()
	assert.False(t, l.Held())
	_, err = os.Stat(l.Path())
	assert.True(t, os.IsNotExist(err))
	l.Release()
}

func TestHeldByLiveProcess(t *testing.T) {
	l := newLock(t, true)
	require.NoError(t, os.MkdirAll(filepath.Dir(l.Path()), 0o700))
	require.NoError(t, os.WriteFile(l.Path(), []byte("999999\n"), 0o600))

	err := l.TryAcquire()
	assert.ErrorIs(t, err, gerrors.ErrInstanceLocked)
	assert.False(t, l.Held())
}

func TestStaleLocksAreCleared(t *testing.T) {
	for name, content := range map[string]string{
		"dead process": "999999\n",
		"garbage":      "not a pid",
		"own pid":      strconv.Itoa(os.Getpid()),
	} {
		t.Run(name, func(t *testing.T) {
			l := newLock(t, name == "own pid")
			require.NoError(t, os.MkdirAll(filepath.Dir(l.Path()), 0o700))
			require.NoError(t, os.WriteFile(l.Path(), []byte(content), 0o600))

			require.NoError(t, l.TryAcquire())
			assert.True(t, l.Held())
		})
	}
}

func TestProcessRunning(t *testing.T) {
	assert.True(t, processRunning(os.Getpid()))
	assert.False(t, processRunning(0))
}
