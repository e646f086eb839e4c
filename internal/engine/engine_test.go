// SPDX-License-Identifier: Apache-2.0
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"testing"

	gerrors "github.com/provide-io/gamegate/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs(t *testing.T) {
	assert.Equal(t,
		[]string{"--data-dir", "/ext", "--config-dir", "/ext", "--save-dir", "/ext"},
		Args("/ext", false))
	assert.Equal(t,
		[]string{"--data-dir", "/ext", "--config-dir", "/ext", "--save-dir", "/ext", "--verbose"},
		Args("/ext", true))
}

func TestVerboseFollowsBuild(t *testing.T) {
	assert.Equal(t, DebugBuild, Verbose(true))
	assert.False(t, Verbose(false))
}

// TestHelperProcess stands in for the engine binary in spawn tests.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GAMEGATE_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	fmt.Fprint(os.Stdout, strings.Join(args, " "))
	code, _ := strconv.Atoi(os.Getenv("GAMEGATE_HELPER_EXIT"))
	os.Exit(code)
}

func helperLauncher(t *testing.T, exitCode int) (*Launcher, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	l := NewLauncher(os.Args[0], ModeSpawn, []string{"--lang", "pl"}, nil)
	l.Env = append(os.Environ(), "GAMEGATE_HELPER_PROCESS=1", "GAMEGATE_HELPER_EXIT="+strconv.Itoa(exitCode))
	l.Stdout = out
	l.Stderr = &bytes.Buffer{}
	return l, out
}

func TestLaunchSpawn(t *testing.T) {
	l, out := helperLauncher(t, 0)
	code, err := l.Launch(context.Background(), append([]string{"-test.run=TestHelperProcess", "--"}, Args("/ext", false)...))
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "--data-dir /ext --config-dir /ext --save-dir /ext --lang pl", out.String())
}

func TestLaunchSpawnPropagatesExitCode(t *testing.T) {
	l, _ := helperLauncher(t, 3)
	code, err := l.Launch(context.Background(), []string{"-test.run=TestHelperProcess", "--"})
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestLaunchMissingBinary(t *testing.T) {
	l := NewLauncher("definitely-not-a-real-engine-binary", ModeSpawn, nil, nil)
	_, err := l.Launch(context.Background(), nil)
	assert.ErrorIs(t, err, gerrors.ErrEngineNotFound)
}

func TestLaunchExec(t *testing.T) {
	if !canExec {
		t.Skip("exec mode is not available on " + runtime.GOOS)
	}
	l := NewLauncher(os.Args[0], ModeExec, []string{"--extra"}, nil)
	l.Env = []string{"A=1"}
	var gotArgv, gotEnv []string
	l.execFn = func(binary string, argv, envv []string) error {
		gotArgv, gotEnv = argv, envv
		return errors.New("not really")
	}

	_, err := l.Launch(context.Background(), Args("/ext", false))
	assert.ErrorIs(t, err, gerrors.ErrEngineFailed)
	require.NotEmpty(t, gotArgv)
	assert.Equal(t, []string{"--data-dir", "/ext", "--config-dir", "/ext", "--save-dir", "/ext", "--extra"}, gotArgv[1:])
	assert.Equal(t, []string{"A=1"}, gotEnv)
}
