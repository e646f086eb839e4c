// SPDX-License-Identifier: Apache-2.0
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/hashicorp/go-hclog"
	gerrors "github.com/provide-io/gamegate/pkg/errors"
)

// Launch modes.
const (
	ModeExec  = "exec"
	ModeSpawn = "spawn"
)

// Launcher starts the engine binary.
type Launcher struct {
	Binary    string
	Mode      string
	ExtraArgs []string
	Env       []string
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer

	logger hclog.Logger
	execFn func(binary string, argv, envv []string) error
}

// NewLauncher returns a Launcher wired to the process stdio.
func NewLauncher(binary, mode string, extraArgs []string, logger hclog.Logger) *Launcher {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Launcher{
		Binary:    binary,
		Mode:      mode,
		ExtraArgs: extraArgs,
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		logger:    logger.Named("engine"),
		execFn:    execProcess,
	}
}

// EffectiveMode is the mode Launch will use. Platforms that cannot replace
// the process image always spawn.
func (l *Launcher) EffectiveMode() string {
	if l.Mode == ModeSpawn || !canExec {
		return ModeSpawn
	}
	return ModeExec
}

// Launch runs the engine with args. In exec mode it only returns on
// failure. In spawn mode it waits and returns the engine's exit code.
func (l *Launcher) Launch(ctx context.Context, args []string) (int, error) {
	binary, err := exec.LookPath(l.Binary)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", gerrors.ErrEngineNotFound, l.Binary, err)
	}
	full := append(append([]string{}, args...), l.ExtraArgs...)
	env := l.Env
	if env == nil {
		env = os.Environ()
	}

	if l.EffectiveMode() == ModeExec {
		l.logger.Info("🚀 Starting engine", "path", binary)
		l.logger.Debug("🔄 Replacing process via exec()", "args", full)
		err := l.execFn(binary, append([]string{binary}, full...), env)
		return 0, fmt.Errorf("%w: exec %s: %v", gerrors.ErrEngineFailed, binary, err)
	}

	l.logger.Info("🚀 Starting engine", "path", binary)
	l.logger.Debug("🔄 Using spawn mode", "args", full)
	cmd := exec.CommandContext(ctx, binary, full...)
	cmd.Env = env
	cmd.Stdin, cmd.Stdout, cmd.Stderr = l.Stdin, l.Stdout, l.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			l.logger.Info("⏹️ Engine exited", "code", exitErr.ExitCode())
			return exitErr.ExitCode(), nil
		}
		return 0, fmt.Errorf("%w: %v", gerrors.ErrEngineFailed, err)
	}
	l.logger.Info("✅ Engine exited cleanly")
	return 0, nil
}
