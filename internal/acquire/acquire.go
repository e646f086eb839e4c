// SPDX-License-Identifier: Apache-2.0
// Package acquire hands control to whatever obtains missing game data: a
// configured helper command or, without one, printed instructions.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/gamegate/internal/config"
	gerrors "github.com/provide-io/gamegate/pkg/errors"
)

// Environment passed to the helper command.
const (
	EnvDataDir = "GAMEGATE_DATA_DIR"
	EnvMissing = "GAMEGATE_MISSING"
	EnvLocale  = "GAMEGATE_LOCALE"
)

// Request describes what is missing and where it has to go.
type Request struct {
	Root    string
	Locale  string
	Missing []string
}

// Acquirer obtains missing data. Returning nil means control came back;
// the caller re-checks the data itself.
type Acquirer interface {
	Acquire(ctx context.Context, req Request) error
}

// New returns a CommandAcquirer for a non-empty command line, else Instructions.
func New(command string, out io.Writer, logger hclog.Logger) (Acquirer, error) {
	argv, err := config.Split(command)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire command: %v", gerrors.ErrInvalidConfig, err)
	}
	if len(argv) == 0 {
		return &Instructions{Out: out}, nil
	}
	return NewCommand(argv, logger), nil
}

// CommandAcquirer runs a helper and waits for it.
type CommandAcquirer struct {
	Argv   []string
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	logger hclog.Logger
}

// NewCommand returns an acquirer running argv with the process stdio.
func NewCommand(argv []string, logger hclog.Logger) *CommandAcquirer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &CommandAcquirer{
		Argv:   argv,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		logger: logger.Named("acquire"),
	}
}

func (c *CommandAcquirer) Acquire(ctx context.Context, req Request) error {
	if len(c.Argv) == 0 {
		return fmt.Errorf("%w: no command", gerrors.ErrAcquisitionFailed)
	}
	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	env := c.Env
	if env == nil {
		env = os.Environ()
	}
	cmd.Env = append(append([]string{}, env...),
		EnvDataDir+"="+req.Root,
		EnvMissing+"="+strings.Join(req.Missing, ","),
		EnvLocale+"="+req.Locale,
	)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = c.Stdin, c.Stdout, c.Stderr

	c.logger.Info("📥 Handing off to acquisition helper", "command", config.Quote(c.Argv), "missing", req.Missing)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: helper exited with code %d", gerrors.ErrAcquisitionFailed, exitErr.ExitCode())
		}
		return fmt.Errorf("%w: %v", gerrors.ErrAcquisitionFailed, err)
	}
	c.logger.Debug("✅ Acquisition helper returned")
	return nil
}

// Instructions tells the user which files to copy where.
type Instructions struct {
	Out io.Writer
}

func (i *Instructions) Acquire(_ context.Context, req Request) error {
	out := i.Out
	if out == nil {
		out = os.Stderr
	}
	var b strings.Builder
	fmt.Fprintln(&b, "Game data is missing or out of date.")
	fmt.Fprintf(&b, "Copy the following files into %s and start again:\n", req.Root)
	for _, name := range req.Missing {
		fmt.Fprintf(&b, "  - %s\n", name)
	}
	_, err := io.WriteString(out, b.String())
	return err
}
