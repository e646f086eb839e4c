// SPDX-License-Identifier: Apache-2.0
// Package accessibility answers "is a screen reader running" and speaks
// text through the host's speech service on behalf of the engine.
package accessibility

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/gamegate/internal/config"
	gerrors "github.com/provide-io/gamegate/pkg/errors"
)

const queryTimeout = 2 * time.Second

// Bridge is what the engine sees of the host accessibility services.
type Bridge interface {
	ScreenReaderEnabled() bool
	Speak(text string) error
}

// Runner runs a command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// CommandBridge implements Bridge with platform tools.
type CommandBridge struct {
	mode   string
	speak  []string
	goos   string
	run    Runner
	logger hclog.Logger
}

// New returns a bridge. mode is auto, on or off; speakCommand, when set,
// replaces the platform speech tool and gets the text as its last argument.
func New(mode, speakCommand string, logger hclog.Logger) (*CommandBridge, error) {
	argv, err := config.Split(speakCommand)
	if err != nil {
		return nil, fmt.Errorf("%w: speak command: %v", gerrors.ErrInvalidConfig, err)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if mode == "" {
		mode = config.SwitchAuto
	}
	return &CommandBridge{
		mode:   mode,
		speak:  argv,
		goos:   runtime.GOOS,
		run:    execRunner,
		logger: logger.Named("a11y"),
	}, nil
}

// ScreenReaderEnabled reports whether a screen reader is active. On Android
// touch exploration must be on as well.
func (b *CommandBridge) ScreenReaderEnabled() bool {
	switch b.mode {
	case config.SwitchOn:
		return true
	case config.SwitchOff:
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	switch b.goos {
	case "android":
		return b.query(ctx, "1", "settings", "get", "secure", "accessibility_enabled") &&
			b.query(ctx, "1", "settings", "get", "secure", "touch_exploration_enabled")
	case "darwin":
		return b.query(ctx, "1", "defaults", "read", "com.apple.universalaccess", "voiceOverOnOffKey")
	case "windows":
		return false
	default:
		return b.query(ctx, "true", "gsettings", "get", "org.gnome.desktop.a11y.applications", "screen-reader-enabled")
	}
}

func (b *CommandBridge) query(ctx context.Context, want, name string, args ...string) bool {
	out, err := b.run(ctx, name, args...)
	if err != nil {
		b.logger.Trace("Accessibility query failed", "command", name, "error", err)
		return false
	}
	return strings.TrimSpace(string(out)) == want
}

// Speak announces text. Empty text is ignored.
func (b *CommandBridge) Speak(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	argv := b.speechCommand()
	if len(argv) == 0 {
		return fmt.Errorf("%w: no speech tool on %s", gerrors.ErrSpeechUnavailable, b.goos)
	}
	argv = append(argv, text)

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	if _, err := b.run(ctx, argv[0], argv[1:]...); err != nil {
		var notFound *exec.Error
		if errors.As(err, &notFound) {
			return fmt.Errorf("%w: %v", gerrors.ErrSpeechUnavailable, err)
		}
		return fmt.Errorf("speaking via %s: %w", argv[0], err)
	}
	b.logger.Trace("🔊 Spoke", "chars", len(text))
	return nil
}

func (b *CommandBridge) speechCommand() []string {
	if len(b.speak) > 0 {
		return append([]string{}, b.speak...)
	}
	switch b.goos {
	case "darwin":
		return []string{"say"}
	case "android", "windows":
		return nil
	default:
		return []string{"spd-say", "--wait"}
	}
}
