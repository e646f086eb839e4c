// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"strings"

	"github.com/provide-io/gamegate/internal/store"
	gerrors "github.com/provide-io/gamegate/pkg/errors"
)

// Validate normalizes enum-like fields and rejects values the launcher cannot use.
func (c *Config) Validate() error {
	c.Engine.Mode = strings.ToLower(strings.TrimSpace(c.Engine.Mode))
	switch c.Engine.Mode {
	case ModeExec, ModeSpawn:
	default:
		return fmt.Errorf("%w: engine mode must be %q or %q, got %q", gerrors.ErrInvalidConfig, ModeExec, ModeSpawn, c.Engine.Mode)
	}
	if strings.TrimSpace(c.Engine.Binary) == "" {
		return fmt.Errorf("%w: engine binary is empty", gerrors.ErrInvalidConfig)
	}
	if _, err := Split(c.Engine.ExtraArgs); err != nil {
		return fmt.Errorf("%w: engine extra_args: %v", gerrors.ErrInvalidConfig, err)
	}

	if c.Acquire.MaxHandoffs < 0 {
		return fmt.Errorf("%w: max_handoffs must not be negative", gerrors.ErrInvalidConfig)
	}
	if _, err := Split(c.Acquire.Command); err != nil {
		return fmt.Errorf("%w: acquire command: %v", gerrors.ErrInvalidConfig, err)
	}

	c.Assets.FontsVersion = strings.TrimSpace(c.Assets.FontsVersion)
	if c.Assets.FontsVersion == "" {
		return fmt.Errorf("%w: fonts_version is empty", gerrors.ErrInvalidConfig)
	}

	if _, err := store.ParseChecksumAlgorithm(c.Migrate.Checksum); err != nil {
		return fmt.Errorf("%w: %v", gerrors.ErrInvalidConfig, err)
	}

	var err error
	if c.Surface.Workaround, err = normalizeSwitch("surface workaround", c.Surface.Workaround); err != nil {
		return err
	}
	if c.Surface.MinHostVersion < 0 || c.Surface.HostVersion < 0 {
		return fmt.Errorf("%w: host versions must not be negative", gerrors.ErrInvalidConfig)
	}
	if c.Accessibility.ScreenReader, err = normalizeSwitch("screen_reader", c.Accessibility.ScreenReader); err != nil {
		return err
	}
	if _, err := Split(c.Accessibility.SpeakCommand); err != nil {
		return fmt.Errorf("%w: speak_command: %v", gerrors.ErrInvalidConfig, err)
	}
	return nil
}

func normalizeSwitch(name, v string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "":
		return SwitchAuto, nil
	case SwitchAuto, SwitchOn, SwitchOff:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %s must be auto, on or off, got %q", gerrors.ErrInvalidConfig, name, v)
	}
}
