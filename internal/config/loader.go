// SPDX-License-Identifier: Apache-2.0
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	gerrors "github.com/provide-io/gamegate/pkg/errors"
	"gopkg.in/ini.v1"
)

const (
	// AppDir is the directory name under the user config dir.
	AppDir = "gamegate"
	// FileName is the ini file name.
	FileName = "gamegate.ini"
	// EnvConfig points at an explicit ini file.
	EnvConfig = "GAMEGATE_CONFIG"
)

// Environment overrides.
const (
	EnvExternalRoot = "GAMEGATE_EXTERNAL_ROOT"
	EnvLegacyRoot   = "GAMEGATE_LEGACY_ROOT"
	EnvEngine       = "GAMEGATE_ENGINE"
	EnvEngineMode   = "GAMEGATE_ENGINE_MODE"
	EnvEngineArgs   = "GAMEGATE_ENGINE_ARGS"
	EnvVerbose      = "GAMEGATE_VERBOSE"
	EnvAcquire      = "GAMEGATE_ACQUIRE_COMMAND"
	EnvMaxHandoffs  = "GAMEGATE_MAX_HANDOFFS"
	EnvFontsVersion = "GAMEGATE_FONTS_VERSION"
	EnvChecksum     = "GAMEGATE_CHECKSUM"
	EnvWorkaround   = "GAMEGATE_SURFACE_WORKAROUND"
	EnvHostVersion  = "GAMEGATE_HOST_VERSION"
	EnvScreenReader = "GAMEGATE_SCREEN_READER"
	EnvSpeak        = "GAMEGATE_SPEAK_COMMAND"
)

// Environment abstracts the process environment for tests.
type Environment interface {
	Getenv(key string) string
	UserConfigDir() (string, error)
	ReadFile(path string) ([]byte, error)
}

// OSEnvironment is the real process environment.
type OSEnvironment struct{}

func (OSEnvironment) Getenv(key string) string            { return os.Getenv(key) }
func (OSEnvironment) UserConfigDir() (string, error)      { return os.UserConfigDir() }
func (OSEnvironment) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// Loader merges defaults, the ini file and the environment.
type Loader struct {
	env Environment
}

// NewLoader returns a Loader over the real environment.
func NewLoader() *Loader {
	return &Loader{env: OSEnvironment{}}
}

// NewLoaderWithEnv returns a Loader over env.
func NewLoaderWithEnv(env Environment) *Loader {
	return &Loader{env: env}
}

// Path returns the ini file location: GAMEGATE_CONFIG, else
// <user config dir>/gamegate/gamegate.ini. Empty when neither is known.
func (l *Loader) Path() string {
	if p := l.env.Getenv(EnvConfig); p != "" {
		return p
	}
	dir, err := l.env.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppDir, FileName)
}

// Load reads the file at Path. A missing file yields the defaults; a
// malformed file or invalid values are errors.
func (l *Loader) Load() (*Config, error) {
	return l.LoadFrom(l.Path())
}

// LoadFrom is Load with an explicit file path.
func (l *Loader) LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := l.env.ReadFile(path)
		switch {
		case err == nil:
			if err := cfg.apply(data); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", gerrors.ErrInvalidConfig, path, err)
			}
			cfg.Source = path
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(l.env.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is shorthand for NewLoader().Load().
func Load() (*Config, error) {
	return NewLoader().Load()
}

func (c *Config) apply(data []byte) error {
	f, err := ini.LoadSources(ini.LoadOptions{
		SkipUnrecognizableLines: false,
		AllowBooleanKeys:        true,
	}, data)
	if err != nil {
		return err
	}

	sections := []struct {
		name   string
		target interface{}
	}{
		{"paths", &c.Paths},
		{"engine", &c.Engine},
		{"acquire", &c.Acquire},
		{"locale", &c.Locale},
		{"assets", &c.Assets},
		{"migrate", &c.Migrate},
		{"surface", &c.Surface},
		{"accessibility", &c.Accessibility},
		{"log", &c.Log},
	}
	for _, s := range sections {
		if !f.HasSection(s.name) {
			continue
		}
		if err := f.Section(s.name).StrictMapTo(s.target); err != nil {
			return fmt.Errorf("[%s]: %w", s.name, err)
		}
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", gerrors.ErrInvalidConfig, key, v)
		}
		*dst = n
		return nil
	}

	str(EnvExternalRoot, &c.Paths.ExternalRoot)
	str(EnvLegacyRoot, &c.Paths.LegacyRoot)
	str(EnvEngine, &c.Engine.Binary)
	str(EnvEngineMode, &c.Engine.Mode)
	str(EnvEngineArgs, &c.Engine.ExtraArgs)
	if getenv(EnvVerbose) != "" {
		c.Engine.Verbose = IsTrue(getenv(EnvVerbose))
	}
	str(EnvAcquire, &c.Acquire.Command)
	if err := num(EnvMaxHandoffs, &c.Acquire.MaxHandoffs); err != nil {
		return err
	}
	str(EnvFontsVersion, &c.Assets.FontsVersion)
	str(EnvChecksum, &c.Migrate.Checksum)
	str(EnvWorkaround, &c.Surface.Workaround)
	if err := num(EnvHostVersion, &c.Surface.HostVersion); err != nil {
		return err
	}
	str(EnvScreenReader, &c.Accessibility.ScreenReader)
	str(EnvSpeak, &c.Accessibility.SpeakCommand)
	return nil
}

// IsTrue accepts the usual spellings of an enabled switch.
func IsTrue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "yes":
		return true
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}
