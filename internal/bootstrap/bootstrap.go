// SPDX-License-Identifier: Apache-2.0
// Package bootstrap wires configuration into the launcher components shared
// by the desktop and mobile front ends.
package bootstrap

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/gamegate/internal/accessibility"
	"github.com/provide-io/gamegate/internal/acquire"
	"github.com/provide-io/gamegate/internal/assets"
	"github.com/provide-io/gamegate/internal/config"
	"github.com/provide-io/gamegate/internal/engine"
	"github.com/provide-io/gamegate/internal/fonts"
	"github.com/provide-io/gamegate/internal/gate"
	"github.com/provide-io/gamegate/internal/instance"
	"github.com/provide-io/gamegate/internal/locale"
	"github.com/provide-io/gamegate/internal/migrate"
	"github.com/provide-io/gamegate/internal/roots"
	"github.com/provide-io/gamegate/internal/store"
	gerrors "github.com/provide-io/gamegate/pkg/errors"
	"github.com/provide-io/gamegate/pkg/logging"
)

// Components are the launcher parts built from one configuration.
type Components struct {
	Config  *config.Config
	Logger  hclog.Logger
	Roots   roots.Roots
	Store   *store.Store
	Legacy  billy.Filesystem
	Fonts   *fonts.Checker
	Locale  *locale.Detector
	Checker *assets.Checker
	Lock    *instance.Lock
}

// LoadConfig reads path, or the default location when path is empty.
func LoadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader()
	if path != "" {
		return loader.LoadFrom(path)
	}
	return loader.Load()
}

// NewLogger builds the process logger. flagLevel wins over the environment
// and the configuration.
func NewLogger(name string, cfg *config.Config, flagLevel string) hclog.Logger {
	level, source := logging.ResolveLevel(flagLevel, cfg.Log.Level)
	if cfg.Log.JSON && !strings.HasPrefix(level, "json") {
		level = "json:" + level
	}
	logger := logging.NewLogger(name, level, logging.OpenOutput(cfg.Log.Path))
	logger.Debug("🔧 Configuration loaded", "source", cfg.Source, "log_level", level, "log_source", source)
	return logger
}

// Build resolves the roots and constructs the components for env.
func Build(cfg *config.Config, env roots.Env, logger hclog.Logger) (*Components, error) {
	r := roots.Resolve(env, cfg.Paths.ExternalRoot, cfg.Paths.LegacyRoot)
	logger.Debug("📁 Roots resolved", "external", r.External, "legacy", r.Legacy)

	algo, err := store.ParseChecksumAlgorithm(cfg.Migrate.Checksum)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gerrors.ErrInvalidConfig, err)
	}
	st := store.Open(r.External, logger, store.WithChecksum(algo))

	var legacy billy.Filesystem
	if r.Legacy != "" && r.Legacy != r.External {
		legacy = osfs.New(r.Legacy)
	}

	// Archive paths are absolute, so the checker reads through an unrooted filesystem.
	fontChecker := fonts.NewChecker(osfs.New(""), cfg.Assets.FontsVersion, logger)
	det := locale.NewDetector(cfg.Locale.Override, logger)

	return &Components{
		Config:  cfg,
		Logger:  logger,
		Roots:   r,
		Store:   st,
		Legacy:  legacy,
		Fonts:   fontChecker,
		Locale:  det,
		Checker: assets.NewChecker(st, fontChecker, det.Current, logger),
		Lock:    instance.New(roots.LockPath(env), logger),
	}, nil
}

// Gate returns the start-up gate over these components.
func (c *Components) Gate() *gate.Gate {
	return gate.New(c.Store, migrate.New(c.Store, c.Logger), c.Checker, gate.Options{
		Legacy:  c.Legacy,
		Lock:    c.Lock,
		Verbose: engine.Verbose(c.Config.Engine.Verbose),
	}, c.Logger)
}

// Launcher returns the configured engine launcher.
func (c *Components) Launcher() (*engine.Launcher, error) {
	extra, err := config.Split(c.Config.Engine.ExtraArgs)
	if err != nil {
		return nil, fmt.Errorf("%w: engine extra_args: %v", gerrors.ErrInvalidConfig, err)
	}
	return engine.NewLauncher(c.Config.Engine.Binary, c.Config.Engine.Mode, extra, c.Logger), nil
}

// Acquirer returns the configured acquisition handoff; instructions go to out.
func (c *Components) Acquirer(out io.Writer) (acquire.Acquirer, error) {
	return acquire.New(c.Config.Acquire.Command, out, c.Logger)
}

// Accessibility returns the accessibility bridge.
func (c *Components) Accessibility() (*accessibility.CommandBridge, error) {
	return accessibility.New(c.Config.Accessibility.ScreenReader, c.Config.Accessibility.SpeakCommand, c.Logger)
}
