// SPDX-License-Identifier: Apache-2.0
package main

import (
	"io"

	"github.com/provide-io/gamegate/internal/bootstrap"
	"github.com/provide-io/gamegate/internal/config"
	"github.com/provide-io/gamegate/internal/roots"
	"github.com/spf13/cobra"
)

// options are the persistent flags.
type options struct {
	configPath   string
	logLevel     string
	externalRoot string
	legacyRoot   string
	engine       string
	mode         string
	locale       string
}

// app is what a command works with.
type app struct {
	*bootstrap.Components
	out    io.Writer
	errOut io.Writer
}

func newApp(cmd *cobra.Command, opts *options) (*app, error) {
	cfg, err := bootstrap.LoadConfig(opts.configPath)
	if err != nil {
		return nil, withCode(ExitConfigError, err)
	}
	if err := applyFlags(cmd, cfg, opts); err != nil {
		return nil, withCode(ExitConfigError, err)
	}

	logger := bootstrap.NewLogger("gamegate", cfg, opts.logLevel)
	c, err := bootstrap.Build(cfg, roots.OSEnv(), logger)
	if err != nil {
		return nil, withCode(ExitConfigError, err)
	}
	return &app{Components: c, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config, opts *options) error {
	flags := cmd.Flags()
	if flags.Changed("external-root") {
		cfg.Paths.ExternalRoot = opts.externalRoot
	}
	if flags.Changed("legacy-root") {
		cfg.Paths.LegacyRoot = opts.legacyRoot
	}
	if flags.Changed("engine") {
		cfg.Engine.Binary = opts.engine
	}
	if flags.Changed("mode") {
		cfg.Engine.Mode = opts.mode
	}
	if flags.Changed("locale") {
		cfg.Locale.Override = opts.locale
	}
	return cfg.Validate()
}
