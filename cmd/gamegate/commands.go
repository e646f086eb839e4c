// SPDX-License-Identifier: Apache-2.0
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/provide-io/gamegate/internal/assets"
	"github.com/provide-io/gamegate/internal/engine"
	"github.com/provide-io/gamegate/internal/fonts"
	"github.com/provide-io/gamegate/internal/migrate"
	gerrors "github.com/provide-io/gamegate/pkg/errors"
	"github.com/spf13/cobra"
)

var errInvalidArgs = errors.New("invalid arguments")

func args(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, a []string) error {
		if err := v(cmd, a); err != nil {
			return fmt.Errorf("%w: %v", errInvalidArgs, err)
		}
		return nil
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "gamegate",
		Short:         "Prepare game data and start the engine",
		Long:          "Migrates legacy saves into the external root, checks that the game data for the current locale is complete, then starts the engine or hands off to data acquisition.",
		Args:          args(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLaunch(cmd, opts)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Path to gamegate.ini")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error; json:<level> for JSON)")
	pf.StringVar(&opts.externalRoot, "external-root", "", "External root for data, config and saves")
	pf.StringVar(&opts.legacyRoot, "legacy-root", "", "Legacy root to migrate files from")
	pf.StringVar(&opts.engine, "engine", "", "Engine binary")
	pf.StringVar(&opts.mode, "mode", "", "Engine launch mode (exec or spawn)")
	pf.StringVar(&opts.locale, "locale", "", "Locale override, e.g. pl_PL")

	root.AddCommand(
		newCheckCmd(opts),
		newMigrateCmd(opts),
		newFontsCmd(opts),
		newA11yCmd(opts),
		newVersionCmd(),
	)
	return root
}

func runLaunch(cmd *cobra.Command, opts *options) error {
	a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	acq, err := a.Acquirer(a.errOut)
	if err != nil {
		return withCode(ExitConfigError, err)
	}
	launcher, err := a.Launcher()
	if err != nil {
		return withCode(ExitConfigError, err)
	}

	code, err := a.Gate().Run(cmd.Context(), acq, launcher, a.Config.Acquire.MaxHandoffs)
	if err != nil {
		return err
	}
	if code != 0 {
		return withCode(code, nil)
	}
	return nil
}

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether the game data is complete for the current locale",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			report := a.Checker.Check()
			printReport(a, report)
			if report.Missing() {
				return withCode(ExitFailure, nil)
			}
			return nil
		},
	}
}

func printReport(a *app, report assets.Report) {
	locale := report.Locale
	if locale == "" {
		locale = "(unknown)"
	}
	fmt.Fprintf(a.out, "Root:   %s\n", a.Store.ExternalFilesDirectory())
	fmt.Fprintf(a.out, "Locale: %s\n", locale)
	if !report.Missing() {
		fmt.Fprintln(a.out, "✓ Game data complete")
		return
	}
	for _, f := range report.Findings {
		fmt.Fprintf(a.out, "✗ %s\n", f)
	}
	fmt.Fprintf(a.out, "✗ Game data incomplete (%d problem(s))\n", len(report.Findings))
}

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Move files from the legacy root into the external root",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			if a.Legacy == nil {
				fmt.Fprintln(a.out, "No legacy root on this platform")
				return nil
			}
			if err := a.Lock.TryAcquire(); err != nil {
				return withCode(ExitIOError, err)
			}
			defer a.Lock.Release()
			if err := a.Store.Probe(); err != nil {
				return withCode(ExitIOError, err)
			}

			sum := migrate.New(a.Store, a.Logger).Migrate(a.Legacy)
			fmt.Fprintf(a.out, "%s → %s\n", a.Roots.Legacy, a.Roots.External)
			fmt.Fprintf(a.out, "moved %d, discarded %d, skipped %d, failed %d\n", sum.Moved, sum.Discarded, sum.Skipped, sum.Failed)
			if err := sum.Err(); err != nil {
				return withCode(ExitIOError, err)
			}
			return nil
		},
	}
}

func newFontsCmd(opts *options) *cobra.Command {
	fontsCmd := &cobra.Command{
		Use:   "fonts",
		Short: "Inspect or build the font archive",
	}

	fontsCmd.AddCommand(&cobra.Command{
		Use:   "check [archive]",
		Short: "Compare a font archive's version with the expected one",
		Args:  args(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, positional []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			path := a.Store.Path(fonts.ArchiveName)
			if len(positional) == 1 {
				path = positional[0]
			}

			found, verr := a.Fonts.Version(path)
			if verr != nil {
				found = "(" + verr.Error() + ")"
			}
			stale, err := a.Fonts.OutOfDate(path)
			fmt.Fprintf(a.out, "Archive:  %s\nVersion:  %s\nExpected: %s\n", path, found, a.Fonts.Expected())
			if err != nil && !errors.Is(err, gerrors.ErrVersionCheck) {
				return err
			}
			if stale {
				fmt.Fprintln(a.out, "✗ Out of date")
				return withCode(ExitFailure, nil)
			}
			fmt.Fprintln(a.out, "✓ Current")
			return nil
		},
	})

	var packVersion string
	pack := &cobra.Command{
		Use:   "pack <dir> <archive>",
		Short: "Build a font archive from a directory",
		Args:  args(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, positional []string) error {
			fs := osfs.New("")
			data, err := fonts.Pack(fs, positional[0], packVersion)
			if err != nil {
				return withCode(ExitIOError, err)
			}
			if err := util.WriteFile(fs, positional[1], data, 0o644); err != nil {
				return withCode(ExitIOError, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", positional[1], len(data))
			return nil
		},
	}
	pack.Flags().StringVar(&packVersion, "version", fonts.DefaultVersion, "Version stamped into the archive")
	fontsCmd.AddCommand(pack)

	return fontsCmd
}

func newA11yCmd(opts *options) *cobra.Command {
	a11y := &cobra.Command{
		Use:   "a11y",
		Short: "Accessibility bridge for the engine",
	}

	a11y.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Exit 0 when a screen reader is active",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			bridge, err := a.Accessibility()
			if err != nil {
				return withCode(ExitConfigError, err)
			}
			if bridge.ScreenReaderEnabled() {
				fmt.Fprintln(a.out, "enabled")
				return nil
			}
			fmt.Fprintln(a.out, "disabled")
			return withCode(ExitFailure, nil)
		},
	})

	a11y.AddCommand(&cobra.Command{
		Use:   "speak <text>...",
		Short: "Announce text through the host speech service",
		Args:  args(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, positional []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			bridge, err := a.Accessibility()
			if err != nil {
				return withCode(ExitConfigError, err)
			}
			return bridge.Speak(strings.Join(positional, " "))
		},
	})

	return a11y
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  args(cobra.NoArgs),
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "gamegate %s\n", version)
			fmt.Fprintf(out, "Built: %s\n", getBuildTimestamp())
			if engine.DebugBuild {
				fmt.Fprintln(out, "Debug build")
			}
			if exe, err := os.Executable(); err == nil {
				fmt.Fprintf(out, "Path:  %s\n", exe)
			}
		},
	}
}
