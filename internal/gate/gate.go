// SPDX-License-Identifier: Apache-2.0
// Package gate runs the start-up sequence: migrate legacy files, check the
// game data, then either start the engine or hand off to acquisition.
package gate

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-billy/v5"
	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/gamegate/internal/acquire"
	"github.com/provide-io/gamegate/internal/assets"
	"github.com/provide-io/gamegate/internal/engine"
	"github.com/provide-io/gamegate/internal/migrate"
	gerrors "github.com/provide-io/gamegate/pkg/errors"
)

// Root is the external root as the gate sees it.
type Root interface {
	ExternalFilesDirectory() string
	Probe() error
}

// Migrator relocates legacy files.
type Migrator interface {
	Migrate(legacy billy.Filesystem) migrate.Summary
}

// Checker evaluates the asset rules.
type Checker interface {
	Check() assets.Report
}

// Lock guards the writer role on the external root.
type Lock interface {
	TryAcquire() error
	Release()
}

// Launcher starts the engine.
type Launcher interface {
	Launch(ctx context.Context, args []string) (int, error)
}

// Outcome is the result of one evaluation.
type Outcome struct {
	Ready     bool
	Root      string
	Args      []string
	Report    assets.Report
	Migration migrate.Summary
	// MigrationSkipped is set when another instance held the lock or the
	// root could not be prepared.
	MigrationSkipped bool
}

// Gate wires the start-up steps together.
type Gate struct {
	root     Root
	legacy   billy.Filesystem
	migrator Migrator
	checker  Checker
	lock     Lock
	verbose  bool
	logger   hclog.Logger
}

// Options are the optional parts of a Gate.
type Options struct {
	// Legacy is the legacy internal root; nil when there is none.
	Legacy billy.Filesystem
	// Lock is taken around migration and check; nil disables locking.
	Lock Lock
	// Verbose adds --verbose to the engine arguments.
	Verbose bool
}

// New returns a Gate.
func New(root Root, migrator Migrator, checker Checker, opts Options, logger hclog.Logger) *Gate {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Gate{
		root:     root,
		legacy:   opts.Legacy,
		migrator: migrator,
		checker:  checker,
		lock:     opts.Lock,
		verbose:  opts.Verbose,
		logger:   logger.Named("gate"),
	}
}

// Evaluate migrates, then checks. Migration always finishes before the
// check starts. No step is fatal: failures end up as missing data or a
// skipped migration.
func (g *Gate) Evaluate() Outcome {
	out := Outcome{Root: g.root.ExternalFilesDirectory()}

	writer := true
	if g.lock != nil {
		if err := g.lock.TryAcquire(); err != nil {
			writer = false
			if errors.Is(err, gerrors.ErrInstanceLocked) {
				g.logger.Info("🔒 Another launcher owns the external root, skipping migration")
			} else {
				g.logger.Warn("⚠️ Could not take instance lock, skipping migration", "error", err)
			}
		} else {
			defer g.lock.Release()
		}
	}

	if writer {
		if err := g.root.Probe(); err != nil {
			g.logger.Warn("⚠️ External storage unavailable", "root", out.Root, "error", err)
			writer = false
		}
	}

	switch {
	case !writer:
		out.MigrationSkipped = true
	case g.legacy != nil:
		out.Migration = g.migrator.Migrate(g.legacy)
	}

	out.Report = g.checker.Check()
	out.Ready = !out.Report.Missing()
	if out.Ready {
		out.Args = engine.Args(out.Root, g.verbose)
	}
	return out
}

// Run evaluates the gate and starts the engine, handing off to acq while
// data is missing. After each successful handoff the gate is evaluated
// again, at most maxHandoffs times. It returns the engine exit code.
func (g *Gate) Run(ctx context.Context, acq acquire.Acquirer, eng Launcher, maxHandoffs int) (int, error) {
	for handoffs := 0; ; handoffs++ {
		out := g.Evaluate()
		if out.Ready {
			return eng.Launch(ctx, out.Args)
		}
		if handoffs >= maxHandoffs {
			return 0, fmt.Errorf("%w: still missing %v", gerrors.ErrAcquisitionFailed, out.Report.Files())
		}

		g.logger.Debug("📥 Game data missing, handing off", "attempt", handoffs+1, "max", maxHandoffs)
		req := acquire.Request{Root: out.Root, Locale: out.Report.Locale, Missing: out.Report.Files()}
		if err := acq.Acquire(ctx, req); err != nil {
			return 0, err
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
	}
}
