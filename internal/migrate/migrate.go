// SPDX-License-Identifier: Apache-2.0
// Package migrate moves save games and settings left in the legacy internal
// root into the external root.
package migrate

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-git/go-billy/v5"
	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/gamegate/internal/store"
	gerrors "github.com/provide-io/gamegate/pkg/errors"
)

// FileMigrator moves one legacy file into the external root.
type FileMigrator interface {
	MigrateFile(legacy billy.Filesystem, name string) (store.Outcome, error)
}

// Summary counts what happened to each legacy entry.
type Summary struct {
	Moved     int
	Discarded int
	Skipped   int
	Failed    int
	Errors    []error
}

// Total is the number of entries looked at.
func (s Summary) Total() int {
	return s.Moved + s.Discarded + s.Skipped + s.Failed
}

// Err joins the per-file errors, nil when every file was handled.
func (s Summary) Err() error {
	return errors.Join(s.Errors...)
}

// Migrator relocates the top level of a legacy root.
type Migrator struct {
	files  FileMigrator
	logger hclog.Logger
}

// New returns a Migrator writing through files.
func New(files FileMigrator, logger hclog.Logger) *Migrator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Migrator{files: files, logger: logger.Named("migrate")}
}

// Migrate hands every entry directly under legacy to the FileMigrator.
// An unreadable or empty legacy root is not an error. A failure on one file
// does not stop the others; failures are collected in the Summary.
func (m *Migrator) Migrate(legacy billy.Filesystem) Summary {
	var sum Summary
	if legacy == nil {
		return sum
	}

	entries, err := legacy.ReadDir("/")
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			m.logger.Debug("Legacy root not readable, nothing to migrate",
				"root", legacy.Root(), "error", fmt.Errorf("%w: %v", gerrors.ErrLegacyEnumeration, err))
		}
		return sum
	}
	if len(entries) == 0 {
		return sum
	}

	m.logger.Debug("🔄 Migrating legacy files", "root", legacy.Root(), "entries", len(entries))
	for _, entry := range entries {
		name := entry.Name()
		outcome, err := m.files.MigrateFile(legacy, name)
		if err != nil {
			m.logger.Warn("⚠️ Failed to migrate legacy file", "name", name, "error", err)
			sum.Failed++
			sum.Errors = append(sum.Errors, err)
			continue
		}
		switch outcome {
		case store.OutcomeMoved:
			sum.Moved++
		case store.OutcomeDiscarded:
			sum.Discarded++
		default:
			sum.Skipped++
		}
	}

	m.logger.Info("📦 Legacy migration finished",
		"moved", sum.Moved, "discarded", sum.Discarded, "skipped", sum.Skipped, "failed", sum.Failed)
	return sum
}
