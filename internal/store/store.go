// SPDX-License-Identifier: Apache-2.0
// Package store implements the external storage root: the single directory
// the engine uses for data, configuration and saves.
package store

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/hashicorp/go-hclog"
	gerrors "github.com/provide-io/gamegate/pkg/errors"
)

// DirPerms is used when the root is created on demand.
const DirPerms = 0o700

const tempPrefix = ".migrate-"

// File is a resolved path under the root. The file does not have to exist.
type File struct {
	Name string
	Path string
}

// Outcome describes what MigrateFile did with a legacy file.
type Outcome int

const (
	// OutcomeSkipped means nothing was moved (missing, unreadable or a directory).
	OutcomeSkipped Outcome = iota
	// OutcomeMoved means the file now lives in the external root only.
	OutcomeMoved
	// OutcomeDiscarded means the root already had the file; the legacy copy was dropped.
	OutcomeDiscarded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMoved:
		return "moved"
	case OutcomeDiscarded:
		return "discarded"
	default:
		return "skipped"
	}
}

// Store resolves and migrates files under the external root.
type Store struct {
	fs       billy.Filesystem
	checksum ChecksumAlgorithm
	logger   hclog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithChecksum selects the digest used to verify copies.
func WithChecksum(algo ChecksumAlgorithm) Option {
	return func(s *Store) { s.checksum = algo }
}

// New wraps fs, whose root is the external root.
func New(fs billy.Filesystem, logger hclog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	s := &Store{fs: fs, checksum: ChecksumBlake2b, logger: logger.Named("store")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open returns a Store rooted at dir on the local filesystem. The directory
// is not created until something is written to it.
func Open(dir string, logger hclog.Logger, opts ...Option) *Store {
	return New(osfs.New(dir), logger, opts...)
}

// Filesystem exposes the underlying filesystem.
func (s *Store) Filesystem() billy.Filesystem {
	return s.fs
}

// ExternalFilesDirectory is the root handed to the engine as its data,
// config and save directory.
func (s *Store) ExternalFilesDirectory() string {
	return s.fs.Root()
}

// GetFile resolves relativePath under the root without touching the disk.
func (s *Store) GetFile(relativePath string) File {
	rel := strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(relativePath, `\`, "/")), "/")
	return File{
		Name: path.Base(rel),
		Path: s.fs.Join(s.fs.Root(), rel),
	}
}

// Path is shorthand for GetFile(name).Path.
func (s *Store) Path(name string) string {
	return s.GetFile(name).Path
}

// Exists reports whether name exists under the root. Errors other than
// "does not exist" mean the storage could not be inspected.
func (s *Store) Exists(name string) (bool, error) {
	_, err := s.fs.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", gerrors.ErrStorageUnavailable, err)
}

// HasFile is the boolean form of Exists; inspection failures count as absent.
func (s *Store) HasFile(name string) bool {
	ok, err := s.Exists(name)
	if err != nil {
		s.logger.Warn("⚠️ Could not inspect external storage", "name", name, "error", err)
		return false
	}
	return ok
}

// Probe creates the root when needed and checks that it is writable.
func (s *Store) Probe() error {
	if err := s.fs.MkdirAll("/", DirPerms); err != nil {
		return fmt.Errorf("%w: creating %s: %v", gerrors.ErrStorageUnavailable, s.fs.Root(), err)
	}
	f, err := s.fs.TempFile("", ".probe-")
	if err != nil {
		return fmt.Errorf("%w: %s is not writable: %v", gerrors.ErrStorageUnavailable, s.fs.Root(), err)
	}
	name := f.Name()
	f.Close()
	if err := s.fs.Remove(name); err != nil {
		s.logger.Debug("Failed to remove probe file", "name", name, "error", err)
	}
	return nil
}

// MigrateFile moves name from the legacy filesystem into the root. An
// existing file in the root always wins; the legacy copy is then deleted
// without being read.
func (s *Store) MigrateFile(legacy billy.Filesystem, name string) (Outcome, error) {
	info, err := legacy.Stat(name)
	if err != nil {
		s.logger.Debug("Legacy file not readable, skipping", "name", name, "error", err)
		return OutcomeSkipped, nil
	}
	if info.IsDir() {
		s.logger.Debug("📁 Skipping legacy directory", "name", name)
		return OutcomeSkipped, nil
	}

	exists, err := s.Exists(name)
	if err != nil {
		return OutcomeSkipped, err
	}
	if exists {
		s.logger.Debug("Already migrated, dropping legacy copy", "name", name)
		if err := legacy.Remove(name); err != nil {
			return OutcomeDiscarded, fmt.Errorf("removing legacy copy of %s: %w", name, err)
		}
		return OutcomeDiscarded, nil
	}

	if err := s.fs.MkdirAll("/", DirPerms); err != nil {
		return OutcomeSkipped, fmt.Errorf("%w: %v", gerrors.ErrStorageUnavailable, err)
	}
	if err := s.copyVerified(legacy, name); err != nil {
		return OutcomeSkipped, err
	}

	if err := legacy.Remove(name); err != nil {
		return OutcomeMoved, fmt.Errorf("removing legacy copy of %s: %w", name, err)
	}
	s.logger.Info("📦 Migrated legacy file", "name", name, "size", info.Size())
	return OutcomeMoved, nil
}

// copyVerified streams name into a temp file in the root, checks the copy
// against the source digest and renames it into place.
func (s *Store) copyVerified(legacy billy.Filesystem, name string) error {
	in, err := legacy.Open(name)
	if err != nil {
		return fmt.Errorf("opening legacy %s: %w", name, err)
	}
	defer in.Close()

	tmp, err := s.fs.TempFile("", tempPrefix)
	if err != nil {
		return fmt.Errorf("%w: %v", gerrors.ErrStorageUnavailable, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		if err := s.fs.Remove(tmpName); err != nil {
			s.logger.Debug("Failed to remove temp file", "name", tmpName, "error", err)
		}
	}

	h := s.checksum.newHash()
	if _, err := io.Copy(tmp, io.TeeReader(in, h)); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("copying %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing copy of %s: %w", name, err)
	}
	want := s.checksum.String() + ":" + hex.EncodeToString(h.Sum(nil))

	copied, err := s.fs.Open(tmpName)
	if err != nil {
		cleanup()
		return fmt.Errorf("reopening copy of %s: %w", name, err)
	}
	got, err := s.checksum.Checksum(copied)
	copied.Close()
	if err != nil {
		cleanup()
		return fmt.Errorf("verifying copy of %s: %w", name, err)
	}
	if got != want {
		cleanup()
		return fmt.Errorf("%w: %s (%s != %s)", gerrors.ErrChecksumMismatch, name, got, want)
	}
	s.logger.Trace("Copy verified", "name", name, "checksum", got)

	if err := s.fs.Rename(tmpName, name); err != nil {
		cleanup()
		return fmt.Errorf("renaming copy of %s: %w", name, err)
	}
	return nil
}
