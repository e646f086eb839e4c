// SPDX-License-Identifier: Apache-2.0
// Package fonts validates the supplementary font archive that CJK locales
// need. The archive carries a VERSION entry that must match the version the
// engine was built against.
package fonts

import (
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/gamegate/internal/mpq"
	gerrors "github.com/provide-io/gamegate/pkg/errors"
)

const (
	// ArchiveName is the file name of the font archive in the external root.
	ArchiveName = "fonts.mpq"
	// VersionEntry is the archive entry holding the font pack version.
	VersionEntry = `fonts\VERSION`
	// DefaultVersion is the font pack version this launcher expects.
	DefaultVersion = "1"
)

// Checker compares font archives against an expected version.
type Checker struct {
	fs       billy.Basic
	expected string
	logger   hclog.Logger
}

// NewChecker returns a Checker that opens archives through fs.
func NewChecker(fs billy.Basic, expected string, logger hclog.Logger) *Checker {
	if expected == "" {
		expected = DefaultVersion
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Checker{fs: fs, expected: expected, logger: logger.Named("fonts")}
}

// Expected returns the version archives must carry.
func (c *Checker) Expected() string {
	return c.expected
}

// OutOfDate reports whether the archive at archivePath is stale. Any
// failure to confirm the version counts as stale; such failures are also
// returned as an error wrapping ErrVersionCheck.
func (c *Checker) OutOfDate(archivePath string) (bool, error) {
	version, err := c.Version(archivePath)
	if err != nil {
		if errors.Is(err, gerrors.ErrFileNotFound) {
			c.logger.Debug("🔤 Font archive has no version entry", "path", archivePath)
			return true, nil
		}
		c.logger.Warn("⚠️ Could not verify font archive", "path", archivePath, "error", err)
		return true, fmt.Errorf("%w: %v", gerrors.ErrVersionCheck, err)
	}

	if version != c.expected {
		c.logger.Info("🔤 Font archive is out of date", "path", archivePath, "found", version, "expected", c.expected)
		return true, nil
	}
	c.logger.Debug("✅ Font archive is current", "path", archivePath, "version", version)
	return false, nil
}

// Version reads the trimmed VERSION entry of the archive at archivePath.
func (c *Checker) Version(archivePath string) (string, error) {
	archive, err := mpq.OpenFile(c.fs, archivePath)
	if err != nil {
		return "", err
	}
	defer archive.Close()

	data, err := archive.ReadFile(VersionEntry)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Pack builds a font archive from every regular file below dir on fs,
// stored under the fonts\ prefix, and stamps it with version.
func Pack(fs billy.Filesystem, dir, version string) ([]byte, error) {
	if version == "" {
		version = DefaultVersion
	}

	var names []string
	contents := map[string][]byte{}
	if err := collect(fs, dir, "", contents, &names); err != nil {
		return nil, err
	}
	sort.Strings(names)

	entries := make([]mpq.Entry, 0, len(names)+1)
	for _, name := range names {
		entries = append(entries, mpq.Entry{
			Name:        `fonts\` + strings.ReplaceAll(name, "/", `\`),
			Data:        contents[name],
			Compression: mpq.CompressionZlib,
		})
	}
	entries = append(entries, mpq.Entry{Name: VersionEntry, Data: []byte(version + "\n"), SingleUnit: true})

	return mpq.Build(entries, mpq.BuildOptions{SectorSizeShift: 3})
}

func collect(fs billy.Filesystem, dir, rel string, contents map[string][]byte, names *[]string) error {
	infos, err := fs.ReadDir(fs.Join(dir, rel))
	if err != nil {
		return fmt.Errorf("listing %s: %w", path.Join(dir, rel), err)
	}
	for _, info := range infos {
		child := path.Join(rel, info.Name())
		if info.IsDir() {
			if err := collect(fs, dir, child, contents, names); err != nil {
				return err
			}
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		f, err := fs.Open(fs.Join(dir, child))
		if err != nil {
			return err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("reading %s: %w", child, err)
		}
		contents[child] = data
		*names = append(*names, child)
	}
	return nil
}
