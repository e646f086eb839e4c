// SPDX-License-Identifier: Apache-2.0
// Package assets decides whether the external root holds enough game data
// to start the engine for the current locale.
package assets

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Archive names looked up in the external root.
const (
	PolishArchive  = "pl.mpq"
	RussianArchive = "ru.mpq"
	FontsArchive   = "fonts.mpq"
)

// BaseGameCandidates are interchangeable; any one satisfies the base-game rule.
var BaseGameCandidates = []string{"diabdat.mpq", "DIABDAT.MPQ", "spawn.mpq"}

// fontLocales need the extra font archive.
var fontLocales = []string{"ko", "zh", "ja"}

// Rule names a single availability requirement.
type Rule string

const (
	RulePolish   Rule = "polish"
	RuleRussian  Rule = "russian"
	RuleFonts    Rule = "fonts"
	RuleBaseGame Rule = "base-game"
)

// Store is the view of the external root the checker needs.
type Store interface {
	Exists(name string) (bool, error)
	Path(name string) string
}

// FreshnessChecker reports whether the font archive at path is stale.
type FreshnessChecker interface {
	OutOfDate(path string) (bool, error)
}

// LocaleSource returns the current locale identifier. It is called on every check.
type LocaleSource func() string

// Finding is one failed rule.
type Finding struct {
	Rule   Rule
	File   string
	Reason string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s (%s)", f.Rule, f.File, f.Reason)
}

// Report is the outcome of a check.
type Report struct {
	Locale   string
	Findings []Finding
}

// Missing reports whether any rule failed.
func (r Report) Missing() bool {
	return len(r.Findings) > 0
}

// Files lists the archives that need to be obtained.
func (r Report) Files() []string {
	files := make([]string, 0, len(r.Findings))
	for _, f := range r.Findings {
		files = append(files, f.File)
	}
	return files
}

type localeRule struct {
	rule   Rule
	prefix string
	file   string
}

var localeRules = []localeRule{
	{rule: RulePolish, prefix: "pl", file: PolishArchive},
	{rule: RuleRussian, prefix: "ru", file: RussianArchive},
}

// Checker evaluates the availability rules against a Store.
type Checker struct {
	store  Store
	fonts  FreshnessChecker
	locale LocaleSource
	logger hclog.Logger
}

// NewChecker builds a Checker. The checker holds no state between calls.
func NewChecker(store Store, fonts FreshnessChecker, locale LocaleSource, logger hclog.Logger) *Checker {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Checker{
		store:  store,
		fonts:  fonts,
		locale: locale,
		logger: logger.Named("assets"),
	}
}

// IsMissingGameData is true when the engine cannot start until more data is collected.
func (c *Checker) IsMissingGameData() bool {
	return c.Check().Missing()
}

// Check evaluates every rule and returns the failures.
func (c *Checker) Check() Report {
	locale := ""
	if c.locale != nil {
		locale = c.locale()
	}
	lang := strings.ToLower(locale)
	report := Report{Locale: locale}

	for _, r := range localeRules {
		if !strings.HasPrefix(lang, r.prefix) {
			continue
		}
		if ok, reason := c.present(r.file); !ok {
			report.Findings = append(report.Findings, Finding{Rule: r.rule, File: r.file, Reason: reason})
		}
	}

	if f, failed := c.checkFonts(lang); failed {
		report.Findings = append(report.Findings, f)
	}

	if f, failed := c.checkBaseGame(); failed {
		report.Findings = append(report.Findings, f)
	}

	if report.Missing() {
		c.logger.Info("🔍 Game data incomplete", "locale", locale, "missing", report.Files())
	} else {
		c.logger.Debug("✅ Game data complete", "locale", locale)
	}
	return report
}

// checkFonts validates the font archive for CJK locales, and for any locale
// once an archive is present so stale leftovers are caught.
func (c *Checker) checkFonts(lang string) (Finding, bool) {
	present, reason := c.present(FontsArchive)
	required := hasAnyPrefix(lang, fontLocales)
	if !required && !present {
		return Finding{}, false
	}
	if !present {
		return Finding{Rule: RuleFonts, File: FontsArchive, Reason: reason}, true
	}
	if !required {
		c.logger.Debug("Validating font archive without a locale requirement", "file", FontsArchive)
	}
	if c.fonts == nil {
		return Finding{}, false
	}

	path := c.store.Path(FontsArchive)
	stale, err := c.fonts.OutOfDate(path)
	if err != nil {
		c.logger.Warn("⚠️ Font archive version check failed, treating as out of date", "path", path, "error", err)
		return Finding{Rule: RuleFonts, File: FontsArchive, Reason: "version check failed"}, true
	}
	if stale {
		return Finding{Rule: RuleFonts, File: FontsArchive, Reason: "out of date"}, true
	}
	return Finding{}, false
}

func (c *Checker) checkBaseGame() (Finding, bool) {
	reason := "absent"
	for _, name := range BaseGameCandidates {
		ok, why := c.present(name)
		if ok {
			return Finding{}, false
		}
		if why != "absent" {
			reason = why
		}
	}
	return Finding{Rule: RuleBaseGame, File: BaseGameCandidates[0], Reason: reason}, true
}

// present treats storage errors as absence and says so in the reason.
func (c *Checker) present(name string) (bool, string) {
	ok, err := c.store.Exists(name)
	if err != nil {
		c.logger.Warn("⚠️ External storage unavailable", "file", name, "error", err)
		return false, "storage unavailable"
	}
	if !ok {
		return false, "absent"
	}
	return true, ""
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
