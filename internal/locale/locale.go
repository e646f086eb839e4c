// SPDX-License-Identifier: Apache-2.0
// Package locale reads the host locale and normalizes it to the
// language_REGION form the asset rules match on.
package locale

import (
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/text/language"
)

// EnvLocale overrides the detected locale.
const EnvLocale = "GAMEGATE_LOCALE"

// Detector resolves the current locale. It keeps no cache; every call
// reads the environment again.
type Detector struct {
	override string
	getenv   func(string) string
	platform func() string
	logger   hclog.Logger
}

// NewDetector returns a Detector. A non-empty override wins over everything.
func NewDetector(override string, logger hclog.Logger) *Detector {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Detector{
		override: override,
		getenv:   os.Getenv,
		platform: platformLocale,
		logger:   logger.Named("locale"),
	}
}

// Current returns the normalized locale, e.g. "ko_KR", or "" when unknown.
func (d *Detector) Current() string {
	raw, source := d.raw()
	normalized := Normalize(raw)
	d.logger.Trace("Locale resolved", "raw", raw, "locale", normalized, "source", source)
	return normalized
}

func (d *Detector) raw() (string, string) {
	if v := strings.TrimSpace(d.override); v != "" {
		return v, "config"
	}
	if v := strings.TrimSpace(d.getenv(EnvLocale)); v != "" {
		return v, EnvLocale
	}
	return d.platform(), "platform"
}

// Normalize turns POSIX, BCP 47 or Windows locale names into lang or
// lang_REGION. The region is kept only when it was given explicitly.
// Values that do not parse are returned trimmed.
func Normalize(raw string) string {
	v := strings.TrimSpace(raw)
	if i := strings.IndexAny(v, ".@"); i >= 0 {
		v = v[:i]
	}
	if v == "" || v == "C" || v == "POSIX" {
		return ""
	}

	tag, err := language.Parse(strings.ReplaceAll(v, "_", "-"))
	if err != nil {
		return v
	}
	base, _ := tag.Base()
	out := base.String()
	if region, conf := tag.Region(); conf == language.Exact {
		out += "_" + region.String()
	}
	return out
}

// fromEnv is the POSIX lookup order.
func fromEnv(getenv func(string) string) string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
	}
	return ""
}
