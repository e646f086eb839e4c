// SPDX-License-Identifier: Apache-2.0
package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"ko_KR.UTF-8", "ko_KR"},
		{"ko-KR", "ko_KR"},
		{"pl_PL@euro", "pl_PL"},
		{"ru", "ru"},
		{"zh-Hans-CN", "zh_CN"},
		{"ja_JP", "ja_JP"},
		{"en_US.utf8", "en_US"},
		{"  de-DE ", "de_DE"},
		{"C", ""},
		{"POSIX", ""},
		{"C.UTF-8", ""},
		{"", ""},
		{"not a locale!", "not a locale!"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestDetectorOrder(t *testing.T) {
	env := map[string]string{}
	d := NewDetector("", nil)
	d.getenv = func(k string) string { return env[k] }
	d.platform = func() string { return "en_US.UTF-8" }

	assert.Equal(t, "en_US", d.Current())

	env[EnvLocale] = "ru_RU"
	assert.Equal(t, "ru_RU", d.Current(), "environment re-read on every call")

	d.override = "pl"
	assert.Equal(t, "pl", d.Current())
}

func TestFromEnv(t *testing.T) {
	env := map[string]string{"LANG": "en_GB.UTF-8", "LC_MESSAGES": "fr_FR.UTF-8"}
	getenv := func(k string) string { return env[k] }
	assert.Equal(t, "fr_FR.UTF-8", fromEnv(getenv))

	env["LC_ALL"] = "ja_JP.UTF-8"
	assert.Equal(t, "ja_JP.UTF-8", fromEnv(getenv))

	assert.Equal(t, "", fromEnv(func(string) string { return "" }))
}
