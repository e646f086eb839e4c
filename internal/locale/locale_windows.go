// SPDX-License-Identifier: Apache-2.0
//go:build windows

package locale

import (
	"os"

	"golang.org/x/sys/windows"
)

func platformLocale() string {
	if langs, err := windows.GetUserPreferredUILanguages(windows.MUI_LANGUAGE_NAME); err == nil && len(langs) > 0 {
		return langs[0]
	}
	if langs, err := windows.GetSystemPreferredUILanguages(windows.MUI_LANGUAGE_NAME); err == nil && len(langs) > 0 {
		return langs[0]
	}
	return fromEnv(os.Getenv)
}
