// SPDX-License-Identifier: Apache-2.0
//go:build android

package locale

import (
	"os"

	"github.com/provide-io/gamegate/internal/host/mobile"
)

func platformLocale() string {
	for _, prop := range []string{"persist.sys.locale", "ro.product.locale"} {
		if v, err := mobile.Getprop(prop); err == nil && v != "" {
			return v
		}
	}
	return fromEnv(os.Getenv)
}
