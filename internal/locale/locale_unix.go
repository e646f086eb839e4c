// SPDX-License-Identifier: Apache-2.0
//go:build !windows && !android

package locale

import "os"

func platformLocale() string {
	return fromEnv(os.Getenv)
}
