// SPDX-License-Identifier: Apache-2.0
// Package logging builds the hclog loggers used by the launcher binaries.
package logging

import (
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// EnvLogLevel overrides the configured log level.
	EnvLogLevel = "GAMEGATE_LOG_LEVEL"
	// EnvJSONLog forces JSON output when set to 1.
	EnvJSONLog = "GAMEGATE_JSON_LOG"
	// EnvLogPath redirects log output to a file (append mode).
	EnvLogPath = "GAMEGATE_LOG_PATH"

	// DefaultLevel is used when neither flags, environment nor config set a level.
	DefaultLevel = "warn"
)

// ParseLevel splits a level specification such as "json:debug" into the
// level name and whether JSON output was requested.
func ParseLevel(spec string) (level string, jsonFormat bool) {
	spec = strings.TrimSpace(spec)
	if !strings.HasPrefix(spec, "json") {
		return spec, false
	}
	if _, lvl, ok := strings.Cut(spec, ":"); ok && lvl != "" {
		return lvl, true
	}
	return "info", true
}

// NewLogger creates a new hclog logger with standard settings
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	level, jsonFormat := ParseLevel(level)
	if os.Getenv(EnvJSONLog) == "1" {
		jsonFormat = true
	}

	if !jsonFormat {
		output = NewPrefixWriter(linePrefix(), output)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z",
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// ResolveLevel picks the effective level: explicit flag, then environment,
// then the configured value, then DefaultLevel.
func ResolveLevel(flagLevel, configLevel string) (level string, source string) {
	if flagLevel != "" {
		return flagLevel, "flag"
	}
	if env := os.Getenv(EnvLogLevel); env != "" {
		return env, EnvLogLevel
	}
	if configLevel != "" {
		return configLevel, "config"
	}
	return DefaultLevel, "default"
}

// OpenOutput returns the writer logs should go to. An empty path or a file
// that cannot be opened falls back to stderr.
func OpenOutput(path string) io.Writer {
	if env := os.Getenv(EnvLogPath); env != "" {
		path = env
	}
	if path == "" {
		return os.Stderr
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return os.Stderr
	}
	return f
}

// ASCII on Windows consoles, emoji elsewhere.
func linePrefix() string {
	if runtime.GOOS == "windows" {
		return "[GATE] "
	}
	return "🎮 "
}
