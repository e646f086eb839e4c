// SPDX-License-Identifier: Apache-2.0
// Package config holds launcher settings. Values come from built-in
// defaults, then the ini file, then GAMEGATE_* environment variables; the
// CLI applies its flags last.
package config

import "github.com/provide-io/gamegate/internal/engine"

// Engine launch modes.
const (
	ModeExec  = engine.ModeExec
	ModeSpawn = engine.ModeSpawn
)

// Tri-state switches used by [surface] and [accessibility].
const (
	SwitchAuto = "auto"
	SwitchOn   = "on"
	SwitchOff  = "off"
)

// Config is the merged launcher configuration.
type Config struct {
	Paths         PathsConfig
	Engine        EngineConfig
	Acquire       AcquireConfig
	Locale        LocaleConfig
	Assets        AssetsConfig
	Migrate       MigrateConfig
	Surface       SurfaceConfig
	Accessibility AccessibilityConfig
	Log           LogConfig

	// Source is the ini file that was read, empty when none was found.
	Source string
}

type PathsConfig struct {
	ExternalRoot string `ini:"external_root"`
	LegacyRoot   string `ini:"legacy_root"`
}

type EngineConfig struct {
	Binary    string `ini:"binary"`
	Mode      string `ini:"mode"`
	Verbose   bool   `ini:"verbose"`
	ExtraArgs string `ini:"extra_args"`
}

type AcquireConfig struct {
	Command     string `ini:"command"`
	MaxHandoffs int    `ini:"max_handoffs"`
}

type LocaleConfig struct {
	Override string `ini:"override"`
}

type AssetsConfig struct {
	FontsVersion string `ini:"fonts_version"`
}

type MigrateConfig struct {
	Checksum string `ini:"checksum"`
}

type SurfaceConfig struct {
	Workaround     string `ini:"workaround"`
	MinHostVersion int    `ini:"min_host_version"`
	HostVersion    int    `ini:"host_version"`
}

type AccessibilityConfig struct {
	ScreenReader string `ini:"screen_reader"`
	SpeakCommand string `ini:"speak_command"`
}

type LogConfig struct {
	Level string `ini:"level"`
	Path  string `ini:"path"`
	JSON  bool   `ini:"json"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Binary:  "devilutionx",
			Mode:    ModeExec,
			Verbose: engine.DebugBuild,
		},
		Acquire: AcquireConfig{
			MaxHandoffs: 1,
		},
		Assets: AssetsConfig{
			FontsVersion: "1",
		},
		Migrate: MigrateConfig{
			Checksum: "blake2b",
		},
		Surface: SurfaceConfig{
			Workaround:     SwitchAuto,
			MinHostVersion: 25,
		},
		Accessibility: AccessibilityConfig{
			ScreenReader: SwitchAuto,
		},
	}
}
