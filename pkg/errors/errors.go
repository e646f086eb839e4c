// SPDX-License-Identifier: Apache-2.0
// Package errors defines the sentinel errors shared by the launcher packages.
package errors

import "errors"

var (
	// Storage errors 💾
	ErrStorageUnavailable = errors.New("❌ external storage unavailable")
	ErrLegacyEnumeration  = errors.New("❌ legacy directory could not be listed")
	ErrChecksumMismatch   = errors.New("❌ checksum mismatch")

	// Archive errors 📦
	ErrInvalidArchive         = errors.New("❌ invalid MPQ archive")
	ErrFileNotFound           = errors.New("❌ file not found in archive")
	ErrUnsupportedCompression = errors.New("❌ unsupported compression")
	ErrVersionCheck           = errors.New("❌ archive version check failed")

	// Launch errors 🚀
	ErrEngineNotFound    = errors.New("❌ engine binary not found")
	ErrEngineFailed      = errors.New("❌ engine execution failed")
	ErrAcquisitionFailed = errors.New("❌ data acquisition failed")
	ErrInstanceLocked    = errors.New("❌ another launcher instance is running")

	// Host errors 🔌
	ErrSpeechUnavailable = errors.New("❌ speech output unavailable")
	ErrInvalidConfig     = errors.New("❌ invalid configuration")
)
