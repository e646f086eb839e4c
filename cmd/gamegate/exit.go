// SPDX-License-Identifier: Apache-2.0
package main

import (
	"errors"

	gerrors "github.com/provide-io/gamegate/pkg/errors"
)

// Exit codes. A spawned engine's own exit code is passed through unchanged.
const (
	ExitSuccess          = 0
	ExitFailure          = 1
	ExitPanic            = 101
	ExitConfigError      = 102
	ExitEngineError      = 104
	ExitInvalidArgs      = 105
	ExitIOError          = 106
	ExitAcquisitionError = 107
)

// codeError carries an exit code through cobra without printing anything extra.
type codeError struct {
	code int
	err  error
}

func (e *codeError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *codeError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &codeError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ce *codeError
	if errors.As(err, &ce) {
		return ce.code
	}
	switch {
	case errors.Is(err, gerrors.ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, gerrors.ErrEngineNotFound), errors.Is(err, gerrors.ErrEngineFailed):
		return ExitEngineError
	case errors.Is(err, gerrors.ErrAcquisitionFailed):
		return ExitAcquisitionError
	case errors.Is(err, gerrors.ErrStorageUnavailable),
		errors.Is(err, gerrors.ErrInvalidArchive),
		errors.Is(err, gerrors.ErrChecksumMismatch):
		return ExitIOError
	case errors.Is(err, errInvalidArgs):
		return ExitInvalidArgs
	default:
		return ExitFailure
	}
}
