// SPDX-License-Identifier: Apache-2.0
//go:build debug

package engine

// DebugBuild is true when built with -tags debug.
const DebugBuild = true
