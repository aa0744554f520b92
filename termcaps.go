// termcaps.go: terminal color-support descriptor and the environment/TTY
// detection that derives one.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package chirpy

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ColorSupport is the renderer's only input for deciding what ANSI it may
// emit. Detection (env vars, TTY probe) happens outside the renderer; the
// renderer itself only ever looks at this value.
type ColorSupport int

const (
	ColorNone ColorSupport = iota
	Color16
	Color256
	ColorTruecolor
)

// TerminalCapabilities is the descriptor passed into formatters. Tests
// construct one directly to pin rendering output.
type TerminalCapabilities struct {
	ColorSupport ColorSupport
}

// DetectCapabilities derives a descriptor from the environment: NO_COLOR
// forces none, FORCE_COLOR forces at least 16, COLORTERM=truecolor/24bit
// implies truecolor, and a non-TTY sink defaults to none unless overridden
// by the two env vars above.
func DetectCapabilities(out *os.File) TerminalCapabilities {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return TerminalCapabilities{ColorSupport: ColorNone}
	}

	ct := strings.ToLower(os.Getenv("COLORTERM"))
	if ct == "truecolor" || ct == "24bit" {
		return TerminalCapabilities{ColorSupport: ColorTruecolor}
	}

	isTTY := out != nil && isatty.IsTerminal(out.Fd())

	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		if isTTY {
			return TerminalCapabilities{ColorSupport: Color256}
		}
		return TerminalCapabilities{ColorSupport: Color16}
	}

	if !isTTY {
		return TerminalCapabilities{ColorSupport: ColorNone}
	}
	return TerminalCapabilities{ColorSupport: Color256}
}
