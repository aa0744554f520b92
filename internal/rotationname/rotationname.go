// Package rotationname recognizes and generates rotated log file names.
//
// A rotated sibling of app.log is named app.<YYYY-MM-DD_HH-MM-SS>[_<n>][.log][.gz].
// This package owns that pattern so the rotating writer and the rotating
// reader agree on it without duplicating the regex.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package rotationname

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const stampLayout = "2006-01-02_15-04-05"

var stampPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2})(?:_(\d+))?$`)

// Base describes the current, un-rotated log file: its directory, the stem
// before the last dot, and the extension (including the leading dot, or
// empty if the base file has none).
type Base struct {
	Dir  string
	Stem string
	Ext  string
}

// SplitBase decomposes a path like "/var/log/app.log" into its rotation base.
func SplitBase(path string) Base {
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return Base{Dir: dir, Stem: stem, Ext: ext}
}

// IsRotatedSibling reports whether name (a bare file name, no directory)
// is a rotated sibling of b: it must begin with "<stem>." and the remainder
// must match YYYY-MM-DD_HH-MM-SS(_n)?(.ext)?(.gz)? exactly.
func (b Base) IsRotatedSibling(name string) bool {
	prefix := b.Stem + "."
	if !strings.HasPrefix(name, prefix) {
		return false
	}
	rest := strings.TrimPrefix(name, prefix)
	rest = strings.TrimSuffix(rest, ".gz")
	rest = strings.TrimSuffix(rest, b.Ext)
	return stampPattern.MatchString(rest)
}

// Stamp formats instant as the rotation timestamp component, with an
// optional collision counter appended (counter <= 0 omits it).
func Stamp(instant time.Time, counter int) string {
	s := instant.Format(stampLayout)
	if counter > 0 {
		s = fmt.Sprintf("%s_%d", s, counter)
	}
	return s
}

// Name builds the rotated file name for instant and counter, e.g.
// "app.2024-01-02_15-04-05.log" or, with counter=1, "app.2024-01-02_15-04-05_1.log".
func (b Base) Name(instant time.Time, counter int) string {
	return b.Stem + "." + Stamp(instant, counter) + b.Ext
}

// Path is Name joined with Dir.
func (b Base) Path(instant time.Time, counter int) string {
	return filepath.Join(b.Dir, b.Name(instant, counter))
}
