// root.go: the process-wide replaceable root logger, package-level logging
// entrypoints, and the library-adoption convenience constructor.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package chirpy

import "sync/atomic"

var rootSlot atomic.Pointer[Logger]

func init() {
	rootSlot.Store(NewRoot())
}

// Root returns the current process-wide root logger.
func Root() *Logger {
	return rootSlot.Load()
}

// SetRoot replaces the process-wide root. Only safe before other goroutines
// begin logging through it; callers must not race a SetRoot against
// concurrent use of Root().
func SetRoot(l *Logger) {
	rootSlot.Store(l)
}

// NewLibraryLogger returns a logger meant for library-owned code: it
// defaults min_level to Warning and has no writers of its own. An
// application later calls root.Adopt(lib) to fold its output into the
// app's configured writers without the library depending on the app.
func NewLibraryLogger(name string) *Logger {
	l := NewRoot()
	l.name = name
	l.minLevel = NewAtomicLevel(WarningLevel)
	return l
}

// Package-level sugar that always dispatches through Root(), with the same
// lazy caller-capture gating as any other logger call.
func Trace(msg string, data ...Field)    { Root().Trace(msg, data...) }
func Debug(msg string, data ...Field)    { Root().Debug(msg, data...) }
func Info(msg string, data ...Field)     { Root().Info(msg, data...) }
func Notice(msg string, data ...Field)   { Root().Notice(msg, data...) }
func Success(msg string, data ...Field)  { Root().Success(msg, data...) }
func Warning(msg string, data ...Field)  { Root().Warning(msg, data...) }
func Error(msg string, err error, data ...Field) { Root().Error(msg, err, data...) }
func Critical(msg string, data ...Field) { Root().Critical(msg, data...) }
func Wtf(msg string, data ...Field)      { Root().Wtf(msg, data...) }

// Sync flushes every writer owned by Root().
func Sync() error { return Root().Sync() }
