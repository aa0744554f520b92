// options.go: configuration for the rotating file writer.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package rotatingwriter

import (
	"errors"
	"time"

	"github.com/chirpy-log/chirpy"
)

// RotationUnit buckets wall-clock time for time-based rotation. Two
// instants rotate when they fall in different buckets of this unit.
type RotationUnit int

const (
	RotationNone RotationUnit = iota
	RotationHour
	RotationDay
	RotationISOWeek
	RotationMonth
)

// FlushStrategy selects between crash-safe synchronous writes and
// batched, timer-drained writes.
type FlushStrategy int

const (
	// Synchronous performs format, append and fsync inside the write call.
	Synchronous FlushStrategy = iota
	// Buffered enqueues and drains on a periodic timer, escalating to an
	// immediate ordered flush when a record at or above error severity
	// arrives.
	Buffered
)

// PathResolver yields the base path for the current (non-rotated) file.
// A static path is wrapped with StaticPath; a deferred one may do I/O or
// discovery work. Returning ErrPathPending (possibly wrapped) queues writes
// until a later call resolves; any other error is stored and surfaced by
// every subsequent Write until a later call succeeds.
type PathResolver func() (string, error)

// ErrPathPending is returned (or wrapped) by a PathResolver whose deferred
// path computation has not completed yet. Writes arriving while the path is
// pending are queued and drained once resolution succeeds.
var ErrPathPending = errors.New("rotating writer: path resolution pending")

// StaticPath wraps a fixed path as a PathResolver.
func StaticPath(path string) PathResolver {
	return func() (string, error) { return path, nil }
}

// Options configures a Writer. Formatter and BasePath are required; all
// other fields have zero-value-is-disabled semantics.
type Options struct {
	BasePath  PathResolver
	Formatter chirpy.Formatter

	// MaxFileSize, when > 0, triggers rotation once the current file would
	// exceed it.
	MaxFileSize int64
	// RotationUnit, when not RotationNone, triggers rotation when the
	// current record's timestamp falls in a different bucket than the
	// last rotation instant.
	RotationUnit RotationUnit

	// MaxFileCount, when > 0, caps the file set at this many files counting
	// the current one, so at most MaxFileCount-1 rotated files are retained.
	MaxFileCount int
	// MaxAge, when > 0, deletes rotated files older than this.
	MaxAge time.Duration
	// Compress gzips a file immediately after it is rotated out.
	Compress bool

	Strategy FlushStrategy
	// FlushInterval is the Buffered drain period; defaults to 1s.
	FlushInterval time.Duration
}

func (o Options) flushInterval() time.Duration {
	if o.FlushInterval > 0 {
		return o.FlushInterval
	}
	return time.Second
}

func bucketFor(t time.Time, unit RotationUnit) (int, int, int, int) {
	switch unit {
	case RotationHour:
		return t.Year(), t.YearDay(), t.Hour(), 0
	case RotationDay:
		return t.Year(), t.YearDay(), 0, 0
	case RotationISOWeek:
		y, w := t.ISOWeek()
		return y, w, -1, 0
	case RotationMonth:
		return t.Year(), int(t.Month()), -2, 0
	default:
		return 0, 0, 0, 0
	}
}

func sameBucket(a, b time.Time, unit RotationUnit) bool {
	if unit == RotationNone {
		return true
	}
	ay, aw, ah, _ := bucketFor(a, unit)
	by, bw, bh, _ := bucketFor(b, unit)
	return ay == by && aw == bw && ah == bh
}
