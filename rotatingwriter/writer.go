// writer.go: the rotating file writer.
//
// The writer implements the chirpy.Writer contract so it drops straight
// into Logger.AddWriter alongside ConsoleWriter. Framing, the two flush
// strategies, lock discipline, rotation and retention all live here;
// internal/bufferpool supplies the scratch buffers per-write formatting
// reuses.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package rotatingwriter

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chirpy-log/chirpy"
	"github.com/chirpy-log/chirpy/internal/bufferpool"
	"github.com/chirpy-log/chirpy/internal/rotationname"
)

// errorSeverity is the threshold at or above which Buffered escalates to an
// immediate ordered flush instead of batching.
var errorSeverity = chirpy.ErrorLevel.Severity

// Writer is a durable, rotating, retained append-only file sink.
type Writer struct {
	opts Options
	base rotationname.Base

	mu           sync.Mutex
	file         *os.File
	currentSize  int64
	lastRotation time.Time
	pathErr      error
	resolvedPath string

	pending [][]byte // Buffered mode queue, drained by the ticker or on escalation

	closed     bool
	closeOnce  sync.Once
	stopTicker chan struct{}
	tickerDone chan struct{}
	compressWG sync.WaitGroup
}

// New constructs a Writer. The file is opened lazily on first Write; a
// deferred BasePath may stay pending across early writes, which are queued
// until it resolves.
func New(opts Options) *Writer {
	w := &Writer{opts: opts}
	if path, err := opts.BasePath(); err == nil {
		w.base = rotationname.SplitBase(path)
		w.resolvedPath = path
	}
	if opts.Strategy == Buffered {
		w.stopTicker = make(chan struct{})
		w.tickerDone = make(chan struct{})
		go w.runTicker()
	}
	return w
}

func (w *Writer) RequiresCallerInfo() bool { return w.opts.Formatter.RequiresCallerInfo() }

// Write formats rec and either appends it synchronously or enqueues it,
// per the configured FlushStrategy.
func (w *Writer) Write(rec *chirpy.Record) error {
	buf := bufferpool.Get()
	defer bufferpool.Put(buf)

	formatted, err := w.opts.Formatter.Format(rec, buf.Bytes())
	if err != nil {
		chirpy.GetErrorHandler()(chirpy.WrapError(chirpy.ErrFormatter, err, "rotating writer: format failed"))
		return nil
	}
	line := append(append([]byte{}, formatted...), w.opts.Formatter.RecordSeparator()...)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	if err := w.ensureOpenLocked(); err != nil {
		if errors.Is(err, ErrPathPending) {
			w.pending = append(w.pending, line)
			return nil
		}
		return err
	}

	if w.opts.Strategy == Buffered && rec.Level.Severity < errorSeverity {
		w.pending = append(w.pending, line)
		return nil
	}

	if len(w.pending) > 0 {
		// Drain queued records first, in call order: error-severity
		// escalation and path-resolution recovery both preserve chronology.
		for _, p := range w.pending {
			if err := w.appendLocked(rec.Timestamp, p); err != nil {
				return err
			}
		}
		w.pending = w.pending[:0]
	}

	if err := w.appendLocked(rec.Timestamp, line); err != nil {
		return err
	}
	return w.fsyncLocked()
}

// appendLocked ensures a live file handle, runs the rotation decision,
// and appends line. Caller holds w.mu.
func (w *Writer) appendLocked(ts time.Time, line []byte) error {
	if err := w.ensureOpenLocked(); err != nil {
		return err
	}
	// Seed the rotation baseline from the first record's own timestamp
	// rather than the wall clock New/ensureOpenLocked ran on, so records
	// logged through an injected Clock don't trigger a spurious rotation
	// on the very first write just because "now" and the record's clock
	// started in different buckets.
	if w.lastRotation.IsZero() {
		w.lastRotation = ts
	}
	if w.needsRotation(ts, int64(len(line))) {
		if err := w.rotateLocked(ts); err != nil {
			chirpy.GetErrorHandler()(chirpy.WrapError(chirpy.ErrRotation, err, "rotating writer: rotation failed"))
		}
	}
	n, err := w.file.Write(line)
	w.currentSize += int64(n)
	if err != nil {
		chirpy.GetErrorHandler()(chirpy.WrapError(chirpy.ErrWrite, err, "rotating writer: append failed"))
	}
	return nil
}

func (w *Writer) fsyncLocked() error {
	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

// ensureOpenLocked resolves a pending path, recovers from an externally
// deleted current file, and opens the handle if not already open.
func (w *Writer) ensureOpenLocked() error {
	if w.resolvedPath == "" {
		path, err := w.opts.BasePath()
		if err != nil {
			if errors.Is(err, ErrPathPending) {
				return err
			}
			w.pathErr = chirpy.WrapError(chirpy.ErrPathResolution, err, "rotating writer: path resolution failed")
			return w.pathErr
		}
		w.resolvedPath = path
		w.base = rotationname.SplitBase(path)
	}

	if w.file != nil {
		if _, err := os.Stat(w.resolvedPath); err != nil {
			// Externally deleted or truncated away the inode: reopen fresh.
			w.file.Close()
			w.file = nil
		}
	}

	if w.file == nil {
		if err := os.MkdirAll(filepath.Dir(w.resolvedPath), 0o755); err != nil {
			return chirpy.WrapError(chirpy.ErrWrite, err, "rotating writer: mkdir failed")
		}
		f, err := os.OpenFile(w.resolvedPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return chirpy.WrapError(chirpy.ErrWrite, err, "rotating writer: open failed")
		}
		w.file = f
		if info, err := f.Stat(); err == nil {
			w.currentSize = info.Size()
		}
	}
	return nil
}

func (w *Writer) needsRotation(ts time.Time, nextLen int64) bool {
	if w.opts.MaxFileSize > 0 && w.currentSize+nextLen > w.opts.MaxFileSize {
		return true
	}
	// A backward wall-clock jump (NTP correction, DST fold) must not
	// trigger a spurious rotation: only a forward-moving timestamp into a
	// new bucket counts.
	if w.opts.RotationUnit != RotationNone && ts.After(w.lastRotation) && !sameBucket(w.lastRotation, ts, w.opts.RotationUnit) {
		return true
	}
	return false
}

// Flush drains any Buffered-mode queue and fsyncs the current file.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

func (w *Writer) flushLocked() error {
	if w.closed {
		return nil
	}
	if len(w.pending) > 0 {
		if err := w.ensureOpenLocked(); err != nil {
			if errors.Is(err, ErrPathPending) {
				return nil
			}
			return err
		}
		for _, p := range w.pending {
			if err := w.appendLocked(time.Now(), p); err != nil {
				return err
			}
		}
		w.pending = w.pending[:0]
	}
	return w.fsyncLocked()
}

// ForceRotate flushes any queued records to the current file first, so
// they land in the pre-rotation file, then rotates regardless of the
// size/time thresholds.
func (w *Writer) ForceRotate() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.flushLocked(); err != nil {
		return err
	}
	if err := w.ensureOpenLocked(); err != nil {
		return err
	}
	return w.rotateLocked(time.Now())
}

// ClearLogs waits for in-flight compressions, drops queued records,
// closes the handle and deletes the current file plus every rotated or
// compressed sibling matching the recognition pattern.
func (w *Writer) ClearLogs() error {
	w.mu.Lock()
	w.pending = nil
	if w.file != nil {
		w.file.Close()
		w.file = nil
	}
	dir, base := w.base.Dir, w.base
	path := w.resolvedPath
	w.mu.Unlock()

	w.compressWG.Wait()

	if path != "" {
		os.Remove(path)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		if base.IsRotatedSibling(e.Name()) {
			os.Remove(filepath.Join(dir, e.Name()))
		}
	}
	return nil
}

func (w *Writer) runTicker() {
	defer close(w.tickerDone)
	t := time.NewTicker(w.opts.flushInterval())
	defer t.Stop()
	for {
		select {
		case <-t.C:
			w.Flush()
		case <-w.stopTicker:
			return
		}
	}
}

// Close is terminal: it flushes, waits for in-flight compressions, and
// releases the file handle. Writes after Close are dropped. Safe to call
// more than once.
func (w *Writer) Close() error {
	var err error
	w.closeOnce.Do(func() {
		if w.opts.Strategy == Buffered {
			close(w.stopTicker)
			<-w.tickerDone
		}

		w.mu.Lock()
		w.flushLocked()
		w.closed = true
		if w.file != nil {
			err = w.file.Close()
			w.file = nil
		}
		w.mu.Unlock()

		w.compressWG.Wait()
	})
	return err
}
