// rotate.go: the atomic rotation sequence and retention sweep.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package rotatingwriter

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/chirpy-log/chirpy"
)

// maxCollisionAttempts bounds the rotated-name collision counter: beyond
// this many same-second rotations, rotation fails explicitly instead of
// growing the counter without limit.
const maxCollisionAttempts = 10000

// rotateLocked executes the rotation sequence. Caller holds w.mu and has
// already ensured w.file is open.
func (w *Writer) rotateLocked(triggering time.Time) error {
	rotatedFrom := w.lastRotation
	if rotatedFrom.IsZero() {
		rotatedFrom = triggering
	}

	if w.file != nil {
		w.file.Sync()
		w.file.Close()
		w.file = nil
	}

	target := w.base.Path(rotatedFrom, 0)
	counter := 1
	for {
		if _, err := os.Stat(target); os.IsNotExist(err) {
			break
		}
		if counter > maxCollisionAttempts {
			// Clamp with an explicit failure rather than spin toward a
			// platform filename limit or overwrite an existing file.
			if w.file == nil {
				if f, reopenErr := os.OpenFile(w.resolvedPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); reopenErr == nil {
					w.file = f
				}
			}
			return chirpy.NewError(chirpy.ErrRotation, "rotation collision counter exceeded maximum attempts")
		}
		target = w.base.Path(rotatedFrom, counter)
		counter++
	}
	if err := os.Rename(w.resolvedPath, target); err != nil && !os.IsNotExist(err) {
		return err
	}

	if w.opts.Compress {
		w.compressWG.Add(1)
		go w.compress(target)
	}

	w.runRetentionLocked()

	w.currentSize = 0
	// The rotation instant is monotonically non-decreasing: a backward
	// wall-clock jump must not drag it backward and cause further
	// erroneous rotations on subsequent forward-moving timestamps.
	if triggering.After(w.lastRotation) {
		w.lastRotation = triggering
	}

	f, err := os.OpenFile(w.resolvedPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	w.file = f
	return nil
}

// compress gzips path in place and removes the uncompressed original,
// running off the foreground write path.
func (w *Writer) compress(path string) {
	defer w.compressWG.Done()

	in, err := os.Open(path)
	if err != nil {
		chirpy.GetErrorHandler()(chirpy.WrapError(chirpy.ErrRotation, err, "rotating writer: compress open failed"))
		return
	}
	defer in.Close()

	out, err := os.Create(path + ".gz")
	if err != nil {
		chirpy.GetErrorHandler()(chirpy.WrapError(chirpy.ErrRotation, err, "rotating writer: compress create failed"))
		return
	}
	gz := gzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		chirpy.GetErrorHandler()(chirpy.WrapError(chirpy.ErrRotation, err, "rotating writer: compress write failed"))
		gz.Close()
		out.Close()
		return
	}
	if err := gz.Close(); err != nil {
		chirpy.GetErrorHandler()(chirpy.WrapError(chirpy.ErrRotation, err, "rotating writer: compress flush failed"))
	}
	out.Close()
	os.Remove(path)
}

type rotatedFile struct {
	path     string
	modified time.Time
}

// runRetentionLocked enumerates rotated siblings (excluding the current
// file) and deletes whatever exceeds MaxFileCount or MaxAge, swallowing
// per-file errors through the writer's error handler.
func (w *Writer) runRetentionLocked() {
	if w.opts.MaxFileCount <= 0 && w.opts.MaxAge <= 0 {
		return
	}

	entries, err := os.ReadDir(w.base.Dir)
	if err != nil {
		return
	}

	var files []rotatedFile
	for _, e := range entries {
		if e.IsDir() || !w.base.IsRotatedSibling(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, rotatedFile{path: filepath.Join(w.base.Dir, e.Name()), modified: info.ModTime()})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].modified.After(files[j].modified) })

	// MaxFileCount counts the current file too, so at most MaxFileCount-1
	// rotated files survive.
	toDelete := map[string]bool{}
	if w.opts.MaxFileCount > 0 {
		keep := w.opts.MaxFileCount - 1
		if keep < 0 {
			keep = 0
		}
		if len(files) > keep {
			for _, f := range files[keep:] {
				toDelete[f.path] = true
			}
		}
	}
	if w.opts.MaxAge > 0 {
		cutoff := time.Now().Add(-w.opts.MaxAge)
		for _, f := range files {
			if f.modified.Before(cutoff) {
				toDelete[f.path] = true
			}
		}
	}

	for path := range toDelete {
		if err := os.Remove(path); err != nil {
			chirpy.GetErrorHandler()(chirpy.WrapError(chirpy.ErrRotation, err, "rotating writer: retention delete failed"))
		}
	}
}
