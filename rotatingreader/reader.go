// reader.go: enumerate and chronologically read a rotated file set. Pairs
// with rotatingwriter: both sides agree on file naming via
// internal/rotationname.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package rotatingreader

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chirpy-log/chirpy/internal/rotationname"
)

// Reader enumerates and reads the rotated file set belonging to a single
// base log path (e.g. "/var/log/app.log").
type Reader struct {
	base      rotationname.Base
	path      string
	separator string
}

// New returns a Reader for the given base file path. separator must match
// the writer's formatter record separator (default "\n" if empty).
func New(path, separator string) *Reader {
	if separator == "" {
		separator = "\n"
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &Reader{base: rotationname.SplitBase(path), path: path, separator: separator}
}

type fileEntry struct {
	path     string
	modified int64
}

// ListFiles returns absolute paths sorted oldest to newest by modified
// time: rotated siblings, plus the current file when includeCurrent.
func (r *Reader) ListFiles(includeCurrent bool) ([]string, error) {
	entries, err := os.ReadDir(r.base.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []fileEntry
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !r.base.IsRotatedSibling(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, fileEntry{path: filepath.Join(r.base.Dir, e.Name()), modified: info.ModTime().UnixNano()})
	}

	if includeCurrent {
		if info, err := os.Stat(r.path); err == nil {
			files = append(files, fileEntry{path: r.path, modified: info.ModTime().UnixNano()})
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].modified < files[j].modified })

	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.path
	}
	return out, nil
}

// readLines splits a file's contents on the configured separator,
// transparently decompressing .gz contents in memory.
func (r *Reader) readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rc io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		rc = gz
	}

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	text := string(data)
	text = strings.TrimSuffix(text, r.separator)
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, r.separator), nil
}

// Read streams records chronologically across the file set. When last is
// non-nil, only the final *last records are returned, computed by walking
// files newest-first accumulating tails, then emitted oldest first.
func (r *Reader) Read(last *int) ([]string, error) {
	files, err := r.ListFiles(true)
	if err != nil {
		return nil, err
	}

	if last == nil {
		var out []string
		for _, path := range files {
			lines, err := r.readLines(path)
			if err != nil {
				continue
			}
			out = append(out, lines...)
		}
		return out, nil
	}

	want := *last
	var collected [][]string
	for i := len(files) - 1; i >= 0 && want > 0; i-- {
		lines, err := r.readLines(files[i])
		if err != nil {
			continue
		}
		if len(lines) > want {
			lines = lines[len(lines)-want:]
		}
		collected = append(collected, lines)
		want -= len(lines)
	}

	var out []string
	for i := len(collected) - 1; i >= 0; i-- {
		out = append(out, collected[i]...)
	}
	return out, nil
}
