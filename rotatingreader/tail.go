// tail.go: event-driven follow with a polling fallback. fsnotify drives
// the fast path; a ~1s poll takes over when the watch cannot be installed
// (platforms without inotify/kqueue, network mounts) and runs alongside it
// as a safety net even when it can.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package rotatingreader

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const pollInterval = time.Second

// Tail first emits the Read(last) snapshot, then continues emitting new
// records from the current file as they are appended. It returns a
// channel of lines and stops cleanly when ctx is canceled.
func (r *Reader) Tail(ctx context.Context, last *int) (<-chan string, error) {
	out := make(chan string)

	snapshot, err := r.Read(last)
	if err != nil {
		return nil, err
	}

	// New records are followed from the current file's size as of the
	// snapshot, so nothing already emitted above is delivered twice.
	var startOffset int64
	if info, err := os.Stat(r.path); err == nil {
		startOffset = info.Size()
	}

	go func() {
		defer close(out)
		for _, line := range snapshot {
			select {
			case out <- line:
			case <-ctx.Done():
				return
			}
		}
		r.follow(ctx, out, startOffset)
	}()

	return out, nil
}

// follow streams new records appended to the current file after the
// snapshot, detecting truncation/rotation by resetting the offset when
// the file shrinks.
func (r *Reader) follow(ctx context.Context, out chan<- string, offset int64) {
	var partial strings.Builder

	emit := func() {
		f, err := os.Open(r.path)
		if err != nil {
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return
		}
		if info.Size() < offset {
			offset = 0
			partial.Reset()
		}
		if info.Size() == offset {
			return
		}
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return
		}
		br := bufio.NewReader(f)
		for {
			chunk, err := br.ReadString(r.separator[len(r.separator)-1])
			if chunk != "" {
				partial.WriteString(chunk)
				offset += int64(len(chunk))
				if strings.HasSuffix(partial.String(), r.separator) {
					line := strings.TrimSuffix(partial.String(), r.separator)
					partial.Reset()
					select {
					case out <- line:
					case <-ctx.Done():
						return
					}
				}
			}
			if err != nil {
				break
			}
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		r.pollLoop(ctx, emit)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(r.base.Dir); err != nil {
		r.pollLoop(ctx, emit)
		return
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Name == r.path && (ev.Op&(fsnotify.Write|fsnotify.Create) != 0) {
				emit()
			}
		case <-watcher.Errors:
			// Fall through to the ticker; a watch error doesn't stop tailing.
		case <-ticker.C:
			emit()
		}
	}
}

// pollLoop is the fallback used when filesystem notifications are
// unavailable.
func (r *Reader) pollLoop(ctx context.Context, emit func()) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			emit()
		}
	}
}
