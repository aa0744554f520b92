// caller.go: lazy caller-site resolution from a captured backtrace token.
// Program counters are captured cheaply at the call site; the expensive
// symbol walk is deferred until something actually needs
// (file, line, method, class).
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package chirpy

import (
	"runtime"
	"strings"
	"sync"
)

// CallerInfo is the resolved result of walking a CallerToken.
type CallerInfo struct {
	File   string
	Line   int
	Method string
	Class  string // empty when the function is not a method
}

// pkgPrefix identifies frames belonging to this library itself so they are
// skipped when hunting for the first foreign frame.
const pkgPrefix = "github.com/chirpy-log/chirpy."

var pcsPool = sync.Pool{
	New: func() any {
		s := make([]uintptr, 32)
		return &s
	},
}

// captureCaller records program counters for the current goroutine's stack,
// skip frames up from its own caller. It does not resolve symbols.
func captureCaller(skip int) *CallerToken {
	buf := pcsPool.Get().(*[]uintptr)
	n := runtime.Callers(skip+2, *buf)
	pcs := make([]uintptr, n)
	copy(pcs, (*buf)[:n])
	pcsPool.Put(buf)
	return &CallerToken{pcs: pcs}
}

// resolve walks frames outermost-inward, skipping frames owned by this
// package, and parses the first foreign frame. The result is cached on the
// token so repeated access is O(1).
func (t *CallerToken) resolve() CallerInfo {
	if t == nil {
		return CallerInfo{}
	}
	if t.resolved {
		return t.info
	}
	frames := runtime.CallersFrames(t.pcs)
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, pkgPrefix) {
			t.info = parseFrame(frame)
			break
		}
		if !more {
			break
		}
	}
	t.resolved = true
	return t.info
}

// parseFrame extracts {file, line, method, class} from a runtime.Frame.
// Class extraction follows the Go convention "pkg.(*Receiver).Method" or
// "pkg.Receiver.Method"; anonymous-closure suffixes like ".func1" are
// stripped from the method name.
func parseFrame(frame runtime.Frame) CallerInfo {
	info := CallerInfo{File: frame.File, Line: frame.Line}

	full := frame.Function
	if idx := strings.LastIndex(full, "/"); idx >= 0 {
		full = full[idx+1:]
	}
	parts := strings.Split(full, ".")
	for len(parts) > 2 {
		// Drop closure markers like "func1", "func1.1".
		last := parts[len(parts)-1]
		if strings.HasPrefix(last, "func") || strings.Trim(last, "0123456789") == "" {
			parts = parts[:len(parts)-1]
			continue
		}
		break
	}

	switch len(parts) {
	case 1:
		info.Method = parts[0]
	case 2:
		info.Method = parts[1]
	default:
		recv := parts[len(parts)-2]
		recv = strings.TrimPrefix(recv, "(*")
		recv = strings.TrimSuffix(recv, ")")
		info.Class = recv
		info.Method = parts[len(parts)-1]
	}
	return info
}
