// formatter_compact.go: Compact, a single line of
// "HH:MM:SS.mmm <class@hash> <message> (k: v, ...)" with error/stack on
// following lines.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package chirpy

import (
	"fmt"
	"strings"

	"github.com/chirpy-log/chirpy/span"
)

// NewCompactFormatter builds the single-line Compact formatter. td selects
// the time-display mode.
func NewCompactFormatter(caps TerminalCapabilities, td TimeDisplay) *SpanBasedFormatter {
	return &SpanBasedFormatter{
		Caps: caps,
		// Stack traces render as raw multi-line text, so the record
		// separator must not collide with plain "\n".
		Separator: "\x1E\n",
		Build: func(t *span.Tree, rec *Record) span.Handle {
			line := t.Sequence(t.Root, " ")
			buildTimestamp(t, line, rec, false, td)
			if rec.Instance.TypeName != "" {
				buildClassName(t, line, rec.Instance)
			}
			buildMessage(t, line, rec)
			if rec.Data.Len() > 0 {
				parts := make([]string, 0, rec.Data.Len())
				rec.Data.Range(func(k string, v any) {
					parts = append(parts, fmt.Sprintf("%s: %v", k, v))
				})
				t.PlainText(line, "("+strings.Join(parts, ", ")+")")
			}
			buildError(t, t.Root, rec.Err)
			buildStackTrace(t, t.Root, rec.StackTrace)
			return t.Root
		},
	}
}
