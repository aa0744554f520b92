// spanbuild.go: shared semantic-span construction helpers used by the
// concrete span-based formatters (SimpleConsole, Rainbow, Compact).
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

// buildTimestamp renders rec.Timestamp per td: a short time-of-day layout
// by default, an ISO-8601 one when full is set.
func buildTimestamp(t *span.Tree, parent span.Handle, rec *Record, full bool, td TimeDisplay) {
	layout := "15:04:05.000"
	if full {
		layout = "2006-01-02T15:04:05.000Z07:00"
	}
	s := FormatTimestamp(td, rec.Timestamp, layout)
	if s == "" {
		return
	}
	t.PlainText(parent, s)
}

func buildBracketedLevel(t *span.Tree, parent span.Handle, rec *Record, style Style) {
	styled := t.Styled(parent, toSpanStyle(style))
	t.PlainText(styled, "["+strings.ToUpper(rec.Level.Name)+"]")
}

func buildLoggerName(t *span.Tree, parent span.Handle, name string) {
	t.PlainText(parent, "["+name+"]")
}

func buildClassName(t *span.Tree, parent span.Handle, marker InstanceMarker) {
	if marker.TypeName == "" {
		return
	}
	t.PlainText(parent, fmt.Sprintf("%s@%04x", marker.TypeName, marker.Hash))
}

func buildSourceLocation(t *span.Tree, parent span.Handle, info CallerInfo) {
	if info.File == "" {
		return
	}
	file := info.File
	if idx := strings.LastIndex(file, "/"); idx >= 0 {
		file = file[idx+1:]
	}
	t.PlainText(parent, fmt.Sprintf("%s:%d", file, info.Line))
}

func buildMessage(t *span.Tree, parent span.Handle, rec *Record) {
	if rec.Message.IsSet() {
		t.PlainText(parent, rec.Message.Resolve())
	}
}

func buildInlineData(t *span.Tree, parent span.Handle, data Data) {
	if data.Len() == 0 {
		return
	}
	seq := t.Sequence(parent, ", ")
	data.Range(func(k string, v any) {
		t.PlainText(seq, fmt.Sprintf("%s=%v", k, v))
	})
}

func buildMultilineData(t *span.Tree, parent span.Handle, data Data) {
	if data.Len() == 0 {
		return
	}
	data.Range(func(k string, v any) {
		t.NewLine(parent)
		t.PlainText(parent, fmt.Sprintf("  %s=%v", k, v))
	})
}

func buildError(t *span.Tree, parent span.Handle, err error) {
	if err == nil {
		return
	}
	t.NewLine(parent)
	t.PlainText(parent, "error: "+err.Error())
}

func buildStackTrace(t *span.Tree, parent span.Handle, st string) {
	if st == "" {
		return
	}
	t.NewLine(parent)
	t.PlainText(parent, st)
}

func toSpanStyle(s Style) span.Style {
	return span.Style{
		FG: s.FG, Bold: s.Bold, Italic: s.Italic, Underline: s.Underline,
		Dim: s.Dim, Strikethrough: s.Strikethrough,
	}
}

// Style mirrors span.Style at the formatter layer so formatter files don't
// need to import span directly for simple cases.
type Style struct {
	FG                                          *span.Color
	Bold, Italic, Underline, Dim, Strikethrough bool
}
