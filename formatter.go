// formatter.go: the Formatter contract and the span-based formatter base.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package chirpy

import "github.com/chirpy-log/chirpy/span"

// Formatter turns a Record into bytes appended to buf, and declares its
// record separator and whether it needs caller info resolved.
type Formatter interface {
	RequiresCallerInfo() bool
	RecordSeparator() string
	Format(rec *Record, buf []byte) ([]byte, error)
}

// SpanBuilder is the subclass responsibility of a SpanBasedFormatter:
// build a span tree representing rec.
type SpanBuilder func(t *span.Tree, rec *Record) span.Handle

// SpanBasedFormatter formats records through the span tree + renderer:
// build, run transformers in registration order, render.
type SpanBasedFormatter struct {
	Caps         TerminalCapabilities
	Build        SpanBuilder
	Transformers []span.Transformer
	NeedsCaller  bool
	Separator    string
}

func (f *SpanBasedFormatter) RequiresCallerInfo() bool { return f.NeedsCaller }

func (f *SpanBasedFormatter) RecordSeparator() string {
	if f.Separator != "" {
		return f.Separator
	}
	return "\n"
}

func (f *SpanBasedFormatter) Format(rec *Record, buf []byte) ([]byte, error) {
	t := span.NewTree()
	root := f.Build(t, rec)
	t.ReplaceWith(t.Root, root)
	for _, tr := range f.Transformers {
		tr(t, t.Root, rec)
	}
	return span.Render(t, t.Root, toSpanCap(f.Caps.ColorSupport), buf), nil
}

func toSpanCap(c ColorSupport) span.Capability {
	switch c {
	case ColorTruecolor:
		return span.CapTruecolor
	case Color256:
		return span.Cap256
	case Color16:
		return span.Cap16
	default:
		return span.CapNone
	}
}
