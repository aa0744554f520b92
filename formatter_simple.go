// formatter_simple.go: SimpleConsole. Timestamp + [LEVEL] + optional
// file:line, Class@hash, [logger] + " - message", with data, error and
// stack on following lines.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package chirpy

import "github.com/chirpy-log/chirpy/span"

// NewSimpleConsoleFormatter builds the plain, single-color-gated console
// formatter. showCaller controls whether file:line is included, which also
// forces RequiresCallerInfo. td selects the time-display mode;
// TimeAuto (the zero value) prints wall-clock time, falling back to
// "<wall> [<clock>]" only when the record's own clock disagrees with it.
func NewSimpleConsoleFormatter(caps TerminalCapabilities, showCaller bool, td TimeDisplay) *SpanBasedFormatter {
	return &SpanBasedFormatter{
		Caps:        caps,
		NeedsCaller: showCaller,
		// This formatter can emit a stack trace as raw multi-line
		// text, so its record separator must not collide with plain "\n".
		Separator: "\x1E\n",
		Build: func(t *span.Tree, rec *Record) span.Handle {
			line := t.Sequence(t.Root, " ")
			buildTimestamp(t, line, rec, false, td)
			buildBracketedLevel(t, line, rec, levelStyle(rec.Level))
			if showCaller {
				buildSourceLocation(t, line, rec.CallerInfo())
			}
			if rec.Instance.TypeName != "" {
				buildClassName(t, line, rec.Instance)
			}
			if rec.LoggerName != "" {
				buildLoggerName(t, line, rec.LoggerName)
			}
			t.PlainText(line, "-")
			buildMessage(t, line, rec)
			if rec.Data.Len() > 0 {
				t.NewLine(t.Root)
				buildInlineData(t, t.Root, rec.Data)
			}
			buildError(t, t.Root, rec.Err)
			buildStackTrace(t, t.Root, rec.StackTrace)
			return t.Root
		},
	}
}

func levelStyle(l Level) Style {
	c := levelColor(l)
	return Style{FG: &c}
}

func levelColor(l Level) span.Color {
	switch {
	case l.Severity >= CriticalLevel.Severity:
		return span.Color{R: 255, G: 0, B: 0}
	case l.Severity >= ErrorLevel.Severity:
		return span.Color{R: 220, G: 50, B: 47}
	case l.Severity >= WarningLevel.Severity:
		return span.Color{R: 181, G: 137, B: 0}
	case l.Severity >= SuccessLevel.Severity:
		return span.Color{R: 0, G: 180, B: 0}
	case l.Severity >= InfoLevel.Severity:
		return span.Color{R: 38, G: 139, B: 210}
	default:
		return span.Color{R: 147, G: 161, B: 161}
	}
}
