// formatter_rainbow.go: Rainbow — rich colored layout where each identity
// field is colored by a stable hash over a curated palette so the same
// entity gets the same hue across runs.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package chirpy

import (
	"hash/fnv"

	"github.com/chirpy-log/chirpy/span"
)

// RainbowDataMode selects how Rainbow lays out a record's data.
type RainbowDataMode int

const (
	DataInline RainbowDataMode = iota
	DataMultiline
)

// RainbowFormatOptions toggles individual fields on or off; a zero value
// hides every toggleable field (the message, data, error and stack trace
// still render), DefaultRainbowFormatOptions shows it all.
type RainbowFormatOptions struct {
	Data         RainbowDataMode
	ShowTime     bool
	ShowLocation bool
	ShowLogger   bool
	ShowClass    bool
	ShowMethod   bool
	ShowLogLevel bool
	TimeMode     TimeDisplay
}

// DefaultRainbowFormatOptions shows every field, data inline.
func DefaultRainbowFormatOptions() RainbowFormatOptions {
	return RainbowFormatOptions{
		ShowTime: true, ShowLocation: true, ShowLogger: true,
		ShowClass: true, ShowMethod: true, ShowLogLevel: true,
	}
}

var rainbowPalette = []span.Color{
	{R: 230, G: 126, B: 34}, {R: 46, G: 204, B: 113}, {R: 52, G: 152, B: 219},
	{R: 155, G: 89, B: 182}, {R: 241, G: 196, B: 15}, {R: 26, G: 188, B: 156},
	{R: 231, G: 76, B: 60}, {R: 149, G: 165, B: 166},
}

func stableColor(s string) span.Color {
	h := fnv.New32a()
	h.Write([]byte(s))
	return rainbowPalette[h.Sum32()%uint32(len(rainbowPalette))]
}

// NewRainbowFormatter builds the Rainbow formatter. opts supplies defaults;
// a per-call override is read from rec.FormatOpts under the key "rainbow".
func NewRainbowFormatter(caps TerminalCapabilities, opts RainbowFormatOptions) *SpanBasedFormatter {
	return &SpanBasedFormatter{
		Caps:        caps,
		NeedsCaller: opts.ShowLocation || opts.ShowMethod,
		// Stack traces render as raw multi-line text, so the record
		// separator must not collide with plain "\n".
		Separator: "\x1E\n",
		Build: func(t *span.Tree, rec *Record) span.Handle {
			o := opts
			if v, ok := rec.FormatOpts.Get("rainbow"); ok {
				if override, ok := v.(RainbowFormatOptions); ok {
					o = override
				}
			}
			line := t.Sequence(t.Root, " ")
			if o.ShowTime {
				buildTimestamp(t, line, rec, false, o.TimeMode)
			}
			if o.ShowLogLevel {
				buildBracketedLevel(t, line, rec, levelStyle(rec.Level))
			}
			info := rec.CallerInfo()
			if o.ShowLocation {
				buildSourceLocation(t, line, info)
			}
			if o.ShowClass && rec.Instance.TypeName != "" {
				c := stableColor(rec.Instance.TypeName)
				styled := t.Styled(line, span.Style{FG: &c})
				buildClassName(t, styled, rec.Instance)
			}
			if o.ShowMethod && info.Method != "" {
				c := stableColor(info.Method)
				styled := t.Styled(line, span.Style{FG: &c})
				t.PlainText(styled, info.Method+"()")
			}
			if o.ShowLogger && rec.LoggerName != "" {
				c := stableColor(rec.LoggerName)
				styled := t.Styled(line, span.Style{FG: &c})
				buildLoggerName(t, styled, rec.LoggerName)
			}
			msgColor := levelColor(rec.Level)
			msgStyle := t.Styled(line, span.Style{FG: &msgColor, Bold: rec.Level.Severity >= ErrorLevel.Severity})
			buildMessage(t, msgStyle, rec)

			if rec.Data.Len() > 0 {
				switch o.Data {
				case DataMultiline:
					buildMultilineData(t, t.Root, rec.Data)
				default:
					buildInlineData(t, line, rec.Data)
				}
			}
			buildError(t, t.Root, rec.Err)
			buildStackTrace(t, t.Root, rec.StackTrace)
			return t.Root
		},
	}
}
