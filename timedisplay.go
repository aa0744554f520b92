// timedisplay.go: selects which clock a formatter prints.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package chirpy

import "time"

// TimeDisplay chooses between a record's injectable-clock timestamp and the
// real wall clock when rendering.
type TimeDisplay int

const (
	// TimeAuto prints wall clock when it equals the injected clock,
	// otherwise prints both.
	TimeAuto TimeDisplay = iota
	// TimeClockOnly prints only the injectable clock's time.
	TimeClockOnly
	// TimeWallOnly prints only the system wall clock.
	TimeWallOnly
	// TimeBoth always prints "<wall> [<clock>]".
	TimeBoth
	// TimeOff omits timestamps entirely.
	TimeOff
)

// FormatTimestamp renders clockTime (the record's Timestamp, from whatever
// Clock the logger used) per td and layout, comparing against the real
// wall clock. Formatters pass their own layout (short time-of-day or a
// full date-time).
func FormatTimestamp(td TimeDisplay, clockTime time.Time, layout string) string {
	wall := time.Now()
	switch td {
	case TimeOff:
		return ""
	case TimeClockOnly:
		return clockTime.Format(layout)
	case TimeWallOnly:
		return wall.Format(layout)
	case TimeBoth:
		return wall.Format(layout) + " [" + clockTime.Format(layout) + "]"
	default: // TimeAuto
		// Compare at the rendered granularity, not nanosecond equality:
		// wall is freshly sampled and clockTime comes from whatever Clock
		// the logger used (possibly a background-refreshed cache), so the
		// two are essentially never bit-identical even when they agree
		// down to the displayed precision.
		wallText := wall.Format(layout)
		if wallText == clockTime.Format(layout) {
			return wallText
		}
		return wallText + " [" + clockTime.Format(layout) + "]"
	}
}
