package chirpy

import (
	"strings"
	"testing"
	"time"
)

func TestFormatTimestampAutoCollapsesWhenDisplayedValuesMatch(t *testing.T) {
	// clockTime differs from the freshly-sampled wall clock by a few
	// nanoseconds at most; at a granularity the two render identically at,
	// the output must collapse to the single-timestamp form, not
	// "<wall> [<clock>]". Date granularity keeps this deterministic.
	layout := "2006-01-02"
	clockTime := time.Now()

	got := FormatTimestamp(TimeAuto, clockTime, layout)
	if strings.Contains(got, "[") {
		t.Fatalf("expected collapsed single timestamp, got %q", got)
	}
}

func TestFormatTimestampAutoShowsBothWhenDisplayedValuesDiffer(t *testing.T) {
	layout := "15:04:05"
	clockTime := time.Now().Add(-time.Hour)

	got := FormatTimestamp(TimeAuto, clockTime, layout)
	if !strings.Contains(got, "[") {
		t.Fatalf("expected both wall and clock timestamps, got %q", got)
	}
}

func TestFormatTimestampOff(t *testing.T) {
	if got := FormatTimestamp(TimeOff, time.Now(), "15:04:05"); got != "" {
		t.Fatalf("expected empty string for TimeOff, got %q", got)
	}
}

func TestFormatTimestampClockOnlyAndWallOnly(t *testing.T) {
	layout := "15:04:05"
	clockTime := time.Date(2024, 5, 6, 1, 2, 3, 0, time.UTC)

	got := FormatTimestamp(TimeClockOnly, clockTime, layout)
	if got != clockTime.Format(layout) {
		t.Fatalf("TimeClockOnly = %q, want %q", got, clockTime.Format(layout))
	}

	got = FormatTimestamp(TimeWallOnly, clockTime, layout)
	if got == clockTime.Format(layout) {
		t.Fatalf("TimeWallOnly should render time.Now(), not clockTime's value")
	}
}
