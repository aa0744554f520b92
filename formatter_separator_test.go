package chirpy_test

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chirpy-log/chirpy"
	"github.com/chirpy-log/chirpy/rotatingreader"
	"github.com/chirpy-log/chirpy/rotatingwriter"
)

// A formatter that can render a record's StackTrace as raw multi-line text
// must not declare "\n" as its record separator, or a rotating-file reader
// splitting on that separator would shred one record into many.
func TestSpanFormattersDeclareNonCollidingSeparator(t *testing.T) {
	caps := chirpy.TerminalCapabilities{ColorSupport: chirpy.ColorNone}
	for name, f := range map[string]*chirpy.SpanBasedFormatter{
		"simple":  chirpy.NewSimpleConsoleFormatter(caps, false, chirpy.TimeOff),
		"compact": chirpy.NewCompactFormatter(caps, chirpy.TimeOff),
		"rainbow": chirpy.NewRainbowFormatter(caps, chirpy.DefaultRainbowFormatOptions()),
	} {
		if sep := f.RecordSeparator(); sep != "\x1E\n" {
			t.Errorf("%s: RecordSeparator() = %q, want %q", name, sep, "\x1E\n")
		}
	}
	// JSON escapes embedded newlines in-string, so plain "\n" remains safe.
	if sep := chirpy.NewJSONFormatter().RecordSeparator(); sep != "\n" {
		t.Errorf("json: RecordSeparator() = %q, want \\n", sep)
	}
}

// TestRotatingFileRoundTripPreservesMultilineStackTrace: a record with an
// embedded newline in its stack trace, written through the rotating writer
// using a span-based formatter, must read back as exactly one record.
func TestRotatingFileRoundTripPreservesMultilineStackTrace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	f := chirpy.NewSimpleConsoleFormatter(chirpy.TerminalCapabilities{ColorSupport: chirpy.ColorNone}, false, chirpy.TimeOff)

	w := rotatingwriter.New(rotatingwriter.Options{
		BasePath:  rotatingwriter.StaticPath(path),
		Formatter: f,
		Strategy:  rotatingwriter.Synchronous,
	})
	defer w.Close()

	rec := &chirpy.Record{
		Timestamp:  time.Now(),
		Level:      chirpy.ErrorLevel,
		Message:    chirpy.Msg("boom"),
		StackTrace: "main.a()\n\tmain.go:10\nmain.b()\n\tmain.go:20",
	}
	if err := w.Write(rec); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(&chirpy.Record{Timestamp: time.Now(), Level: chirpy.InfoLevel, Message: chirpy.Msg("second line")}); err != nil {
		t.Fatal(err)
	}

	r := rotatingreader.New(path, f.RecordSeparator())
	lines, err := r.Read(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected exactly 2 records, got %d: %q", len(lines), lines)
	}
	if !strings.Contains(lines[0], "main.a()") || !strings.Contains(lines[0], "main.b()") {
		t.Fatalf("expected first record to contain the full stack trace intact, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "second line") {
		t.Fatalf("expected second record isolated, got %q", lines[1])
	}
}

// Log and LogParams are the public primitive: an external caller can attach
// an error, a stack trace and a format-options override at any level, and
// the per-call rainbow override is honored by the formatter.
func TestLogParamsUsableFromOutsideThePackage(t *testing.T) {
	root := chirpy.NewRoot()
	var buf memSink
	f := chirpy.NewRainbowFormatter(chirpy.TerminalCapabilities{ColorSupport: chirpy.ColorNone}, chirpy.DefaultRainbowFormatOptions())
	root.AddWriter(chirpy.NewConsoleWriter(&buf, f))

	quiet := chirpy.RainbowFormatOptions{} // every toggle off
	root.Log(chirpy.WarningLevel, chirpy.Msg("degraded"), chirpy.LogParams{
		Err:        errSentinel{},
		StackTrace: "trace line",
		FormatOpts: chirpy.NewFormatOptions(map[string]any{"rainbow": quiet}),
	})

	out := buf.String()
	if !strings.Contains(out, "degraded") || !strings.Contains(out, "sentinel") || !strings.Contains(out, "trace line") {
		t.Fatalf("expected message, error and stack trace in output, got %q", out)
	}
	if strings.Contains(out, "[WARNING]") {
		t.Fatalf("per-call override should have hidden the level tag, got %q", out)
	}
}

type memSink struct{ strings.Builder }

func (s *memSink) Write(p []byte) (int, error) { return s.Builder.Write(p) }

type errSentinel struct{}

func (errSentinel) Error() string { return "sentinel" }
