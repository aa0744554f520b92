package rotatingwriter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chirpy-log/chirpy"
)

type lineFormatter struct{}

func (lineFormatter) RequiresCallerInfo() bool { return false }
func (lineFormatter) RecordSeparator() string  { return "\n" }
func (lineFormatter) Format(rec *chirpy.Record, buf []byte) ([]byte, error) {
	msg := rec.Message.Resolve()
	return append(buf, msg...), nil
}

func TestWriterRotatesOnSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	w := New(Options{
		BasePath:    StaticPath(path),
		Formatter:   lineFormatter{},
		MaxFileSize: 10,
		Strategy:    Synchronous,
	})
	defer w.Close()

	for i := 0; i < 5; i++ {
		rec := &chirpy.Record{Timestamp: time.Now(), Level: chirpy.InfoLevel, Message: chirpy.Msg("0123456789")}
		if err := w.Write(rec); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) < 2 {
		t.Fatalf("expected rotation to produce multiple files, got %d", len(entries))
	}
}

func TestWriterRecoversFromDeletedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	w := New(Options{BasePath: StaticPath(path), Formatter: lineFormatter{}, Strategy: Synchronous})
	defer w.Close()

	if err := w.Write(&chirpy.Record{Timestamp: time.Now(), Level: chirpy.InfoLevel, Message: chirpy.Msg("one")}); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(&chirpy.Record{Timestamp: time.Now(), Level: chirpy.InfoLevel, Message: chirpy.Msg("two")}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to be recreated: %v", err)
	}
}

func TestBufferedEscalatesOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	w := New(Options{
		BasePath:      StaticPath(path),
		Formatter:     lineFormatter{},
		Strategy:      Buffered,
		FlushInterval: time.Hour, // effectively disable the ticker for this test
	})
	defer w.Close()

	w.Write(&chirpy.Record{Timestamp: time.Now(), Level: chirpy.InfoLevel, Message: chirpy.Msg("queued\n")})

	data, _ := os.ReadFile(path)
	if len(data) != 0 {
		t.Fatalf("expected info record to stay queued, file has %d bytes", len(data))
	}

	w.Write(&chirpy.Record{Timestamp: time.Now(), Level: chirpy.ErrorLevel, Message: chirpy.Msg("urgent\n")})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("expected error record to flush pending queue and itself")
	}
}

// TestRetentionKeepsMaxFileCountMinusOne: with max_file_count=3, exactly 2
// rotated files survive retention (the current file is not counted).
func TestRetentionKeepsMaxFileCountMinusOne(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	w := New(Options{
		BasePath:     StaticPath(path),
		Formatter:    lineFormatter{},
		MaxFileSize:  500,
		MaxFileCount: 3,
		Strategy:     Synchronous,
	})
	defer w.Close()

	line := "0123456789012345678901234567890123456789012345\n" // ~49 bytes
	for i := 0; i < 40; i++ {
		rec := &chirpy.Record{Timestamp: time.Now(), Level: chirpy.InfoLevel, Message: chirpy.Msg(line)}
		if err := w.Write(rec); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	rotated := 0
	for _, e := range entries {
		if e.Name() != "app.log" {
			rotated++
		}
	}
	if rotated != 2 {
		t.Fatalf("expected exactly 2 rotated files, got %d (%v)", rotated, entries)
	}
}

// TestRotationIgnoresBackwardClockJump: the rotation instant is
// monotonically non-decreasing, so a backward wall-clock jump (NTP
// correction, DST fold) must not trigger a spurious time-based rotation nor
// drag the tracked instant backward.
func TestRotationIgnoresBackwardClockJump(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	w := New(Options{
		BasePath:     StaticPath(path),
		Formatter:    lineFormatter{},
		RotationUnit: RotationDay,
		Strategy:     Synchronous,
	})
	defer w.Close()

	day2 := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	if err := w.Write(&chirpy.Record{Timestamp: day2, Level: chirpy.InfoLevel, Message: chirpy.Msg("a\n")}); err != nil {
		t.Fatal(err)
	}
	if got := w.lastRotation; !got.Equal(day2) {
		t.Fatalf("expected lastRotation = %v, got %v", day2, got)
	}

	// A record timestamped a day earlier than the tracked instant must not
	// rotate and must not drag lastRotation backward.
	day1 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if err := w.Write(&chirpy.Record{Timestamp: day1, Level: chirpy.InfoLevel, Message: chirpy.Msg("b\n")}); err != nil {
		t.Fatal(err)
	}
	if got := w.lastRotation; !got.Equal(day2) {
		t.Fatalf("backward timestamp dragged lastRotation back: got %v, want %v", got, day2)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected no rotation from a backward timestamp, got %d entries", len(entries))
	}

	// A subsequent forward-moving timestamp into a new bucket still rotates
	// normally.
	day3 := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	if err := w.Write(&chirpy.Record{Timestamp: day3, Level: chirpy.InfoLevel, Message: chirpy.Msg("c\n")}); err != nil {
		t.Fatal(err)
	}
	entries, err = os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) < 2 {
		t.Fatalf("expected the forward-moving timestamp to rotate, got %d entries", len(entries))
	}
}

func TestForceRotateAndClearLogs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	w := New(Options{BasePath: StaticPath(path), Formatter: lineFormatter{}, Strategy: Synchronous})

	w.Write(&chirpy.Record{Timestamp: time.Now(), Level: chirpy.InfoLevel, Message: chirpy.Msg("x")})
	if err := w.ForceRotate(); err != nil {
		t.Fatal(err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) < 1 {
		t.Fatal("expected a rotated file to exist")
	}

	if err := w.ClearLogs(); err != nil {
		t.Fatal(err)
	}
	entries, _ = os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected clear_logs to remove everything, found %d entries", len(entries))
	}
	w.Close()
}

// TestPendingPathQueuesWrites: writes arriving while a deferred base path
// is still pending are queued, then drained in order once it resolves.
func TestPendingPathQueuesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	resolved := false
	w := New(Options{
		BasePath: func() (string, error) {
			if !resolved {
				return "", ErrPathPending
			}
			return path, nil
		},
		Formatter: lineFormatter{},
		Strategy:  Synchronous,
	})
	defer w.Close()

	w.Write(&chirpy.Record{Timestamp: time.Now(), Level: chirpy.InfoLevel, Message: chirpy.Msg("one")})
	w.Write(&chirpy.Record{Timestamp: time.Now(), Level: chirpy.InfoLevel, Message: chirpy.Msg("two")})
	if _, err := os.Stat(path); err == nil {
		t.Fatal("expected no file while the path is pending")
	}

	resolved = true
	if err := w.Write(&chirpy.Record{Timestamp: time.Now(), Level: chirpy.InfoLevel, Message: chirpy.Msg("three")}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "one\ntwo\nthree\n"; got != want {
		t.Fatalf("queued records out of order: got %q, want %q", got, want)
	}
}
