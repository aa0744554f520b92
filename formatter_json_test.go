package chirpy

import (
	"strings"
	"testing"
	"time"
)

func TestJSONFormatterWireShape(t *testing.T) {
	f := NewJSONFormatter()
	if f.RequiresCallerInfo() {
		t.Fatal("JSON formatter never needs caller info")
	}
	if f.RecordSeparator() != "\n" {
		t.Fatalf("record separator = %q, want \\n", f.RecordSeparator())
	}

	rec := &Record{
		Timestamp:  time.Date(2024, 1, 2, 15, 4, 5, 123_000_000, time.UTC),
		Level:      WarningLevel,
		Message:    Msg(`say "hi"` + "\n"),
		Data:       NewData(Str("key", "value"), Int("n", 7)),
		LoggerName: "svc",
	}

	out, err := f.Format(rec, nil)
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)

	for _, want := range []string{
		`"timestamp":"2024-01-02T15:04:05.123Z"`,
		`"level":"warning"`,
		`"message":"say \"hi\"\n"`,
		`"logger":"svc"`,
		`"data":{"key":"value","n":7}`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q, got %s", want, s)
		}
	}
}

func TestJSONFormatterNilMessageAndError(t *testing.T) {
	f := NewJSONFormatter()
	rec := &Record{Timestamp: time.Now(), Level: ErrorLevel, Err: errBoom{}}
	out, err := f.Format(rec, nil)
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if !strings.Contains(s, `"message":null`) {
		t.Errorf("expected null message, got %s", s)
	}
	if !strings.Contains(s, `"error":"boom"`) {
		t.Errorf("expected error field, got %s", s)
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// Nested plain-map values must serialize identically across calls even
// though Go map iteration order varies.
func TestJSONFormatterNestedMapDeterministic(t *testing.T) {
	f := NewJSONFormatter()
	rec := &Record{
		Timestamp: time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC),
		Level:     InfoLevel,
		Message:   Msg("m"),
		Data: NewData(Object("attrs", map[string]any{
			"zeta": 1, "alpha": 2, "mid": 3, "beta": 4,
		})),
	}

	first, err := f.Format(rec, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		again, err := f.Format(rec, nil)
		if err != nil {
			t.Fatal(err)
		}
		if string(again) != string(first) {
			t.Fatalf("nested map serialization not deterministic:\n%s\n%s", first, again)
		}
	}
	if !strings.Contains(string(first), `"attrs":{"alpha":2,"beta":4,"mid":3,"zeta":1}`) {
		t.Fatalf("expected sorted nested keys, got %s", first)
	}
}
