package chirpy

import (
	"sync"
	"testing"

	"github.com/agilira/go-errors"
)

type recordingWriter struct {
	mu      sync.Mutex
	records []*Record
}

func (w *recordingWriter) RequiresCallerInfo() bool { return false }
func (w *recordingWriter) Write(rec *Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.records = append(w.records, rec)
	return nil
}
func (w *recordingWriter) Flush() error { return nil }
func (w *recordingWriter) Close() error { return nil }

func (w *recordingWriter) snapshot() []*Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*Record{}, w.records...)
}

// TestLazyMessageSkipped: a filtered-out lazy message is
// never evaluated and no writer observes a record.
func TestLazyMessageSkipped(t *testing.T) {
	root := NewRoot()
	root.SetMinLevel(WarningLevel)
	w := &recordingWriter{}
	root.AddWriter(w)

	evaluated := false
	root.Log(TraceLevel, LazyMsg(func() string {
		evaluated = true
		return "boom"
	}), LogParams{})

	if evaluated {
		t.Fatal("lazy message was evaluated despite being filtered")
	}
	if len(w.snapshot()) != 0 {
		t.Fatal("writer observed a record despite level gate")
	}
}

// TestChildContextMerge: ordered, last-wins context merge
// across three generations of loggers.
func TestChildContextMerge(t *testing.T) {
	root := NewRoot()
	root.SetContext(Str("app", "svc"))
	w := &recordingWriter{}
	root.AddWriter(w)

	req := root.Child(ChildOptions{Context: []Field{Str("request_id", "R1")}})
	tx := req.Child(ChildOptions{Context: []Field{Str("tx", "T1")}})

	tx.Info("ok", Str("app", "override"), Int("extra", 1))

	recs := w.snapshot()
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	rec := recs[0]

	wantOrder := []string{"app", "request_id", "tx", "extra"}
	if rec.Data.Len() != len(wantOrder) {
		t.Fatalf("data has %d keys, want %d", rec.Data.Len(), len(wantOrder))
	}
	i := 0
	rec.Data.Range(func(k string, v any) {
		if k != wantOrder[i] {
			t.Errorf("key[%d] = %q, want %q", i, k, wantOrder[i])
		}
		i++
	})

	if v, _ := rec.Data.Get("app"); v != "override" {
		t.Errorf("app = %v, want override (call data must win)", v)
	}
	if v, _ := rec.Data.Get("request_id"); v != "R1" {
		t.Errorf("request_id = %v, want R1", v)
	}
	if v, _ := rec.Data.Get("tx"); v != "T1" {
		t.Errorf("tx = %v, want T1", v)
	}
}

func TestInterceptorCanDropRecord(t *testing.T) {
	root := NewRoot()
	w := &recordingWriter{}
	root.AddWriter(w)
	root.AddInterceptor(InterceptorFunc(func(rec *Record) (*Record, bool) {
		return nil, false
	}))

	root.Info("dropped")

	if len(w.snapshot()) != 0 {
		t.Fatal("writer observed a record the interceptor dropped")
	}
}

func TestAdoptRewiresParentKeepsMinLevel(t *testing.T) {
	app := NewRoot()
	w := &recordingWriter{}
	app.AddWriter(w)

	lib := NewLibraryLogger("lib")
	lib.Info("quiet") // below lib's Warning gate, should be dropped
	if len(w.snapshot()) != 0 {
		t.Fatal("lib should have no writers before adoption")
	}

	app.Adopt(lib)
	lib.Warning("loud enough")
	if len(w.snapshot()) != 1 {
		t.Fatalf("expected 1 record after adoption, got %d", len(w.snapshot()))
	}

	lib.Info("still too quiet")
	if len(w.snapshot()) != 1 {
		t.Fatal("adoption must not change the library logger's own min_level")
	}
}

type callerHungryWriter struct{ recordingWriter }

func (w *callerHungryWriter) RequiresCallerInfo() bool { return true }

// A backtrace token is captured iff something in the effective chain
// declares it needs caller info.
func TestCallerTokenCapturedOnlyWhenRequired(t *testing.T) {
	root := NewRoot()
	lazy := &recordingWriter{}
	root.AddWriter(lazy)

	root.Info("no caller needed")
	recs := lazy.snapshot()
	if len(recs) != 1 || recs[0].Caller != nil {
		t.Fatal("expected no caller token when no writer requires it")
	}

	hungry := &callerHungryWriter{}
	root.AddWriter(hungry)
	root.Info("caller needed now")
	recs = lazy.snapshot()
	if got := recs[len(recs)-1].Caller; got == nil {
		t.Fatal("expected a caller token once a writer requires it")
	}
}

func TestWriterPanicDoesNotEscape(t *testing.T) {
	var diagnosed bool
	prev := GetErrorHandler()
	SetErrorHandler(func(err *errors.Error) { diagnosed = true })
	defer SetErrorHandler(prev)

	root := NewRoot()
	root.AddWriter(panickyWriter{})
	w := &recordingWriter{}
	root.AddWriter(w)

	root.Info("survive")

	if !diagnosed {
		t.Fatal("expected the panicking writer to be routed to the error handler")
	}
	if len(w.snapshot()) != 1 {
		t.Fatal("expected the healthy writer to still receive the record")
	}
}

type panickyWriter struct{}

func (panickyWriter) RequiresCallerInfo() bool { return false }
func (panickyWriter) Write(rec *Record) error  { panic("sink exploded") }
func (panickyWriter) Flush() error             { return nil }
func (panickyWriter) Close() error             { return nil }
