package chirpy

import (
	"testing"
	"time"
)

func TestRateLimitInterceptorDropsWhenExhausted(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	r := NewRateLimitInterceptor(2, 1, time.Second, clock)

	rec := &Record{}
	if _, ok := r.Intercept(rec); !ok {
		t.Fatal("first record should be admitted (capacity 2)")
	}
	if _, ok := r.Intercept(rec); !ok {
		t.Fatal("second record should be admitted (capacity 2)")
	}
	if _, ok := r.Intercept(rec); ok {
		t.Fatal("third record should be dropped, bucket exhausted")
	}
}

func TestRateLimitInterceptorRefillsOverTime(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	r := NewRateLimitInterceptor(1, 1, time.Second, clock)

	rec := &Record{}
	if _, ok := r.Intercept(rec); !ok {
		t.Fatal("expected first record admitted")
	}
	if _, ok := r.Intercept(rec); ok {
		t.Fatal("expected second record dropped before refill")
	}

	clock.Advance(time.Second)
	if _, ok := r.Intercept(rec); !ok {
		t.Fatal("expected record admitted after refill")
	}
}

func TestRateLimitInterceptorSetRateIsLive(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	r := NewRateLimitInterceptor(1, 1, time.Second, clock)
	r.SetRate(5, 5, time.Second)

	if r.capacity.Load() != 5 || r.refill.Load() != 5 {
		t.Fatalf("SetRate did not apply: capacity=%d refill=%d", r.capacity.Load(), r.refill.Load())
	}
}

func TestRateLimitInterceptorClampsInvalidInputs(t *testing.T) {
	r := NewRateLimitInterceptor(0, -1, 0, nil)
	if r.capacity.Load() != 1 || r.refill.Load() != 1 || r.every.Load() != int64(time.Millisecond) {
		t.Fatalf("expected clamped defaults, got capacity=%d refill=%d every=%d",
			r.capacity.Load(), r.refill.Load(), r.every.Load())
	}
}
