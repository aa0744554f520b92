// ratelimit.go: an opt-in token-bucket rate-limiting Interceptor. Never
// attached by default; a caller must explicitly wire it via
// Logger.AddInterceptor. Backed by the package's own Clock so it composes
// with an injected test clock.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package chirpy

import (
	"sync/atomic"
	"time"
)

// RateLimitInterceptor drops records once its token bucket is exhausted,
// refilling at a steady rate. All levels are treated equally.
type RateLimitInterceptor struct {
	clock Clock

	capacity atomic.Int64
	refill   atomic.Int64
	every    atomic.Int64 // nanoseconds

	tokens atomic.Int64
	last   atomic.Int64 // nanoseconds since clock epoch
}

// NewRateLimitInterceptor builds a RateLimitInterceptor with the given
// burst capacity, refill amount and refill period. Invalid inputs (<= 0)
// are clamped to sane minimums rather than rejected.
func NewRateLimitInterceptor(capacity, refill int64, every time.Duration, clock Clock) *RateLimitInterceptor {
	if capacity <= 0 {
		capacity = 1
	}
	if refill <= 0 {
		refill = 1
	}
	if every <= 0 {
		every = time.Millisecond
	}
	if clock == nil {
		clock = SystemClock
	}
	r := &RateLimitInterceptor{clock: clock}
	r.capacity.Store(capacity)
	r.refill.Store(refill)
	r.every.Store(int64(every))
	r.tokens.Store(capacity)
	r.last.Store(clock.Now().UnixNano())
	return r
}

// SetRate replaces the bucket's parameters live, e.g. from a config
// hot-reload callback. It does not reset the current token count.
func (r *RateLimitInterceptor) SetRate(capacity, refill int64, every time.Duration) {
	if capacity > 0 {
		r.capacity.Store(capacity)
	}
	if refill > 0 {
		r.refill.Store(refill)
	}
	if every > 0 {
		r.every.Store(int64(every))
	}
}

// RequiresCallerInfo is always false: rate limiting never inspects caller
// info, so attaching it never forces a backtrace capture.
func (r *RateLimitInterceptor) RequiresCallerInfo() bool { return false }

// Intercept admits rec unless the bucket is empty.
func (r *RateLimitInterceptor) Intercept(rec *Record) (*Record, bool) {
	now := r.clock.Now().UnixNano()
	last := r.last.Load()
	every := r.every.Load()

	if elapsed := now - last; elapsed > 0 && every > 0 {
		tokensToAdd := elapsed / every * r.refill.Load()
		if tokensToAdd > 0 && r.last.CompareAndSwap(last, now) {
			capacity := r.capacity.Load()
			for {
				cur := r.tokens.Load()
				next := cur + tokensToAdd
				if next > capacity {
					next = capacity
				}
				if r.tokens.CompareAndSwap(cur, next) {
					break
				}
			}
		}
	}

	for {
		cur := r.tokens.Load()
		if cur <= 0 {
			return rec, false
		}
		if r.tokens.CompareAndSwap(cur, cur-1) {
			return rec, true
		}
	}
}
