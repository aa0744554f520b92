// clock.go: injectable time source for deterministic tests.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package chirpy

import (
	"sync"
	"time"

	"github.com/agilira/go-timecache"
)

// Clock abstracts "now" so tests can pin time without sleeping.
type Clock interface {
	Now() time.Time
}

// systemClock delegates to go-timecache's background-refreshed cache,
// avoiding a time.Now() syscall on every log call.
type systemClock struct{}

func (systemClock) Now() time.Time {
	return timecache.CachedTime()
}

// SystemClock is the default Clock used when none is configured.
var SystemClock Clock = systemClock{}

// FixedClock is a Clock that always returns the same instant, useful for
// golden-output tests of formatters.
type FixedClock struct {
	instant time.Time
}

// NewFixedClock returns a Clock pinned at t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{instant: t}
}

func (c *FixedClock) Now() time.Time {
	return c.instant
}

// ManualClock is a Clock a test can advance explicitly, useful for
// rotation and tail tests that need to cross time buckets deterministically.
type ManualClock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewManualClock returns a Clock starting at t.
func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{now: t}
}

func (c *ManualClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new instant.
func (c *ManualClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Set pins the clock to t directly, including moving it backward — used to
// exercise the monotonic-rotation-instant guarantee.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
