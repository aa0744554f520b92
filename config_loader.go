// config_loader.go: argus-backed hot reload of a logger's level (and, when
// wired, a RateLimitInterceptor's budget) from a JSON config file. Nothing
// in the logger pipeline requires a ConfigWatcher to run.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package chirpy

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/argus"
)

// ConfigWatcher watches a JSON config file and applies non-breaking
// changes to a logger's level, and optionally a rate limiter's budget,
// without rebuilding the logger tree.
type ConfigWatcher struct {
	path    string
	level   *AtomicLevel
	limiter *RateLimitInterceptor

	watcher *argus.Watcher
	enabled atomic.Bool
	mu      sync.Mutex
}

// NewConfigWatcher constructs a watcher for path, applying level changes
// to level (typically obtained via Logger.AtomicLevel) and, when limiter
// is non-nil, rate-limit changes to it.
func NewConfigWatcher(path string, level *AtomicLevel, limiter *RateLimitInterceptor) (*ConfigWatcher, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapError(ErrConfig, err, "config file does not exist")
	}

	cfg := argus.Config{
		PollInterval:         2 * time.Second,
		OptimizationStrategy: argus.OptimizationAuto,
		ErrorHandler: func(err error, watchedPath string) {
			handleError(WrapError(ErrConfig, err, fmt.Sprintf("watcher error for %s", watchedPath)))
		},
	}

	w := &ConfigWatcher{
		path:    path,
		level:   level,
		limiter: limiter,
		watcher: argus.New(*cfg.WithDefaults()),
	}
	return w, nil
}

// Start begins watching the config file, applying the current on-disk
// value immediately and then on every subsequent change.
func (w *ConfigWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.enabled.Load() {
		return NewError(ErrConfig, "config watcher already started")
	}

	if cfg, err := LoadConfigFromJSON(w.path); err == nil {
		w.apply(cfg)
	}

	err := w.watcher.Watch(w.path, func(event argus.ChangeEvent) {
		cfg, err := LoadConfigFromJSON(event.Path)
		if err != nil {
			handleError(WrapError(ErrConfig, err, fmt.Sprintf("reload config from %s", event.Path)))
			return
		}
		w.apply(cfg)
	})
	if err != nil {
		return WrapError(ErrConfig, err, "install config watcher")
	}

	if err := w.watcher.Start(); err != nil {
		return WrapError(ErrConfig, err, "start config watcher")
	}
	w.enabled.Store(true)
	return nil
}

// Stop halts the watcher; it may be started again afterward.
func (w *ConfigWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.enabled.Load() {
		return nil
	}
	w.enabled.Store(false)
	return w.watcher.Stop()
}

func (w *ConfigWatcher) apply(cfg *FileConfig) {
	if w.level != nil && cfg.Level != "" {
		if lvl, err := ParseLevel(cfg.Level); err == nil {
			w.level.SetLevel(lvl)
		} else {
			handleError(WrapError(ErrConfig, err, "unknown level in config"))
		}
	}
	if w.limiter != nil && cfg.RateLimitCapacity > 0 {
		var every time.Duration // zero leaves the limiter's period untouched
		if cfg.RateLimitEvery != "" {
			if d, err := time.ParseDuration(cfg.RateLimitEvery); err == nil {
				every = d
			}
		}
		w.limiter.SetRate(cfg.RateLimitCapacity, cfg.RateLimitRefill, every)
	}
}
