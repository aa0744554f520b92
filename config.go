// config.go: optional file-based configuration for a logger, loadable from
// JSON and safe to hot-reload. Covers the knobs that can change at runtime
// without rebuilding the logger tree: level and a rate-limit budget. The
// logger itself never requires a config file to function.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package chirpy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileConfig is the on-disk shape LoadConfigFromJSON (and so ConfigWatcher)
// reads. Fields are all
// optional; a zero value leaves the corresponding runtime knob untouched.
type FileConfig struct {
	// Level names the minimum level to apply, e.g. "info" or "warning".
	Level string `json:"level,omitempty"`

	// RateLimitCapacity, RateLimitRefill and RateLimitEvery configure a
	// RateLimitInterceptor's token bucket, when one is wired to the watcher.
	RateLimitCapacity int64  `json:"rate_limit_capacity,omitempty"`
	RateLimitRefill   int64  `json:"rate_limit_refill,omitempty"`
	RateLimitEvery    string `json:"rate_limit_every,omitempty"`
}

// validateConfigPath rejects paths containing directory-traversal elements.
func validateConfigPath(filename string) error {
	if filename == "" {
		return fmt.Errorf("empty config path")
	}
	if strings.Contains(filepath.Clean(filename), "..") {
		return fmt.Errorf("config path contains directory traversal: %s", filename)
	}
	return nil
}

// LoadConfigFromJSON reads and parses a FileConfig from filename.
func LoadConfigFromJSON(filename string) (*FileConfig, error) {
	if err := validateConfigPath(filename); err != nil {
		return nil, NewError(ErrConfig, err.Error())
	}
	data, err := os.ReadFile(filename) // #nosec G304 -- path validated above
	if err != nil {
		return nil, WrapError(ErrConfig, err, "read config file")
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, WrapError(ErrConfig, err, "parse config file")
	}
	return &cfg, nil
}
