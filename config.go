// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package catscan

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/catscan/dataset"
	"github.com/poiesic/catscan/suppress"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig indicates a configuration value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultExclusions are sites that never trigger notifications.
var DefaultExclusions = []string{"rossmanngroup.com"}

// Config holds engine settings. The zero value is not usable; start from
// DefaultConfig or NewConfig.
type Config struct {
	// DBPath is the BadgerDB directory. Empty keeps all state in memory.
	DBPath string `yaml:"db_path"`

	// DatasetURL is where the wiki export is fetched from.
	DatasetURL string `yaml:"dataset_url"`

	// RefreshSchedule is a cron spec for periodic dataset refreshes.
	// Default: "@every 24h"
	RefreshSchedule string `yaml:"refresh_schedule"`

	// MuteWindow is how long a muted page stays quiet.
	// Default: 1h
	MuteWindow time.Duration `yaml:"mute_window"`

	// DomainExclusions lists registrable domains that are never scanned.
	DomainExclusions []string `yaml:"domain_exclusions"`

	// Enabled turns page checks on or off.
	Enabled bool `yaml:"enabled"`

	// PoolSize is the worker count for batch scans.
	PoolSize int `yaml:"pool_size"`

	// FetchAttempts and FetchRetryDelay control dataset download retries.
	FetchAttempts   int           `yaml:"fetch_attempts"`
	FetchRetryDelay time.Duration `yaml:"fetch_retry_delay"`

	// ListenAddr is the HTTP listen address for the serve command.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithDBPath sets the storage directory.
func WithDBPath(path string) ConfigOption {
	return func(c *Config) {
		c.DBPath = path
	}
}

// WithDatasetURL sets the remote export location.
func WithDatasetURL(url string) ConfigOption {
	return func(c *Config) {
		c.DatasetURL = url
	}
}

// WithRefreshSchedule sets the cron spec for dataset refreshes.
func WithRefreshSchedule(schedule string) ConfigOption {
	return func(c *Config) {
		c.RefreshSchedule = schedule
	}
}

// WithMuteWindow sets how long muted pages stay quiet.
func WithMuteWindow(window time.Duration) ConfigOption {
	return func(c *Config) {
		c.MuteWindow = window
	}
}

// WithDomainExclusions replaces the excluded domains.
func WithDomainExclusions(domains ...string) ConfigOption {
	return func(c *Config) {
		c.DomainExclusions = domains
	}
}

// WithEnabled turns page checks on or off.
func WithEnabled(enabled bool) ConfigOption {
	return func(c *Config) {
		c.Enabled = enabled
	}
}

// WithPoolSize sets the batch scan worker count.
func WithPoolSize(size int) ConfigOption {
	return func(c *Config) {
		c.PoolSize = size
	}
}

// WithListenAddr sets the HTTP listen address.
func WithListenAddr(addr string) ConfigOption {
	return func(c *Config) {
		c.ListenAddr = addr
	}
}

// DefaultConfig returns a Config with the product defaults.
func DefaultConfig() *Config {
	return &Config{
		DatasetURL:       dataset.DefaultURL,
		RefreshSchedule:  dataset.DefaultSchedule,
		MuteWindow:       suppress.DefaultMuteWindow,
		DomainExclusions: append([]string(nil), DefaultExclusions...),
		Enabled:          true,
		PoolSize:         4,
		FetchAttempts:    3,
		FetchRetryDelay:  2 * time.Second,
		ListenAddr:       ":8088",
		LogLevel:         "info",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithDBPath("/var/lib/catscan"),
//	    WithMuteWindow(30*time.Minute),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// LoadConfig reads a YAML file over the defaults. Keys missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and normalizes exclusions to lower case without
// surrounding whitespace or empty entries.
func (c *Config) Validate() error {
	if c.MuteWindow < 0 {
		return fmt.Errorf("%w: mute_window must not be negative", ErrInvalidConfig)
	}
	if c.PoolSize < 1 {
		return fmt.Errorf("%w: pool_size must be at least 1", ErrInvalidConfig)
	}
	if c.FetchAttempts < 1 {
		return fmt.Errorf("%w: fetch_attempts must be at least 1", ErrInvalidConfig)
	}
	if c.FetchRetryDelay < 0 {
		return fmt.Errorf("%w: fetch_retry_delay must not be negative", ErrInvalidConfig)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}

	exclusions := make([]string, 0, len(c.DomainExclusions))
	for _, domain := range c.DomainExclusions {
		domain = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
		if domain != "" {
			exclusions = append(exclusions, domain)
		}
	}
	c.DomainExclusions = exclusions
	return nil
}

// ParseLogLevel maps a level name onto slog.Level. Empty means info.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, level)
}
