// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/gogama/fetchq/retry"
)

// Config is the TOML file format accepted by --config. All fields are
// optional; zero values fall back to the engine defaults.
type Config struct {
	// Workers is the dispatcher pool size.
	Workers int `toml:"workers"`

	// UserAgent overrides the User-Agent header on every request.
	UserAgent string `toml:"user_agent"`

	Retry RetryConfig `toml:"retry"`
	Redis RedisConfig `toml:"redis"`
}

// RetryConfig configures the backoff policy attached to each request.
type RetryConfig struct {
	// Timeout is the initial per-attempt timeout, e.g. "2.5s".
	Timeout duration `toml:"timeout"`

	// MaxRetries is the retry ceiling after the first attempt.
	MaxRetries int `toml:"max_retries"`

	// Multiplier grows the timeout after each failed attempt.
	Multiplier float64 `toml:"multiplier"`
}

// RedisConfig selects a Redis-backed response cache. When Addr is
// empty the engine uses its in-memory cache.
type RedisConfig struct {
	Addr     string   `toml:"addr"`
	Password string   `toml:"password"`
	DB       int      `toml:"db"`
	Prefix   string   `toml:"prefix"`
	TTL      duration `toml:"ttl"`
}

// duration decodes TOML strings like "2.5s" via time.ParseDuration.
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

// LoadConfig reads path, or returns a zero Config for an empty path.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// policy builds the retry policy described by the config, or nil when
// the config leaves every retry field unset.
func (c Config) policy() retry.Policy {
	r := c.Retry
	if r.Timeout == 0 && r.MaxRetries == 0 && r.Multiplier == 0 {
		return nil
	}
	timeout := time.Duration(r.Timeout)
	if timeout <= 0 {
		timeout = retry.DefaultTimeout
	}
	multiplier := r.Multiplier
	if multiplier <= 0 {
		multiplier = retry.DefaultMultiplier
	}
	maxRetries := r.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	return retry.NewBackoff(timeout, maxRetries, multiplier)
}
