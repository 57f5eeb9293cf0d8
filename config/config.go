// Copyright 2026 The PSGC API Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the server settings from an optional YAML file, a
// .env file and PSGC_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config holds the settings shared by the serve and import commands.
type Config struct {
	Listen          string   `yaml:"listen"`
	DataPath        string   `yaml:"data"` // JSON dataset, takes precedence over DBPath
	DBPath          string   `yaml:"db"`   // DuckDB file written by the import command
	AllowedOrigins  []string `yaml:"allowed_origins"`
	RateLimit       float64  `yaml:"rate_limit"` // requests per second, 0 disables limiting
	RateBurst       int      `yaml:"rate_burst"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
}

// Default returns the settings used when nothing else is configured.
func Default() *Config {
	return &Config{
		Listen:          "localhost:8080",
		DBPath:          "db/psgc.duckdb",
		RateBurst:       20,
		ShutdownTimeout: "10s",
	}
}

// Load builds the configuration. path may be empty; a missing .env file is
// not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 - path is provided by the operator
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("PSGC_LISTEN"); ok {
		c.Listen = v
	}

	if v, ok := os.LookupEnv("PSGC_DATA"); ok {
		c.DataPath = v
	}

	if v, ok := os.LookupEnv("PSGC_DB"); ok {
		c.DBPath = v
	}

	if v, ok := os.LookupEnv("PSGC_ALLOWED_ORIGINS"); ok {
		c.AllowedOrigins = splitList(v)
	}

	if v, ok := os.LookupEnv("PSGC_RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("PSGC_RATE_LIMIT: %w", err)
		}

		c.RateLimit = f
	}

	if v, ok := os.LookupEnv("PSGC_RATE_BURST"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("PSGC_RATE_BURST: %w", err)
		}

		c.RateBurst = n
	}

	if v, ok := os.LookupEnv("PSGC_SHUTDOWN_TIMEOUT"); ok {
		c.ShutdownTimeout = v
	}

	return nil
}

// Validate checks the settings the server needs to start.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return errors.New("config: listen address must not be empty")
	}

	if c.DataPath == "" && c.DBPath == "" {
		return errors.New("config: either a JSON dataset or a DuckDB file is required")
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("config: rate_limit must not be negative, got %v", c.RateLimit)
	}

	if c.RateLimit > 0 && c.RateBurst < 1 {
		return fmt.Errorf("config: rate_burst must be at least 1 when rate limiting, got %d", c.RateBurst)
	}

	if _, err := c.ShutdownGrace(); err != nil {
		return err
	}

	return nil
}

// ShutdownGrace parses ShutdownTimeout.
func (c *Config) ShutdownGrace() (time.Duration, error) {
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("config: invalid shutdown_timeout %q: %w", c.ShutdownTimeout, err)
	}

	return d, nil
}

func splitList(s string) []string {
	var ret []string

	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ret = append(ret, part)
		}
	}

	return ret
}
