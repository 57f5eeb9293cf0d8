// Copyright 2026 The PSGC API Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())

	grace, err := cfg.ShutdownGrace()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, grace)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "psgc.yaml", `
listen: ":9090"
data: testdata/psgc.json
allowed_origins:
  - https://example.ph
  - http://localhost:5173
rate_limit: 2.5
rate_burst: 100
shutdown_timeout: 3s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, &Config{
		Listen:          ":9090",
		DataPath:        "testdata/psgc.json",
		DBPath:          "db/psgc.duckdb",
		AllowedOrigins:  []string{"https://example.ph", "http://localhost:5173"},
		RateLimit:       2.5,
		RateBurst:       100,
		ShutdownTimeout: "3s",
	}, cfg)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "psgc.yaml", "listen: \":9090\"\nrate_limit: 5.0\n")

	t.Setenv("PSGC_LISTEN", "0.0.0.0:8000")
	t.Setenv("PSGC_ALLOWED_ORIGINS", " https://a.ph, ,https://b.ph ")
	t.Setenv("PSGC_RATE_LIMIT", "12.5")
	t.Setenv("PSGC_RATE_BURST", "7")
	t.Setenv("PSGC_DB", "/var/lib/psgc.duckdb")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Listen)
	assert.Equal(t, []string{"https://a.ph", "https://b.ph"}, cfg.AllowedOrigins)
	assert.InDelta(t, 12.5, cfg.RateLimit, 0.001)
	assert.Equal(t, 7, cfg.RateBurst)
	assert.Equal(t, "/var/lib/psgc.duckdb", cfg.DBPath)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "listen: [unterminated"))
	require.Error(t, err)

	t.Setenv("PSGC_RATE_LIMIT", "fast")
	_, err = Load("")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty listen", func(c *Config) { c.Listen = "" }},
		{"no dataset", func(c *Config) { c.DataPath, c.DBPath = "", "" }},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }},
		{"zero burst", func(c *Config) { c.RateLimit, c.RateBurst = 10, 0 }},
		{"bad timeout", func(c *Config) { c.ShutdownTimeout = "soon" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
