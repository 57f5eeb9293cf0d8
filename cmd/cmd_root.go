// Copyright 2026 The PSGC API Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/psgcapi/psgc/config"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&rootOptions.configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&rootOptions.dataPath, "data", "", "JSON dataset to load instead of the DuckDB file")
	rootCmd.PersistentFlags().StringVar(&rootOptions.dbPath, "db", "", "DuckDB file holding the imported dataset")
}

var rootCmd = &cobra.Command{
	Use:   "psgc",
	Short: "Philippine Standard Geographic Code reference API",
	Long: `
psgc serves the PSGC hierarchy (regions, provinces, municipalities and
barangays) over a read-only HTTP API, and imports the PSA publication datafile
into a local DuckDB file the server boots from.
`,
	SilenceUsage: true,
}

var rootOptions struct {
	configPath string
	dataPath   string
	dbPath     string
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration and lets explicitly set flags win.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(rootOptions.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	if cmd.Flags().Changed("data") {
		cfg.DataPath = rootOptions.dataPath
	}

	if cmd.Flags().Changed("db") {
		cfg.DBPath = rootOptions.dbPath
	}

	return cfg, nil
}
