// Copyright 2026 The PSGC API Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/psgcapi/psgc/psgc"
	"github.com/psgcapi/psgc/utils/textutils"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Writes the imported dataset as JSON, sorted by code",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		if cfg.DBPath == "" {
			return errors.New("a DuckDB file is required (--db)")
		}

		if exportOutput == "" || exportOutput == "-" {
			return exportDataset(cfg.DBPath, os.Stdout)
		}

		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("creating %s: %w", exportOutput, err)
		}

		if err := exportDataset(cfg.DBPath, f); err != nil {
			return errors.Join(err, f.Close())
		}

		return f.Close()
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file, stdout when empty")
}

func exportDataset(dbPath string, w io.Writer) error {
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("opening dataset: %w", err)
	}

	repo, err := openRepository(dbPath)
	if err != nil {
		return err
	}
	defer repo.DB().Close()

	units, err := repo.All()
	if err != nil {
		return fmt.Errorf("reading units: %w", err)
	}

	if err := psgc.WriteJSON(w, units); err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}

	log.Printf("💾 Exported %s units", textutils.FormatInt(len(units)))

	return nil
}
