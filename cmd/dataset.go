// Copyright 2026 The PSGC API Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/psgcapi/psgc/config"
	"github.com/psgcapi/psgc/psgc"
	"github.com/psgcapi/psgc/utils/textutils"
)

// openRepository opens (creating when needed) the DuckDB file at path.
func openRepository(path string) (psgc.UnitRepository, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	repo := psgc.NewUnitRepository(db)
	if err := repo.CreateSchema(); err != nil {
		return nil, errors.Join(fmt.Errorf("creating table: %w", err), db.Close())
	}

	return repo, nil
}

// loadUnits reads the dataset from the JSON file when configured, otherwise
// from the DuckDB file.
func loadUnits(cfg *config.Config) ([]psgc.GeoUnit, error) {
	if cfg.DataPath != "" {
		units, err := psgc.LoadJSON(cfg.DataPath)
		if err != nil {
			return nil, fmt.Errorf("loading dataset: %w", err)
		}

		return units, nil
	}

	if _, err := os.Stat(cfg.DBPath); err != nil {
		return nil, fmt.Errorf("loading dataset: %w (run the import command first)", err)
	}

	repo, err := openRepository(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	defer repo.DB().Close()

	units, err := repo.All()
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}

	return units, nil
}

func loadIndex(cfg *config.Config) (*psgc.Index, error) {
	units, err := loadUnits(cfg)
	if err != nil {
		return nil, err
	}

	idx, err := psgc.NewIndex(units)
	if err != nil {
		return nil, fmt.Errorf("indexing dataset: %w", err)
	}

	log.Printf("📚 Loaded %s units (%s regions, %s provinces, %s municipalities, %s barangays)",
		textutils.FormatInt(idx.Len()),
		textutils.FormatInt(idx.Count(psgc.Region)),
		textutils.FormatInt(idx.Count(psgc.Province)),
		textutils.FormatInt(idx.Count(psgc.Municipality)),
		textutils.FormatInt(idx.Count(psgc.Barangay)),
	)

	return idx, nil
}
