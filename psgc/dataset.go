// Copyright 2026 The PSGC API Authors
// SPDX-License-Identifier: Apache-2.0

package psgc

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// LoadJSON reads a JSON dataset file: an array of GeoUnit objects.
func LoadJSON(path string) ([]GeoUnit, error) {
	f, err := os.Open(path) // #nosec G304 - path is provided by the operator
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	return ReadJSON(f)
}

// ReadJSON decodes a JSON dataset.
func ReadJSON(r io.Reader) ([]GeoUnit, error) {
	var units []GeoUnit
	if err := json.NewDecoder(r).Decode(&units); err != nil {
		return nil, fmt.Errorf("parsing dataset JSON: %w", err)
	}

	return units, nil
}

// WriteJSON encodes units as an indented JSON array sorted by code, which
// keeps diffs small when the file is checked into version control.
func WriteJSON(w io.Writer, units []GeoUnit) error {
	sorted := slices.Clone(units)
	slices.SortStableFunc(sorted, func(a, b GeoUnit) int {
		return strings.Compare(a.Code, b.Code)
	})

	if sorted == nil {
		sorted = []GeoUnit{}
	}

	data, err := json.MarshalIndent(sorted, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling dataset: %w", err)
	}

	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}

	return nil
}
