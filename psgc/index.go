// Copyright 2026 The PSGC API Authors
// SPDX-License-Identifier: Apache-2.0

package psgc

import (
	"fmt"
	"slices"
	"strings"

	"github.com/psgcapi/psgc/utils/textutils"
)

// PathSeparator joins names in FullPath.
const PathSeparator = " > "

type entry struct {
	unit   GeoUnit
	folded string // name, lowercased and without diacritics
}

// Index is an immutable in-memory view of the hierarchy. It is safe for
// concurrent use since nothing is written after NewIndex returns.
type Index struct {
	entries  []*entry
	byCode   map[string]*entry
	byLevel  [Barangay + 1][]*entry
	children map[string][]*entry
}

// NewIndex validates units and indexes them by code, level and parent.
// Dataset order is preserved in every listing.
func NewIndex(units []GeoUnit) (*Index, error) {
	idx := &Index{
		entries:  make([]*entry, 0, len(units)),
		byCode:   make(map[string]*entry, len(units)),
		children: make(map[string][]*entry),
	}

	for i, u := range units {
		if u.Code == "" {
			return nil, fmt.Errorf("%w: unit #%d (%q) has an empty code", ErrInvalidDataset, i, u.Name)
		}

		if !u.Level.Valid() {
			return nil, fmt.Errorf("%w: unit %q has invalid level %d", ErrInvalidDataset, u.Code, int(u.Level))
		}

		if _, ok := idx.byCode[u.Code]; ok {
			return nil, fmt.Errorf("%w: duplicate code %q", ErrInvalidDataset, u.Code)
		}

		e := &entry{unit: u, folded: textutils.LowerASCIIFolding(u.Name)}
		idx.entries = append(idx.entries, e)
		idx.byCode[u.Code] = e
		idx.byLevel[u.Level] = append(idx.byLevel[u.Level], e)
	}

	// Parents may appear after their children in the source, so links are
	// checked once every code is known.
	for _, e := range idx.entries {
		u := e.unit

		if u.Level == Region {
			if u.ParentCode != "" {
				return nil, fmt.Errorf("%w: region %q has parent %q", ErrInvalidDataset, u.Code, u.ParentCode)
			}

			continue
		}

		if u.ParentCode == "" {
			return nil, fmt.Errorf("%w: %s %q has no parent", ErrInvalidDataset, u.Level, u.Code)
		}

		parent, ok := idx.byCode[u.ParentCode]
		if !ok {
			return nil, fmt.Errorf("%w: %s %q references unknown parent %q", ErrInvalidDataset, u.Level, u.Code, u.ParentCode)
		}

		if parent.unit.Level != u.Level.Parent() {
			return nil, fmt.Errorf("%w: %s %q has parent %q at level %s, want %s",
				ErrInvalidDataset, u.Level, u.Code, u.ParentCode, parent.unit.Level, u.Level.Parent())
		}

		idx.children[u.ParentCode] = append(idx.children[u.ParentCode], e)
	}

	return idx, nil
}

// Len returns the number of units.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Count returns the number of units at level, or all units for AnyLevel.
func (idx *Index) Count(level Level) int {
	if level == AnyLevel {
		return len(idx.entries)
	}

	if !level.Valid() {
		return 0
	}

	return len(idx.byLevel[level])
}

// Get returns the unit with the given code.
func (idx *Index) Get(code string) (GeoUnit, error) {
	e, ok := idx.byCode[code]
	if !ok {
		return GeoUnit{}, &NotFoundError{Code: code}
	}

	return e.unit, nil
}

// ListByLevel returns the units at level. When parentCode is not empty only
// the direct children of that unit are returned.
func (idx *Index) ListByLevel(level Level, parentCode string) ([]GeoUnit, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLevel, level)
	}

	if parentCode == "" {
		return collect(idx.byLevel[level], nil), nil
	}

	if _, ok := idx.byCode[parentCode]; !ok {
		return nil, &NotFoundError{Code: parentCode, Parent: true}
	}

	return collect(idx.children[parentCode], func(e *entry) bool {
		return e.unit.Level == level
	}), nil
}

// Search returns the units whose name contains query, ignoring case and
// diacritics, in dataset order. An empty query matches everything. level
// narrows the search unless it is AnyLevel.
func (idx *Index) Search(query string, level Level) ([]GeoUnit, error) {
	candidates := idx.entries

	if level != AnyLevel {
		if !level.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidLevel, level)
		}

		candidates = idx.byLevel[level]
	}

	q := textutils.LowerASCIIFolding(query)
	if q == "" {
		return collect(candidates, nil), nil
	}

	return collect(candidates, func(e *entry) bool {
		return strings.Contains(e.folded, q)
	}), nil
}

// GetPath returns the chain of units from the region down to code, inclusive.
func (idx *Index) GetPath(code string) ([]GeoUnit, error) {
	e, ok := idx.byCode[code]
	if !ok {
		return nil, &NotFoundError{Code: code}
	}

	path := make([]GeoUnit, 0, e.unit.Level)
	for e != nil {
		path = append(path, e.unit)
		e = idx.byCode[e.unit.ParentCode]
	}

	slices.Reverse(path)

	return path, nil
}

// FullPath returns the names along GetPath joined by PathSeparator,
// e.g. "NCR > City of Manila > Tondo I/II > Barangay 1".
func (idx *Index) FullPath(code string) (string, error) {
	path, err := idx.GetPath(code)
	if err != nil {
		return "", err
	}

	names := make([]string, len(path))
	for i, u := range path {
		names[i] = u.Name
	}

	return strings.Join(names, PathSeparator), nil
}

// Units returns every unit in dataset order.
func (idx *Index) Units() []GeoUnit {
	return collect(idx.entries, nil)
}

// collect copies the units of entries accepted by keep (all when nil). The
// result is never nil so that it encodes as an empty JSON array.
func collect(entries []*entry, keep func(*entry) bool) []GeoUnit {
	ret := make([]GeoUnit, 0, len(entries))

	for _, e := range entries {
		if keep == nil || keep(e) {
			ret = append(ret, e.unit)
		}
	}

	return ret
}
