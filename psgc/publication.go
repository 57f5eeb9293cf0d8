// Copyright 2026 The PSGC API Authors
// SPDX-License-Identifier: Apache-2.0

package psgc

import (
	"fmt"
	"slices"
	"strings"

	"github.com/psgcapi/psgc/utils/textutils"
)

// Column headers of the PSGC sheet in the PSA publication datafile.
const (
	ColumnCode  = "10-digit PSGC"
	ColumnName  = "Name"
	ColumnLevel = "Geographic Level"
)

// PublicationRow is one row of the PSA publication datafile.
type PublicationRow struct {
	Code  string
	Name  string
	Level string // Reg, Prov, Dist, City, Mun, SubMun, SGU, Bgy, ...
}

// PublicationReport summarizes what FromPublication kept and dropped.
type PublicationReport struct {
	Rows    int
	Units   int
	Skipped map[string]int // rows dropped by publication level
	Orphans []string       // codes whose parent could not be resolved
}

// publicationLevels maps the publication's level labels; labels missing here
// are not part of the four-level hierarchy and get skipped.
var publicationLevels = map[string]Level{
	"reg":    Region,
	"prov":   Province,
	"dist":   Province,
	"city":   Municipality,
	"mun":    Municipality,
	"submun": Municipality,
	"sgu":    Municipality,
	"bgy":    Barangay,
}

// CityMunicipalitySuffix is appended to the code of a province-equivalent
// city to name the municipality that holds its barangays when the publication
// files them directly under the city. Manila, whose barangays sit under
// sub-municipalities, gets none.
const CityMunicipalitySuffix = "-M"

// Code prefix lengths identifying each level, by code width. Nine digits is
// the pre-2021 scheme, also used by the short codes of some derived datasets.
var (
	prefixes10 = [Barangay + 1]int{0, 2, 5, 7, 10}
	prefixes9  = [Barangay + 1]int{0, 2, 4, 6, 9}
)

func prefixesFor(code string) [Barangay + 1]int {
	if len(code) == 10 {
		return prefixes10
	}

	return prefixes9
}

// FromPublication converts publication rows into units with derived parent
// codes. Barangays filed directly under a province-equivalent city are placed
// under a municipality synthesized for that city (see CityMunicipalitySuffix).
// Rows whose parent still cannot be found one level above are reported as
// orphans and dropped, or fail the conversion when strict is set.
func FromPublication(rows []PublicationRow, strict bool) ([]GeoUnit, PublicationReport, error) {
	report := PublicationReport{
		Rows:    len(rows),
		Skipped: make(map[string]int),
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(cleanCode(row.Code)))
	}

	units := make([]GeoUnit, 0, len(rows))
	levels := make(map[string]Level, len(rows))
	promoted := make(map[string]bool)

	for _, row := range rows {
		code := normalizeCode(row.Code, width)
		label := strings.TrimSpace(row.Level)

		level, ok := publicationLevels[strings.ToLower(label)]
		if !ok || code == "" {
			report.Skipped[label]++

			continue
		}

		if level == Municipality && isProvinceEquivalent(code) {
			level = Province
			promoted[code] = true
		}

		if _, dup := levels[code]; dup {
			return nil, report, fmt.Errorf("%w: duplicate code %q", ErrInvalidDataset, code)
		}

		levels[code] = level
		units = append(units, GeoUnit{
			Code:  code,
			Name:  textutils.CollapseSpaces(row.Name),
			Level: level,
		})
	}

	kept := units[:0]
	cities := make(map[string]bool) // province-equivalents needing a municipality

	for _, u := range units {
		if u.Level != Region {
			parent, ok := deriveParent(u.Code, u.Level, levels)
			if !ok && u.Level == Barangay {
				var city string
				if city, ok = promotedCity(u.Code, promoted); ok {
					parent = city + CityMunicipalitySuffix
					cities[city] = true
				}
			}

			if !ok {
				if strict {
					return nil, report, fmt.Errorf("%w: no %s found for %s %q", ErrInvalidDataset, u.Level.Parent(), u.Level, u.Code)
				}

				report.Orphans = append(report.Orphans, u.Code)

				continue
			}

			u.ParentCode = parent
		}

		kept = append(kept, u)
	}

	ret := make([]GeoUnit, 0, len(kept)+len(cities))

	for _, u := range kept {
		ret = append(ret, u)

		if u.Level == Province && cities[u.Code] {
			ret = append(ret, GeoUnit{
				Code:       u.Code + CityMunicipalitySuffix,
				Name:       u.Name,
				Level:      Municipality,
				ParentCode: u.Code,
			})
			delete(cities, u.Code)
		}
	}

	// cities dropped as orphans take their barangays along; strict mode
	// already failed on the city
	if len(cities) > 0 {
		ret = slices.DeleteFunc(ret, func(u GeoUnit) bool {
			city, ok := strings.CutSuffix(u.ParentCode, CityMunicipalitySuffix)
			if !ok || !cities[city] {
				return false
			}

			report.Orphans = append(report.Orphans, u.Code)

			return true
		})
	}

	report.Units = len(ret)

	return ret, report, nil
}

// cleanCode trims the code and removes the ".0" a spreadsheet adds when the
// cell holds a number.
func cleanCode(code string) string {
	code = strings.TrimSpace(code)
	if digits, ok := strings.CutSuffix(code, ".0"); ok && isDigits(digits) {
		return digits
	}

	return code
}

// normalizeCode cleans the code and restores the leading zero spreadsheets
// drop from ten-digit codes of regions 01 to 09.
func normalizeCode(code string, width int) string {
	code = cleanCode(code)
	if width == 10 && len(code) == 9 && isDigits(code) {
		code = "0" + code
	}

	return code
}

// isProvinceEquivalent reports whether a city or municipality code has no
// municipality digits, which is how the PSGC codes NCR cities and other
// units that stand in for a province.
func isProvinceEquivalent(code string) bool {
	p := prefixesFor(code)[Province]
	if len(code) < p {
		return false
	}

	return strings.Trim(code[p:], "0") == ""
}

// deriveParent finds the unit one level above whose code is the level prefix
// of code, either zero padded to the full width or unpadded.
func deriveParent(code string, level Level, levels map[string]Level) (string, bool) {
	parentLevel := level.Parent()
	p := prefixesFor(code)[parentLevel]

	if p >= len(code) {
		return "", false
	}

	candidates := []string{
		code[:p] + strings.Repeat("0", len(code)-p),
		code[:p],
	}

	for _, c := range candidates {
		if c == code {
			continue
		}

		if l, ok := levels[c]; ok && l == parentLevel {
			return c, true
		}
	}

	return "", false
}

// promotedCity finds the province-equivalent city whose code is the province
// prefix of a barangay code, padded or unpadded.
func promotedCity(code string, promoted map[string]bool) (string, bool) {
	p := prefixesFor(code)[Province]
	if p >= len(code) {
		return "", false
	}

	for _, c := range []string{code[:p] + strings.Repeat("0", len(code)-p), code[:p]} {
		if promoted[c] {
			return c, true
		}
	}

	return "", false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return s != ""
}
