// Copyright 2026 The PSGC API Authors
// SPDX-License-Identifier: Apache-2.0

// Package psgc models the Philippine Standard Geographic Code hierarchy and
// answers lookups over it.
package psgc

import (
	"fmt"
	"strings"
)

// Level is a tier of the PSGC hierarchy. Region is the root.
type Level int

const (
	// AnyLevel matches every level in searches. It is never a unit's level.
	AnyLevel Level = iota
	Region
	Province
	Municipality
	Barangay
)

// Levels lists the valid levels from the root down.
var Levels = []Level{Region, Province, Municipality, Barangay}

var levelNames = [...]string{"", "region", "province", "municipality", "barangay"}

var levelPlurals = [...]string{"", "regions", "provinces", "municipalities", "barangays"}

// levelAliases maps every accepted spelling, including the abbreviations of
// the PSA publication datafile, to a level.
var levelAliases = map[string]Level{
	"region":         Region,
	"regions":        Region,
	"reg":            Region,
	"province":       Province,
	"provinces":      Province,
	"prov":           Province,
	"dist":           Province,
	"district":       Province,
	"municipality":   Municipality,
	"municipalities": Municipality,
	"mun":            Municipality,
	"city":           Municipality,
	"cities":         Municipality,
	"submun":         Municipality,
	"sgu":            Municipality,
	"barangay":       Barangay,
	"barangays":      Barangay,
	"bgy":            Barangay,
}

// ParseLevel parses a level name. The empty string yields AnyLevel.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return AnyLevel, nil
	}

	if l, ok := levelAliases[s]; ok {
		return l, nil
	}

	return AnyLevel, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

// Valid reports whether l is one of the four hierarchy levels.
func (l Level) Valid() bool {
	return l >= Region && l <= Barangay
}

// Parent returns the level right above l, or AnyLevel for Region.
func (l Level) Parent() Level {
	if !l.Valid() || l == Region {
		return AnyLevel
	}

	return l - 1
}

// Child returns the level right below l, or AnyLevel for Barangay.
func (l Level) Child() Level {
	if !l.Valid() || l == Barangay {
		return AnyLevel
	}

	return l + 1
}

func (l Level) String() string {
	if l.Valid() {
		return levelNames[l]
	}

	if l == AnyLevel {
		return "any"
	}

	return fmt.Sprintf("Level(%d)", int(l))
}

// Plural returns the collection name used in API paths, e.g. "provinces".
func (l Level) Plural() string {
	if l.Valid() {
		return levelPlurals[l]
	}

	return l.String()
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, int(l))
	}

	return []byte(levelNames[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}

	if parsed == AnyLevel {
		return fmt.Errorf("%w: empty level", ErrInvalidLevel)
	}

	*l = parsed

	return nil
}

// GeoUnit is one node of the hierarchy. ParentCode is empty for regions.
type GeoUnit struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Level      Level  `json:"level"`
	ParentCode string `json:"parent_code,omitempty"`
}

func (u GeoUnit) String() string {
	return fmt.Sprintf("%s %s (%s)", u.Level, u.Code, u.Name)
}
