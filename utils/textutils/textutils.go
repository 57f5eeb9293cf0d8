// Copyright 2026 The PSGC API Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils holds the string helpers shared by the index and the CLI.
package textutils

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LowerASCIIFolding lowercases and trims s, and strips combining marks so that
// "Parañaque" folds to "paranaque".
func LowerASCIIFolding(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.TrimSpace(strings.ToLower(s)),
	)

	return s
}

// CollapseSpaces trims s and replaces every run of whitespace with a single space.
// Publication names sometimes carry doubled or non-breaking spaces.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FormatInt groups the digits of n in thousands, e.g. 42011 as "42,011".
func FormatInt[T ~int | ~int64](n T) string {
	digits := strconv.FormatInt(int64(n), 10)

	sign := ""
	if n < 0 {
		sign, digits = "-", digits[1:]
	}

	var b strings.Builder

	b.WriteString(sign)

	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}

		b.WriteRune(d)
	}

	return b.String()
}
