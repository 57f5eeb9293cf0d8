// Copyright 2026 The PSGC API Authors
// SPDX-License-Identifier: Apache-2.0

package psgc

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned, wrapped in a *NotFoundError, for unknown codes.
	ErrNotFound = errors.New("not found")
	// ErrInvalidLevel is returned for level names or values outside the hierarchy.
	ErrInvalidLevel = errors.New("invalid level")
	// ErrInvalidDataset is returned when loaded units break the hierarchy invariants.
	ErrInvalidDataset = errors.New("invalid dataset")
)

// NotFoundError reports an unknown unit code or an unknown parent reference.
type NotFoundError struct {
	Code   string
	Parent bool
}

func (e *NotFoundError) Error() string {
	if e.Parent {
		return fmt.Sprintf("parent %q not found", e.Code)
	}

	return fmt.Sprintf("unit %q not found", e.Code)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// IsNotFound reports whether err is a lookup of an unknown code.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
