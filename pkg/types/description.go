// SPDX-License-Identifier: MPL-2.0

// Package types holds the small validated value types shared across kiln's
// domain packages (kilnfile, lockfile, render). Each type pairs a validation
// method with a dedicated error type that wraps a package-level sentinel, so
// callers can branch with errors.Is without string matching.
//
// This package is a leaf dependency: it imports only the standard library.
// Domain packages import it; it never imports domain packages.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDescriptionText is the sentinel error wrapped by InvalidDescriptionTextError.
var ErrInvalidDescriptionText = errors.New("invalid description text")

type (
	// DescriptionText is free-form prose attached to a recipe or a build
	// argument, surfaced as the rendered Dockerfile's header comment and in
	// generated kilnfiles. An empty description is fine; a value made of
	// nothing but whitespace is not.
	DescriptionText string

	// InvalidDescriptionTextError is returned when a DescriptionText is
	// non-empty but contains only whitespace.
	InvalidDescriptionTextError struct {
		Value DescriptionText
	}
)

// Error implements the error interface.
func (e *InvalidDescriptionTextError) Error() string {
	return fmt.Sprintf("invalid description text: must not be whitespace-only (got %q)", e.Value)
}

// Unwrap returns ErrInvalidDescriptionText so callers can use errors.Is for programmatic detection.
func (e *InvalidDescriptionTextError) Unwrap() error { return ErrInvalidDescriptionText }

// IsValid reports whether the DescriptionText is valid, returning the
// validation errors when it is not. The zero value ("") is valid.
func (d DescriptionText) IsValid() (bool, []error) {
	if d == "" {
		return true, nil
	}
	if strings.TrimSpace(string(d)) == "" {
		return false, []error{&InvalidDescriptionTextError{Value: d}}
	}
	return true, nil
}

// String returns the string representation of the DescriptionText.
func (d DescriptionText) String() string { return string(d) }
