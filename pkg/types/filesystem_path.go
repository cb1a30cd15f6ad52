// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrInvalidFilesystemPath is the sentinel error wrapped by InvalidFilesystemPathError.
var ErrInvalidFilesystemPath = errors.New("invalid filesystem path")

type (
	// FilesystemPath is a filesystem location, absolute or relative. A valid
	// path must be non-empty and not whitespace-only; the zero value ("") is
	// invalid.
	FilesystemPath string

	// InvalidFilesystemPathError is returned when a FilesystemPath is empty
	// or whitespace-only.
	InvalidFilesystemPathError struct {
		Value FilesystemPath
	}
)

// Error implements the error interface.
func (e *InvalidFilesystemPathError) Error() string {
	return fmt.Sprintf("invalid filesystem path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidFilesystemPath so callers can use errors.Is for programmatic detection.
func (e *InvalidFilesystemPathError) Unwrap() error { return ErrInvalidFilesystemPath }

// IsValid reports whether the FilesystemPath is valid, returning the
// validation errors when it is not.
func (p FilesystemPath) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidFilesystemPathError{Value: p}}
	}
	return true, nil
}

// IsAbs reports whether the path is absolute. Kilnfile paths address the
// image filesystem, so absoluteness follows POSIX rules regardless of the
// host platform.
func (p FilesystemPath) IsAbs() bool { return path.IsAbs(string(p)) }

// String returns the string representation of the FilesystemPath.
func (p FilesystemPath) String() string { return string(p) }
