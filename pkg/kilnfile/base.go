// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/distribution/reference"
)

// ErrInvalidImageRef is the sentinel error wrapped by InvalidImageRefError.
var ErrInvalidImageRef = errors.New("invalid image reference")

type (
	// ImageRef represents an OCI image reference (name, optional tag or
	// digest). A valid ref must parse under docker reference normalization
	// rules, e.g. "ubuntu:22.04" or
	// "pytorch/pytorch:1.1.0-cuda10.0-cudnn7.5-runtime".
	ImageRef string

	// InvalidImageRefError is returned when an ImageRef value is empty or
	// does not parse as a normalized image reference.
	InvalidImageRefError struct {
		Value  ImageRef
		Reason string
	}

	// Base identifies the image the recipe builds on. Exactly one base is
	// allowed and it is fixed for the whole recipe.
	Base struct {
		Image ImageRef `json:"image"`
	}
)

// String returns the string representation of the ImageRef.
func (r ImageRef) String() string { return string(r) }

// Validate returns nil if the ImageRef is valid, or a validation error if not.
func (r ImageRef) Validate() error {
	s := string(r)
	if strings.TrimSpace(s) == "" {
		return &InvalidImageRefError{Value: r, Reason: "must not be empty"}
	}
	if _, err := reference.ParseNormalizedNamed(s); err != nil {
		return &InvalidImageRefError{Value: r, Reason: err.Error()}
	}
	return nil
}

// Normalized returns the fully qualified form of the reference
// (e.g. "ubuntu:22.04" becomes "docker.io/library/ubuntu:22.04").
func (r ImageRef) Normalized() (string, error) {
	named, err := reference.ParseNormalizedNamed(string(r))
	if err != nil {
		return "", &InvalidImageRefError{Value: r, Reason: err.Error()}
	}
	return named.String(), nil
}

// Error implements the error interface for InvalidImageRefError.
func (e *InvalidImageRefError) Error() string {
	return fmt.Sprintf("invalid image reference %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidImageRef for errors.Is() compatibility.
func (e *InvalidImageRefError) Unwrap() error { return ErrInvalidImageRef }

// validate checks the base section. The image may reference declared args,
// so placeholders are substituted with a neutral value before parsing; the
// concrete reference is checked again once args are resolved.
func (b *Base) validate() error {
	s := string(b.Image)
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("base: %w", &InvalidImageRefError{Value: b.Image, Reason: "must not be empty"})
	}
	probe := s
	if names := PlaceholderNames(s); len(names) > 0 {
		vals := make(map[ArgName]string, len(names))
		for _, n := range names {
			vals[n] = "x"
		}
		if expanded, err := ExpandPlaceholders(s, vals); err == nil {
			probe = expanded
		}
	}
	if _, err := reference.ParseNormalizedNamed(probe); err != nil {
		return fmt.Errorf("base: %w", &InvalidImageRefError{Value: b.Image, Reason: err.Error()})
	}
	return nil
}
