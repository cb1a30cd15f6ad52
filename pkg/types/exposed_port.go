// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidExposedPort is the sentinel error wrapped by InvalidExposedPortError.
var ErrInvalidExposedPort = errors.New("invalid exposed port")

type (
	// ExposedPort represents a TCP port exposed by a built image.
	// Unlike a listening port there is no auto-select semantic: a valid
	// exposed port must be in the range 1-65535.
	ExposedPort int

	// InvalidExposedPortError is returned when an ExposedPort value is
	// outside the valid range (1-65535).
	InvalidExposedPortError struct {
		Value ExposedPort
	}
)

// String returns the decimal string representation of the ExposedPort.
func (p ExposedPort) String() string { return strconv.Itoa(int(p)) }

// Validate returns an error if the ExposedPort is outside the valid range.
func (p ExposedPort) Validate() error {
	if p < 1 || p > 65535 {
		return &InvalidExposedPortError{Value: p}
	}
	return nil
}

// ParseExposedPort parses a decimal string into a validated ExposedPort.
func ParseExposedPort(s string) (ExposedPort, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid exposed port %q: %w", s, err)
	}
	p := ExposedPort(n)
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return p, nil
}

// Error implements the error interface for InvalidExposedPortError.
func (e *InvalidExposedPortError) Error() string {
	return fmt.Sprintf("invalid exposed port %d: must be 1-65535", e.Value)
}

// Unwrap returns ErrInvalidExposedPort for errors.Is() compatibility.
func (e *InvalidExposedPortError) Unwrap() error { return ErrInvalidExposedPort }
