// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	"errors"
	"fmt"

	"kiln-cli/pkg/types"
)

// ErrInvalidPortSpec is the sentinel error wrapped by InvalidPortSpecError.
var ErrInvalidPortSpec = errors.New("invalid port spec")

type (
	// PortSpec is an exposed port declaration: either a literal port number
	// or a single ${NAME} reference to a declared arg.
	PortSpec string

	// InvalidPortSpecError provides details about a malformed port spec.
	InvalidPortSpecError struct {
		Value  string
		Reason string
	}
)

// Error implements the error interface for InvalidPortSpecError.
func (e *InvalidPortSpecError) Error() string {
	return fmt.Sprintf("invalid port spec %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidPortSpec for errors.Is() compatibility.
func (e *InvalidPortSpecError) Unwrap() error { return ErrInvalidPortSpec }

// Validate checks that the declaration is a literal port in range or
// exactly one placeholder.
func (p PortSpec) Validate() error {
	if p.IsSymbolic() {
		return nil
	}
	if _, err := types.ParseExposedPort(string(p)); err != nil {
		return &InvalidPortSpecError{Value: string(p), Reason: err.Error()}
	}
	return nil
}

// IsSymbolic reports whether the declaration is a single ${NAME} placeholder.
func (p PortSpec) IsSymbolic() bool {
	names := PlaceholderNames(string(p))
	return len(names) == 1 && names[0].Placeholder() == string(p)
}

// Resolve expands any placeholder using vals and parses the result into a
// concrete port.
func (p PortSpec) Resolve(vals map[ArgName]string) (types.ExposedPort, error) {
	expanded, err := ExpandPlaceholders(string(p), vals)
	if err != nil {
		return 0, err
	}
	port, err := types.ParseExposedPort(expanded)
	if err != nil {
		return 0, &InvalidPortSpecError{Value: string(p), Reason: err.Error()}
	}
	return port, nil
}
