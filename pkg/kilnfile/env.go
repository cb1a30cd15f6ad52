// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidEnvVarName is the sentinel error wrapped by InvalidEnvVarNameError.
var ErrInvalidEnvVarName = errors.New("invalid environment variable name")

var envVarNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type (
	// EnvVarName identifies an environment variable set in the image.
	EnvVarName string

	// SearchPath is a colon separated lookup variable such as PYTHONPATH.
	// The variable is set to the append entries joined in declared order,
	// so earlier entries shadow later ones at lookup time.
	SearchPath struct {
		Name   EnvVarName `json:"name"`
		Append []string   `json:"append"`
	}

	// Env describes the environment baked into the image.
	Env struct {
		Path *SearchPath           `json:"path,omitempty"`
		Vars map[EnvVarName]string `json:"vars,omitempty"`
	}

	// InvalidEnvVarNameError provides details about a malformed variable name.
	InvalidEnvVarNameError struct {
		Value string
	}
)

// Error implements the error interface for InvalidEnvVarNameError.
func (e *InvalidEnvVarNameError) Error() string {
	return fmt.Sprintf("invalid environment variable name %q", e.Value)
}

// Unwrap returns ErrInvalidEnvVarName for errors.Is() compatibility.
func (e *InvalidEnvVarNameError) Unwrap() error { return ErrInvalidEnvVarName }

// Validate checks that the name is a POSIX style identifier.
func (n EnvVarName) Validate() error {
	if !envVarNamePattern.MatchString(string(n)) {
		return &InvalidEnvVarNameError{Value: string(n)}
	}
	return nil
}

// Value returns the joined search path the variable is set to.
func (p *SearchPath) Value() string {
	return strings.Join(p.Append, ":")
}

func (p *SearchPath) validate() error {
	if err := p.Name.Validate(); err != nil {
		return err
	}
	if len(p.Append) == 0 {
		return fmt.Errorf("search path %s: must append at least one entry", p.Name)
	}
	for i, entry := range p.Append {
		if entry == "" {
			return fmt.Errorf("search path %s: entry %d is empty", p.Name, i)
		}
		if strings.Contains(entry, ":") {
			return fmt.Errorf("search path %s: entry %q contains the separator", p.Name, entry)
		}
	}
	return nil
}

func (e *Env) validate() error {
	if e.Path != nil {
		if err := e.Path.validate(); err != nil {
			return err
		}
	}
	for name := range e.Vars {
		if err := name.Validate(); err != nil {
			return err
		}
	}
	return nil
}
