// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	"errors"
	"fmt"
	"regexp"

	"kiln-cli/pkg/types"
)

var (
	// ErrInvalidArgName is the sentinel error wrapped by InvalidArgNameError.
	ErrInvalidArgName = errors.New("invalid arg name")

	// ErrUnknownArg is the sentinel error wrapped by UnknownArgError.
	ErrUnknownArg = errors.New("unknown arg")

	argNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	// placeholderPattern matches ${NAME} references inside recipe fields.
	placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)
)

type (
	// ArgName identifies a build-time parameter. Valid names are shell
	// identifiers: a letter or underscore followed by letters, digits, or
	// underscores.
	ArgName string

	// InvalidArgNameError is returned when an ArgName value does not match
	// the identifier pattern.
	InvalidArgNameError struct {
		Value ArgName
	}

	// UnknownArgError is returned when a ${NAME} placeholder references an
	// arg that is not declared in the recipe.
	UnknownArgError struct {
		Name ArgName
	}

	// Arg declares a build-time parameter. Values are resolved from CLI
	// flags, arg files, the process environment, and finally Default.
	Arg struct {
		Name        ArgName               `json:"name"`
		Default     string                `json:"default,omitempty"`
		Secret      bool                  `json:"secret"`
		Description types.DescriptionText `json:"description,omitempty"`
	}
)

// String returns the string representation of the ArgName.
func (n ArgName) String() string { return string(n) }

// Validate returns nil if the ArgName is valid, or a validation error if not.
func (n ArgName) Validate() error {
	if !argNamePattern.MatchString(string(n)) {
		return &InvalidArgNameError{Value: n}
	}
	return nil
}

// Placeholder returns the ${NAME} reference form of the arg name.
func (n ArgName) Placeholder() string { return "${" + string(n) + "}" }

// Error implements the error interface for InvalidArgNameError.
func (e *InvalidArgNameError) Error() string {
	return fmt.Sprintf("invalid arg name %q: must match [A-Za-z_][A-Za-z0-9_]*", e.Value)
}

// Unwrap returns ErrInvalidArgName for errors.Is() compatibility.
func (e *InvalidArgNameError) Unwrap() error { return ErrInvalidArgName }

// Error implements the error interface for UnknownArgError.
func (e *UnknownArgError) Error() string {
	return fmt.Sprintf("unknown arg %q: placeholder does not reference a declared arg", e.Name)
}

// Unwrap returns ErrUnknownArg for errors.Is() compatibility.
func (e *UnknownArgError) Unwrap() error { return ErrUnknownArg }

// validate checks a single arg declaration.
func (a *Arg) validate() error {
	if err := a.Name.Validate(); err != nil {
		return err
	}
	if ok, errs := a.Description.IsValid(); !ok {
		return fmt.Errorf("arg %q: %w", a.Name, errs[0])
	}
	return nil
}

// PlaceholderNames returns the arg names referenced by ${NAME} placeholders
// in s, in order of first appearance, without duplicates.
func PlaceholderNames(s string) []ArgName {
	var names []ArgName
	seen := make(map[ArgName]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(s, -1) {
		name := ArgName(m[1])
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// ExpandPlaceholders replaces every ${NAME} placeholder in s with the value
// from vals. Referencing a name absent from vals is an error.
func ExpandPlaceholders(s string, vals map[ArgName]string) (string, error) {
	var expandErr error
	out := placeholderPattern.ReplaceAllStringFunc(s, func(m string) string {
		name := ArgName(m[2 : len(m)-1])
		v, ok := vals[name]
		if !ok {
			if expandErr == nil {
				expandErr = &UnknownArgError{Name: name}
			}
			return m
		}
		return v
	})
	if expandErr != nil {
		return "", expandErr
	}
	return out, nil
}
