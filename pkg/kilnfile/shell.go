// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"kiln-cli/pkg/types"
)

// ErrInvalidShellLine is the sentinel error wrapped by InvalidShellLineError.
var ErrInvalidShellLine = errors.New("invalid shell line")

type (
	// ShellLine is a single line of bash, used for setup commands and for
	// rc file entries. Placeholders are allowed; they expand before the
	// line is written or run.
	ShellLine string

	// Shell describes the startup file finalization of the image: rc lines
	// appended, in declared order, to the account's shell startup file.
	Shell struct {
		// RCFile overrides the startup file. Empty means <home>/.bashrc.
		RCFile types.FilesystemPath `json:"rc_file,omitempty"`

		RC []ShellLine `json:"rc,omitempty"`
	}

	// InvalidShellLineError provides details about an unparseable shell line.
	InvalidShellLineError struct {
		Value  string
		Reason string
	}
)

// Error implements the error interface for InvalidShellLineError.
func (e *InvalidShellLineError) Error() string {
	return fmt.Sprintf("invalid shell line %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidShellLine for errors.Is() compatibility.
func (e *InvalidShellLineError) Unwrap() error { return ErrInvalidShellLine }

// Validate checks that the line is non-empty, single line bash. ${NAME}
// placeholders share bash parameter expansion syntax, so lines with
// unresolved placeholders still parse.
func (l ShellLine) Validate() error {
	if strings.TrimSpace(string(l)) == "" {
		return &InvalidShellLineError{Value: string(l), Reason: "must not be empty"}
	}
	if strings.ContainsAny(string(l), "\n\r") {
		return &InvalidShellLineError{Value: string(l), Reason: "must be a single line"}
	}

	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	if _, err := parser.Parse(strings.NewReader(string(l)), ""); err != nil {
		return &InvalidShellLineError{Value: string(l), Reason: err.Error()}
	}
	return nil
}

// RCFilePath returns the startup file the rc lines are appended to,
// defaulting to <home>/.bashrc for the given account home.
func (s *Shell) RCFilePath(home types.FilesystemPath) types.FilesystemPath {
	if s.RCFile != "" {
		return s.RCFile
	}
	return types.FilesystemPath(path.Join(string(home), ".bashrc"))
}

func (s *Shell) validate() error {
	if s.RCFile != "" && !s.RCFile.IsAbs() {
		return fmt.Errorf("shell rc_file %q must be absolute", s.RCFile)
	}
	for _, line := range s.RC {
		if err := line.Validate(); err != nil {
			return err
		}
	}
	return nil
}
