// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	"errors"
	"fmt"
	"regexp"

	"kiln-cli/pkg/types"
)

// Sentinel errors for dependency validation, usable with errors.Is().
var (
	ErrInvalidDependencyName = errors.New("invalid dependency name")
	ErrInvalidRepoURL        = errors.New("invalid repository URL")
	ErrInvalidCommitHash     = errors.New("invalid commit hash")
)

var (
	dependencyNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)
	commitHashPattern     = regexp.MustCompile(`^[0-9a-f]{40}$`)
)

type (
	// DependencyName identifies a source dependency within a kilnfile.
	DependencyName string

	// RepoURL is a git remote in any form git itself accepts. Placeholders
	// are allowed; they expand from declared args before cloning.
	RepoURL string

	// CommitHash is a full 40 character git object name.
	CommitHash string

	// Dependency is a source repository cloned at a pinned revision into a
	// fixed path inside the image. Dependencies clone in declared order.
	Dependency struct {
		Name DependencyName `json:"name"`
		Repo RepoURL        `json:"repo"`

		// Ref is the branch or tag resolved when no commit is pinned.
		Ref string `json:"ref,omitempty"`

		// Commit pins the exact revision. May be empty when a lock file
		// supplies it instead.
		Commit CommitHash `json:"commit,omitempty"`

		// Path the repository is cloned into. Absolute.
		Path types.FilesystemPath `json:"path"`
	}

	// InvalidDependencyNameError provides details about a malformed name.
	InvalidDependencyNameError struct {
		Value string
	}

	// InvalidCommitHashError provides details about a malformed commit hash.
	InvalidCommitHashError struct {
		Value string
	}
)

// Error implements the error interface for InvalidDependencyNameError.
func (e *InvalidDependencyNameError) Error() string {
	return fmt.Sprintf("invalid dependency name %q", e.Value)
}

// Unwrap returns ErrInvalidDependencyName for errors.Is() compatibility.
func (e *InvalidDependencyNameError) Unwrap() error { return ErrInvalidDependencyName }

// Error implements the error interface for InvalidCommitHashError.
func (e *InvalidCommitHashError) Error() string {
	return fmt.Sprintf("invalid commit hash %q: must be 40 lowercase hex characters", e.Value)
}

// Unwrap returns ErrInvalidCommitHash for errors.Is() compatibility.
func (e *InvalidCommitHashError) Unwrap() error { return ErrInvalidCommitHash }

// Validate checks that the dependency name is well formed.
func (n DependencyName) Validate() error {
	if !dependencyNamePattern.MatchString(string(n)) {
		return &InvalidDependencyNameError{Value: string(n)}
	}
	return nil
}

// Validate checks that the URL is non-empty. git accepts many remote forms
// (https, ssh, scp-like, local paths), so anything stricter here would
// reject remotes git itself handles fine.
func (u RepoURL) Validate() error {
	if u == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidRepoURL)
	}
	return nil
}

// Validate checks that the hash is a full lowercase git object name.
func (h CommitHash) Validate() error {
	if !commitHashPattern.MatchString(string(h)) {
		return &InvalidCommitHashError{Value: string(h)}
	}
	return nil
}

// Short returns the abbreviated form used in logs and lock summaries.
func (h CommitHash) Short() string {
	if len(h) < 12 {
		return string(h)
	}
	return string(h)[:12]
}

// Pinned reports whether the dependency carries an inline commit pin.
func (d *Dependency) Pinned() bool { return d.Commit != "" }

func (d *Dependency) validate() error {
	if err := d.Name.Validate(); err != nil {
		return err
	}
	if err := d.Repo.Validate(); err != nil {
		return fmt.Errorf("dependency %s: %w", d.Name, err)
	}
	if d.Commit != "" {
		if err := d.Commit.Validate(); err != nil {
			return fmt.Errorf("dependency %s: %w", d.Name, err)
		}
	}
	if !d.Path.IsAbs() {
		return fmt.Errorf("dependency %s: path %q must be absolute", d.Name, d.Path)
	}
	return nil
}
