// SPDX-License-Identifier: MPL-2.0

// Package lockfile reads and writes kiln.lock, the pin manifest that maps
// each dependency to the exact commit a build must check out. The lock sits
// next to the kilnfile and is regenerated by `kiln lock`; recipes may also
// pin commits inline, in which case the two sources must agree.
package lockfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"kiln-cli/pkg/kilnfile"
)

// DefaultFileName is the lock file name, resolved next to the kilnfile.
const DefaultFileName = "kiln.lock"

const currentVersion = 1

const header = "# Dependency pins resolved by `kiln lock`. Do not edit by hand;\n" +
	"# change the kilnfile and re-run `kiln lock` instead.\n\n"

var (
	// ErrLockVersion is returned when the lock file was written by an
	// incompatible kiln version.
	ErrLockVersion = errors.New("unsupported lock file version")

	// ErrLockDrift is the sentinel error wrapped by DriftError.
	ErrLockDrift = errors.New("lock entry does not match kilnfile")
)

type (
	// File is the parsed lock file.
	File struct {
		Version int                               `toml:"version"`
		Deps    map[kilnfile.DependencyName]Entry `toml:"deps"`
	}

	// Entry pins one dependency. Repo and Ref record what the commit was
	// resolved from, so later runs can detect a recipe that moved on.
	Entry struct {
		Repo   kilnfile.RepoURL    `toml:"repo"`
		Ref    string              `toml:"ref,omitempty"`
		Commit kilnfile.CommitHash `toml:"commit"`
	}

	// DriftError is returned when a lock entry disagrees with the
	// kilnfile it was generated from.
	DriftError struct {
		Name   kilnfile.DependencyName
		Field  string
		Recipe string
		Locked string
	}

	// RefResolver resolves a remote ref to a commit. *fetch.Git
	// satisfies it; tests substitute a local fake.
	RefResolver interface {
		ResolveRef(ctx context.Context, repo kilnfile.RepoURL, ref string) (kilnfile.CommitHash, error)
	}
)

// Error implements the error interface.
func (e *DriftError) Error() string {
	return fmt.Sprintf("dependency %s: locked %s %q does not match kilnfile %s %q; re-run `kiln lock`",
		e.Name, e.Field, e.Locked, e.Field, e.Recipe)
}

// Unwrap returns ErrLockDrift so callers can use errors.Is for programmatic detection.
func (e *DriftError) Unwrap() error { return ErrLockDrift }

// PathFor returns the lock file path for a kilnfile path.
func PathFor(kilnfilePath string) string {
	return filepath.Join(filepath.Dir(kilnfilePath), DefaultFileName)
}

// Load reads and validates a lock file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lock file: %w", err)
	}

	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse lock file %s: %w", path, err)
	}
	if f.Version != currentVersion {
		return nil, fmt.Errorf("%w: %d (this kiln writes version %d)", ErrLockVersion, f.Version, currentVersion)
	}
	for name, entry := range f.Deps {
		if entry.Repo == "" {
			return nil, fmt.Errorf("lock entry %s: missing repo", name)
		}
		if err := entry.Commit.Validate(); err != nil {
			return nil, fmt.Errorf("lock entry %s: %w", name, err)
		}
	}
	return &f, nil
}

// LoadIfPresent loads the lock file if one exists. A missing file is not an
// error; recipes with inline pins need no lock at all.
func LoadIfPresent(path string) (*File, error) {
	f, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return f, err
}

// Save writes the lock file with a generated-file header. Output is
// deterministic: entries are emitted in sorted name order.
func Save(path string, f *File) error {
	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode lock file: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return fmt.Errorf("failed to write lock file: %w", err)
	}
	return nil
}

// Apply copies locked commits onto dependencies that carry no inline pin.
// Dependencies absent from the lock are left as they are; planning rejects
// them later if they end up unpinned. A dependency whose repo, ref, or
// inline commit disagrees with its lock entry fails with a DriftError
// rather than building from a stale pin.
func (f *File) Apply(kf *kilnfile.Kilnfile) error {
	if f == nil {
		return nil
	}
	for i := range kf.Deps {
		d := &kf.Deps[i]
		entry, ok := f.Deps[d.Name]
		if !ok {
			continue
		}
		if entry.Repo != d.Repo {
			return &DriftError{Name: d.Name, Field: "repo", Recipe: string(d.Repo), Locked: string(entry.Repo)}
		}
		if entry.Ref != d.Ref {
			return &DriftError{Name: d.Name, Field: "ref", Recipe: d.Ref, Locked: entry.Ref}
		}
		if d.Commit != "" && d.Commit != entry.Commit {
			return &DriftError{Name: d.Name, Field: "commit", Recipe: string(d.Commit), Locked: string(entry.Commit)}
		}
		d.Commit = entry.Commit
	}
	return nil
}

// Update resolves a fresh lock file for the recipe. Dependencies pinned
// inline keep their pin verbatim; the rest have their ref resolved against
// the remote, with an empty ref meaning the remote's HEAD.
func Update(ctx context.Context, kf *kilnfile.Kilnfile, resolver RefResolver) (*File, error) {
	f := &File{
		Version: currentVersion,
		Deps:    make(map[kilnfile.DependencyName]Entry, len(kf.Deps)),
	}
	for i := range kf.Deps {
		d := &kf.Deps[i]
		commit := d.Commit
		if commit == "" {
			resolved, err := resolver.ResolveRef(ctx, d.Repo, d.Ref)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve %s: %w", d.Name, err)
			}
			commit = resolved
		}
		f.Deps[d.Name] = Entry{Repo: d.Repo, Ref: d.Ref, Commit: commit}
	}
	return f, nil
}
