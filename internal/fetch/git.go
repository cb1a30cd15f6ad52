// SPDX-License-Identifier: MPL-2.0

// Package fetch resolves git references for dependency pinning. It shells
// out to the git CLI rather than linking a git implementation, so the
// remotes, credentials, and transports a user's git already handles keep
// working unchanged.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"kiln-cli/pkg/kilnfile"
)

var (
	// ErrGitNotFound is returned when no git binary is available.
	ErrGitNotFound = errors.New("git binary not found")

	// ErrRefNotFound is returned when a remote has no ref matching the
	// requested name.
	ErrRefNotFound = errors.New("ref not found in remote")
)

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Option configures a Git.
	Option func(*Git)

	// Git runs read-only queries against git repositories and remotes.
	Git struct {
		binaryPath  string
		execCommand ExecCommandFunc
	}
)

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(g *Git) {
		g.execCommand = fn
	}
}

// WithBinaryPath sets the git binary path, skipping PATH lookup.
func WithBinaryPath(path string) Option {
	return func(g *Git) {
		g.binaryPath = path
	}
}

// NewGit locates the git binary and returns a query handle for it.
func NewGit(opts ...Option) (*Git, error) {
	g := &Git{execCommand: exec.CommandContext}
	for _, opt := range opts {
		opt(g)
	}
	if g.binaryPath == "" {
		path, err := exec.LookPath("git")
		if err != nil {
			return nil, fmt.Errorf("%w: install git or put it on PATH", ErrGitNotFound)
		}
		g.binaryPath = path
	}
	return g, nil
}

// ResolveRef resolves a branch, tag, or symbolic ref in a remote repository
// to the commit it points at, without cloning. An empty ref resolves the
// remote's HEAD. Annotated tags resolve to the tagged commit, not the tag
// object.
func (g *Git) ResolveRef(ctx context.Context, repo kilnfile.RepoURL, ref string) (kilnfile.CommitHash, error) {
	if ref == "" {
		ref = "HEAD"
	}

	// ls-remote lists both the tag object and, for annotated tags, a
	// peeled "<ref>^{}" entry carrying the commit itself.
	out, err := g.run(ctx, "ls-remote", string(repo), ref, ref+"^{}")
	if err != nil {
		return "", err
	}

	var first, peeled kilnfile.CommitHash
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		hash := kilnfile.CommitHash(fields[0])
		if hash.Validate() != nil {
			continue
		}
		if strings.HasSuffix(fields[1], "^{}") {
			peeled = hash
		} else if first == "" {
			first = hash
		}
	}
	if peeled != "" {
		return peeled, nil
	}
	if first != "" {
		return first, nil
	}
	return "", fmt.Errorf("%w: %q in %s", ErrRefNotFound, ref, repo)
}

// Head returns the commit a local checkout currently sits on.
func (g *Git) Head(ctx context.Context, dir string) (kilnfile.CommitHash, error) {
	out, err := g.run(ctx, "-C", dir, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	hash := kilnfile.CommitHash(strings.TrimSpace(out))
	if err := hash.Validate(); err != nil {
		return "", fmt.Errorf("unexpected rev-parse output for %s: %w", dir, err)
	}
	return hash, nil
}

func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	cmd := g.execCommand(ctx, g.binaryPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s failed: %w: %s", strings.Join(args, " "), err, msg)
		}
		return "", fmt.Errorf("git %s failed: %w", strings.Join(args, " "), err)
	}
	return stdout.String(), nil
}
