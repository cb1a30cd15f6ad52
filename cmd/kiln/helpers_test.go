// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"kiln-cli/internal/config"
	"kiln-cli/internal/container"
	"kiln-cli/internal/fetch"

	"github.com/spf13/cobra"
)

// ---------------------------------------------------------------------------
// Recipe fixtures
// ---------------------------------------------------------------------------

// testRecipe exercises args, env vars, a port, and a workdir without any
// dependencies, so commands running it need neither git nor a lock file.
const testRecipe = `
description: "cmd test image"
base: image: "ubuntu:24.04"
args: [
	{name: "UNAME", default: "kiln"},
	{name: "TOKEN", secret: true},
]
env: {
	vars: {EDITOR: "vim"}
}
ports: ["8080"]
workdir: "/workspace"
`

// pinnedDepRecipe declares one dependency with an inline commit pin.
const pinnedDepRecipe = `
base: image: "ubuntu:24.04"
deps: [
	{name: "cnpy", repo: "https://github.com/rogersce/cnpy.git", commit: "4e8810b1a8637695171ed346ce68f6984e585ef4", path: "/opt/cnpy"},
]
`

// unpinnedDepRecipe declares one dependency pinned only by a floating ref.
const unpinnedDepRecipe = `
base: image: "ubuntu:24.04"
deps: [
	{name: "cnpy", repo: "https://github.com/rogersce/cnpy.git", ref: "master", path: "/opt/cnpy"},
]
`

// writeRecipe writes content as a kilnfile in dir and returns its path.
func writeRecipe(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "kilnfile.cue")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write kilnfile: %v", err)
	}
	return path
}

// ---------------------------------------------------------------------------
// Service fakes
// ---------------------------------------------------------------------------

// staticConfigProvider returns a fixed configuration without touching the
// filesystem.
type staticConfigProvider struct {
	cfg *config.Config
	err error
}

func (p staticConfigProvider) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.cfg, nil
}

// fakeEngine records build requests instead of invoking a CLI.
type fakeEngine struct {
	name     string
	builds   []container.BuildOptions
	buildErr error
	inspect  string
}

func (e *fakeEngine) Name() string    { return e.name }
func (e *fakeEngine) Available() bool { return true }

func (e *fakeEngine) Version(context.Context) (string, error) { return "0.0-test", nil }

func (e *fakeEngine) Build(_ context.Context, opts container.BuildOptions) error {
	e.builds = append(e.builds, opts)
	return e.buildErr
}

func (e *fakeEngine) ImageExists(context.Context, container.ImageTag) (bool, error) {
	return false, nil
}

func (e *fakeEngine) InspectImage(context.Context, container.ImageTag) (string, error) {
	return e.inspect, nil
}

func (e *fakeEngine) RemoveImage(context.Context, container.ImageTag, bool) error {
	return nil
}

// fakeEngineProvider hands out a fixed engine and records the requested type.
type fakeEngineProvider struct {
	engine    *fakeEngine
	requested []container.EngineType
}

func (p *fakeEngineProvider) Engine(preferred container.EngineType) (container.Engine, error) {
	p.requested = append(p.requested, preferred)
	return p.engine, nil
}

// staticGitProvider builds a git handle with a fixed binary path so no PATH
// lookup happens. Tests that never resolve refs or read heads use it as-is.
type staticGitProvider struct{}

func (staticGitProvider) Git() (*fetch.Git, error) {
	return fetch.NewGit(fetch.WithBinaryPath("/usr/bin/git"))
}

// ---------------------------------------------------------------------------
// Command execution helpers
// ---------------------------------------------------------------------------

// mustTestApp assembles an App from the given fakes.
func mustTestApp(t *testing.T, deps Dependencies) *App {
	t.Helper()
	app, err := NewApp(deps)
	if err != nil {
		t.Fatalf("NewApp() returned unexpected error: %v", err)
	}
	return app
}

// isolateConfig points the global config loader at a scratch directory for
// the duration of the test. Command execution runs the root initializers, so
// tests keep them away from the developer's real config.
func isolateConfig(t *testing.T) {
	t.Helper()
	config.SetConfigDirOverride(t.TempDir())
	t.Cleanup(config.Reset)
}

// runCommand executes a command with captured output.
func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if args == nil {
		// Nil makes cobra fall back to os.Args, which holds test flags here.
		args = []string{}
	}
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}
