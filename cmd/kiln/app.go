// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"kiln-cli/internal/config"
	"kiln-cli/internal/container"
	"kiln-cli/internal/fetch"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: command constructors receive an App reference
	// and reach configuration, container engines, and git through its
	// interfaces instead of constructing them inline.
	App struct {
		Config  ConfigProvider
		Engines EngineProvider
		Git     GitProvider
		stdout  io.Writer
		stderr  io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp. Tests can supply mock
	// implementations to isolate specific command behavior.
	Dependencies struct {
		Config  ConfigProvider
		Engines EngineProvider
		Git     GitProvider
		Stdout  io.Writer
		Stderr  io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	// This abstraction enables testing with custom config sources or mock implementations.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// EngineProvider constructs the container engine a build should use.
	// The production implementation probes installed engines; tests return
	// fakes without touching the host.
	EngineProvider interface {
		Engine(preferred container.EngineType) (container.Engine, error)
	}

	// GitProvider constructs the git query client used for resolving refs
	// and reading checkout heads.
	GitProvider interface {
		Git() (*fetch.Git, error)
	}

	defaultEngineProvider struct{}

	defaultGitProvider struct{}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Engines == nil {
		deps.Engines = defaultEngineProvider{}
	}
	if deps.Git == nil {
		deps.Git = defaultGitProvider{}
	}

	return &App{
		Config:  deps.Config,
		Engines: deps.Engines,
		Git:     deps.Git,
		stdout:  deps.Stdout,
		stderr:  deps.Stderr,
	}, nil
}

// Engine resolves the preferred engine against what is installed.
func (defaultEngineProvider) Engine(preferred container.EngineType) (container.Engine, error) {
	return container.NewEngine(preferred)
}

// Git locates the git binary on PATH.
func (defaultGitProvider) Git() (*fetch.Git, error) {
	return fetch.NewGit()
}

// loadConfigWithFallback loads configuration via the provider. On failure it
// returns defaults so commands stay operational; the root command already
// warned about the load error during initialization.
func loadConfigWithFallback(ctx context.Context, provider ConfigProvider) *config.Config {
	cfg, err := provider.Load(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil || cfg == nil {
		return config.DefaultConfig()
	}
	return cfg
}
