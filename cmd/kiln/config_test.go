// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kiln-cli/internal/config"
)

func TestSetConfigValue(t *testing.T) {
	// Not parallel: redirects the global config directory.

	newApp := func(t *testing.T) *App {
		return mustTestApp(t, Dependencies{Config: staticConfigProvider{cfg: config.DefaultConfig()}})
	}

	t.Run("engine persists", func(t *testing.T) {
		isolateConfig(t)
		if err := setConfigValue(context.Background(), newApp(t), "engine", "podman"); err != nil {
			t.Fatalf("setConfigValue() returned unexpected error: %v", err)
		}
		loaded, err := config.NewProvider().Load(context.Background(), config.LoadOptions{})
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}
		if loaded.Engine != config.EnginePodman {
			t.Errorf("Engine = %q, want podman", loaded.Engine)
		}
	})

	t.Run("each key round-trips", func(t *testing.T) {
		isolateConfig(t)
		app := newApp(t)
		sets := map[string]string{
			"workspace_root":    "/srv/work",
			"default_registry":  "registry.example.com",
			"ui.color_scheme":   "dark",
			"ui.verbose":        "true",
			"build.no_cache":    "1",
			"build.context_dir": "/var/tmp/kiln-ctx",
		}
		for key, value := range sets {
			if err := setConfigValue(context.Background(), app, key, value); err != nil {
				t.Fatalf("setConfigValue(%s) returned unexpected error: %v", key, err)
			}
		}

		loaded, err := config.NewProvider().Load(context.Background(), config.LoadOptions{})
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}
		if loaded.WorkspaceRoot != "/srv/work" {
			t.Errorf("WorkspaceRoot = %q, want /srv/work", loaded.WorkspaceRoot)
		}
		if loaded.DefaultRegistry != "registry.example.com" {
			t.Errorf("DefaultRegistry = %q, want registry.example.com", loaded.DefaultRegistry)
		}
		if loaded.UI.ColorScheme != config.ColorSchemeDark {
			t.Errorf("ColorScheme = %q, want dark", loaded.UI.ColorScheme)
		}
		if !loaded.UI.Verbose {
			t.Error("UI.Verbose = false, want true")
		}
		if !loaded.Build.NoCache {
			t.Error("Build.NoCache = false, want true")
		}
		if loaded.Build.ContextDir != "/var/tmp/kiln-ctx" {
			t.Errorf("Build.ContextDir = %q, want /var/tmp/kiln-ctx", loaded.Build.ContextDir)
		}
	})

	t.Run("rejects invalid engine", func(t *testing.T) {
		isolateConfig(t)
		err := setConfigValue(context.Background(), newApp(t), "engine", "containerd")
		if err == nil || !strings.Contains(err.Error(), "invalid engine") {
			t.Errorf("setConfigValue() error = %v, want an invalid engine error", err)
		}
	})

	t.Run("rejects unknown key", func(t *testing.T) {
		isolateConfig(t)
		err := setConfigValue(context.Background(), newApp(t), "no.such.key", "x")
		if err == nil || !strings.Contains(err.Error(), "Valid keys") {
			t.Errorf("setConfigValue() error = %v, want it to list the valid keys", err)
		}
	})
}

func TestConfigCommand_Set(t *testing.T) {
	// Not parallel: redirects the global config directory.
	isolateConfig(t)

	app := mustTestApp(t, Dependencies{Config: staticConfigProvider{cfg: config.DefaultConfig()}})
	if _, _, err := runCommand(t, newConfigCommand(app), "set", "engine", "docker"); err != nil {
		t.Fatalf("config set returned unexpected error: %v", err)
	}

	loaded, err := config.NewProvider().Load(context.Background(), config.LoadOptions{})
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if loaded.Engine != config.EngineDocker {
		t.Errorf("Engine = %q, want docker", loaded.Engine)
	}
}

func TestConfigCommand_Init(t *testing.T) {
	// Not parallel: redirects the global config directory.
	isolateConfig(t)

	app := mustTestApp(t, Dependencies{Config: staticConfigProvider{cfg: config.DefaultConfig()}})
	if _, _, err := runCommand(t, newConfigCommand(app), "init"); err != nil {
		t.Fatalf("config init returned unexpected error: %v", err)
	}

	cfgDir, err := config.ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfgDir, "config.cue")); err != nil {
		t.Errorf("config init did not create the file: %v", err)
	}
}
