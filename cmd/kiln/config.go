// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"kiln-cli/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `kiln config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage kiln configuration",
		Long: `Manage kiln configuration.

Configuration is stored in:
  - Linux: ~/.config/kiln/config.cue
  - macOS: ~/Library/Application Support/kiln/config.cue
  - Windows: %APPDATA%\kiln\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), app, args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: cfgFile})
			if err != nil {
				return err
			}

			cueContent := config.GenerateCUE(cfg)
			fmt.Print(cueContent)
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	opts := config.LoadOptions{ConfigFilePath: cfgFile}
	cfg, err := app.Config.Load(ctx, opts)
	if err != nil {
		return err
	}

	// Style definitions using shared color palette
	headerStyle := TitleStyle
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Println(headerStyle.Render("Current Configuration"))
	fmt.Println()

	if source, err := config.SourcePath(opts); err == nil && source != "" {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), source)
	} else {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	// Show values
	fmt.Printf("%s: %s\n", keyStyle.Render("engine"), valueStyle.Render(string(cfg.Engine)))
	if cfg.WorkspaceRoot != "" {
		fmt.Printf("%s: %s\n", keyStyle.Render("workspace_root"), valueStyle.Render(string(cfg.WorkspaceRoot)))
	} else {
		fmt.Printf("%s: %s\n", keyStyle.Render("workspace_root"), SubtitleStyle.Render("(not set)"))
	}
	if cfg.DefaultRegistry != "" {
		fmt.Printf("%s: %s\n", keyStyle.Render("default_registry"), valueStyle.Render(string(cfg.DefaultRegistry)))
	} else {
		fmt.Printf("%s: %s\n", keyStyle.Render("default_registry"), SubtitleStyle.Render("(not set)"))
	}

	fmt.Println()
	fmt.Printf("%s:\n", keyStyle.Render("ui"))
	fmt.Printf("  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Printf("  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	fmt.Println()
	fmt.Printf("%s:\n", keyStyle.Render("build"))
	fmt.Printf("  no_cache: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.Build.NoCache)))
	if cfg.Build.ContextDir != "" {
		fmt.Printf("  context_dir: %s\n", valueStyle.Render(string(cfg.Build.ContextDir)))
	} else {
		fmt.Printf("  context_dir: %s\n", SubtitleStyle.Render("(temporary)"))
	}

	return nil
}

func initConfig() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	if err = config.CreateDefaultConfig(); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	fmt.Printf("%s Created default configuration at %s/config.cue\n", SuccessStyle.Render("✓"), cfgDir)
	return nil
}

func showConfigPath() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	fmt.Printf("Config directory: %s\n", cfgDir)
	fmt.Printf("Config file: %s/config.cue\n", cfgDir)

	return nil
}

func setConfigValue(ctx context.Context, app *App, key, value string) error {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{})
	if err != nil {
		return err
	}

	switch key {
	case "engine":
		if value != "docker" && value != "podman" && value != "auto" {
			return fmt.Errorf("invalid engine: must be 'docker', 'podman', or 'auto'")
		}
		cfg.Engine = config.Engine(value)

	case "workspace_root":
		cfg.WorkspaceRoot = config.WorkspaceRootPath(value)

	case "default_registry":
		cfg.DefaultRegistry = config.RegistryHost(value)

	case "ui.color_scheme":
		if value != "auto" && value != "dark" && value != "light" {
			return fmt.Errorf("invalid ui.color_scheme: must be 'auto', 'dark', or 'light'")
		}
		cfg.UI.ColorScheme = config.ColorScheme(value)

	case "ui.verbose":
		cfg.UI.Verbose = value == "true" || value == "1"

	case "build.no_cache":
		cfg.Build.NoCache = value == "true" || value == "1"

	case "build.context_dir":
		cfg.Build.ContextDir = config.ContextDirPath(value)

	default:
		return fmt.Errorf("unknown configuration key: %s\nValid keys: engine, workspace_root, default_registry, ui.color_scheme, ui.verbose, build.no_cache, build.context_dir", key)
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}
