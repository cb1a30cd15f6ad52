// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"kiln-cli/internal/config"
	"kiln-cli/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// Verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "kiln",
		Short: "A declarative dev-container image baker",
		Long: TitleStyle.Render("kiln") + SubtitleStyle.Render(" - A declarative dev-container image baker") + `

kiln turns a declarative recipe (a kilnfile, written in CUE) into a
reproducible development container image: base image, system and Python
packages, dependency repositories pinned to exact commits, environment
wiring, a provisioned user account, and shell setup.

The same recipe renders to a Dockerfile, builds through Docker or Podman,
applies directly onto a live filesystem, and verifies a provisioned
environment against its declared properties.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Create a kilnfile with: kiln init
  2. Pin dependency commits with: kiln lock
  3. Build the image with: kiln build

` + SubtitleStyle.Render("Examples:") + `
  kiln render                 Print the generated Dockerfile
  kiln build -t dev:latest    Build the recipe image
  kiln lock                   Resolve floating refs to exact commits
  kiln verify                 Check a provisioned environment
  kiln config show            Show current configuration`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/kiln/config.cue)")

	// Add subcommands
	app := mustNewApp()
	rootCmd.AddCommand(newRenderCommand(app))
	rootCmd.AddCommand(newBuildCommand(app))
	rootCmd.AddCommand(newApplyCommand(app))
	rootCmd.AddCommand(newVerifyCommand(app))
	rootCmd.AddCommand(newLockCommand(app))
	rootCmd.AddCommand(newValidateCommand(app))
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newConfigCommand(app))
	rootCmd.AddCommand(newCompletionCommand())
}

// mustNewApp builds the production App. NewApp cannot fail when every
// dependency is defaulted.
func mustNewApp() *App {
	app, err := NewApp(Dependencies{})
	if err != nil {
		panic(err)
	}
	return app
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		printGuidance(os.Stderr, err)
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// initRootConfig reads in config file and ENV variables if set.
func initRootConfig() {
	// Set custom config file path if provided via --config flag
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		printIssue(os.Stderr, issue.Get(issue.ConfigLoadFailedId))
	}

	// Apply verbose from config if not set via flag
	if cfg != nil && !verbose {
		verbose = cfg.UI.Verbose
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}
