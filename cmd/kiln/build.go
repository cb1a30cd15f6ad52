// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"kiln-cli/internal/container"
	"kiln-cli/internal/issue"
	"kiln-cli/internal/render"
	"kiln-cli/pkg/kilnfile"

	"github.com/spf13/cobra"
)

// newBuildCommand creates the `kiln build` command.
func newBuildCommand(app *App) *cobra.Command {
	var (
		flags     recipeFlags
		tag       string
		engineStr string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the recipe image with a container engine",
		Long: `Build the recipe image with Docker or Podman.

The recipe renders to a Dockerfile in a scratch build context, arg values
resolve from --arg flags, arg files, the environment, and declared
defaults, and the engine receives them as build args. Secret args travel
through the engine process environment and never appear in the rendered
file or the argument list.

Examples:
  kiln build                         Build with the configured engine
  kiln build -t registry/dev:1.2     Build under an explicit tag
  kiln build --arg UNAME=finn        Supply an arg value
  kiln build --engine podman         Force an engine`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			kf, _, err := loadRecipe(ctx, app, &flags)
			if err != nil {
				return err
			}
			resolveOpts, err := flags.resolveOptions()
			if err != nil {
				return err
			}
			vals, err := kf.ResolveArgs(resolveOpts)
			if err != nil {
				return err
			}
			plan, err := symbolicPlan(kf)
			if err != nil {
				return err
			}

			cfg := loadConfigWithFallback(ctx, app.Config)

			engineType := container.EngineType(engineTypeFor(engineStr, cfg))
			if err := engineType.Validate(); err != nil {
				return err
			}
			engine, err := app.Engines.Engine(engineType)
			if err != nil {
				return err
			}

			if tag == "" {
				tag = defaultImageTag(kf.FilePath, string(cfg.DefaultRegistry))
			}

			buildArgs, secretArgs := splitBuildArgs(kf, vals)

			var contextDir string
			if cfg.Build.ContextDir != "" {
				if _, err := render.Context(plan, string(cfg.Build.ContextDir)); err != nil {
					return err
				}
				contextDir = string(cfg.Build.ContextDir)
			} else {
				dir, cleanup, err := render.TempContext(plan)
				if err != nil {
					return err
				}
				defer cleanup()
				contextDir = dir
			}

			if verbose {
				version, verr := engine.Version(ctx)
				if verr != nil {
					version = "unknown"
				}
				fmt.Fprintln(cmd.ErrOrStderr(), VerboseStyle.Render("engine: ")+VerboseHighlightStyle.Render(engine.Name()+" "+version))
				fmt.Fprintln(cmd.ErrOrStderr(), VerboseStyle.Render("context: ")+contextDir)
			}

			buildOpts := container.BuildOptions{
				ContextDir: contextDir,
				Tag:        container.ImageTag(tag),
				BuildArgs:  buildArgs,
				SecretArgs: secretArgs,
				NoCache:    noCache || cfg.Build.NoCache,
				Stdout:     cmd.OutOrStdout(),
				Stderr:     cmd.ErrOrStderr(),
			}
			if err := engine.Build(ctx, buildOpts); err != nil {
				printIssue(cmd.ErrOrStderr(), issue.Get(issue.BuildFailedId))
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Built %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(tag))

			if verbose {
				inspect, ierr := engine.InspectImage(ctx, container.ImageTag(tag))
				if ierr == nil {
					fmt.Fprintln(cmd.ErrOrStderr(), VerboseStyle.Render(strings.TrimRight(inspect, "\n")))
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	flags.registerArgValues(cmd)
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "image tag (default: derived from the recipe directory)")
	cmd.Flags().StringVar(&engineStr, "engine", "", "container engine to use (docker, podman, auto)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "build without the engine cache")
	return cmd
}

// splitBuildArgs separates resolved arg values into plain build args and
// secret ones, which must stay out of the engine argument list.
func splitBuildArgs(kf *kilnfile.Kilnfile, vals map[kilnfile.ArgName]string) (buildArgs, secretArgs map[string]string) {
	secret := kf.SecretArgNames()
	buildArgs = make(map[string]string)
	secretArgs = make(map[string]string)
	for name, value := range vals {
		if secret[name] {
			secretArgs[string(name)] = value
			continue
		}
		buildArgs[string(name)] = value
	}
	return buildArgs, secretArgs
}

// defaultImageTag derives an image tag from the recipe location, prefixed
// with the configured registry when one is set.
func defaultImageTag(kilnfilePath, registry string) string {
	name := "kiln-image"
	if kilnfilePath != "" {
		abs, err := filepath.Abs(kilnfilePath)
		if err == nil {
			if base := sanitizeImageName(filepath.Base(filepath.Dir(abs))); base != "" {
				name = base
			}
		}
	}
	if registry != "" {
		return registry + "/" + name + ":latest"
	}
	return name + ":latest"
}

// sanitizeImageName lowercases a directory name and strips characters that
// are invalid in an image reference path component.
func sanitizeImageName(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteRune('-')
		}
	}
	return strings.Trim(sb.String(), ".-_")
}
