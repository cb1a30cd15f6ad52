// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"kiln-cli/internal/lockfile"
	"kiln-cli/internal/render"
	"kiln-cli/internal/watch"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// newRenderCommand creates the `kiln render` command.
func newRenderCommand(app *App) *cobra.Command {
	var (
		flags     recipeFlags
		output    string
		watchMode bool
	)

	renderOnce := func(cmd *cobra.Command) error {
		kf, _, err := loadRecipe(cmd.Context(), app, &flags)
		if err != nil {
			return err
		}
		plan, err := symbolicPlan(kf)
		if err != nil {
			return err
		}

		dockerfile := render.Dockerfile(plan)
		if output == "" || output == "-" {
			fmt.Fprint(cmd.OutOrStdout(), dockerfile)
			return nil
		}
		if err := os.WriteFile(output, []byte(dockerfile), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Rendered %s\n", SuccessStyle.Render("✓"), output)
		return nil
	}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the recipe as a Dockerfile",
		Long: `Render the recipe as a Dockerfile on stdout.

Recipe args become ARG directives; their values are supplied at build time
and never appear in the rendered file. Dependencies must be pinned, either
inline in the kilnfile or through the lock file.

With --watch the command keeps running and re-renders whenever the
kilnfile or its lock file changes. Watch mode writes to a file, so it
requires --output.

Examples:
  kiln render                     Print the Dockerfile
  kiln render -o Dockerfile       Write it next to the recipe
  kiln render -o Dockerfile --watch   Re-render on every recipe change
  kiln render -f ./dev/kilnfile   Render a recipe elsewhere`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !watchMode {
				return renderOnce(cmd)
			}
			if output == "" || output == "-" {
				return fmt.Errorf("--watch requires --output pointing at a file")
			}
			return watchAndRender(cmd, app, &flags, renderOnce)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the Dockerfile to a file instead of stdout")
	cmd.Flags().BoolVar(&watchMode, "watch", false, "re-render whenever the kilnfile or lock file changes")
	return cmd
}

// watchAndRender renders once, then re-renders on every change to the
// recipe or its lock file until the command is interrupted. Render
// failures do not stop the loop; a broken intermediate state is normal
// while the recipe is being edited.
func watchAndRender(cmd *cobra.Command, app *App, flags *recipeFlags, renderOnce func(*cobra.Command) error) error {
	ctx := cmd.Context()

	path, err := locateKilnfile(ctx, app, flags.file)
	if err != nil {
		return err
	}
	lockPath := flags.lockPath
	if lockPath == "" {
		lockPath = lockfile.PathFor(path)
	}

	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Prefix: "watch"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if err := renderOnce(cmd); err != nil {
		logger.Error("Render failed", "err", err)
	}

	w, err := watch.New([]string{path, lockPath}, func(context.Context, []string) error {
		return renderOnce(cmd)
	}, watch.WithLogger(logger))
	if err != nil {
		return err
	}

	logger.Info("Watching for changes", "files", strings.Join([]string{path, lockPath}, ", "))
	return w.Run(ctx)
}
