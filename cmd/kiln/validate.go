// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"kiln-cli/internal/lockfile"
	"kiln-cli/pkg/kilnfile"

	"github.com/spf13/cobra"
)

// newValidateCommand creates the `kiln validate` command.
func newValidateCommand(app *App) *cobra.Command {
	var flags recipeFlags

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the recipe without building anything",
		Long: `Validate the recipe against the schema and the model rules.

This checks the kilnfile the same way render and build do: CUE schema
validation, field rules, duplicate declarations, arg references, and
agreement with the lock file. Nothing is fetched or built.

Unpinned dependencies are reported as a warning; they only become an
error when a plan is built from the recipe.

Examples:
  kiln validate                    Validate the recipe in the current directory
  kiln validate -f ./kilnfile.cue  Validate a recipe elsewhere`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			stdout := cmd.OutOrStdout()

			path, err := locateKilnfile(ctx, app, flags.file)
			if err != nil {
				return err
			}
			kf, err := kilnfile.Parse(path)
			if err != nil {
				return err
			}

			lockPath := flags.lockPath
			if lockPath == "" {
				lockPath = lockfile.PathFor(path)
			}
			lf, err := lockfile.LoadIfPresent(lockPath)
			if err != nil {
				return err
			}
			if err := lf.Apply(kf); err != nil {
				return err
			}

			fmt.Fprintf(stdout, "%s %s is valid\n", SuccessStyle.Render("✓"), path)

			unpinned := 0
			for _, d := range kf.Deps {
				if d.Commit == "" {
					unpinned++
				}
			}
			if unpinned > 0 {
				fmt.Fprintf(stdout, "%s %d of %d dependencies have no pinned commit; run %s\n",
					WarningStyle.Render("!"), unpinned, len(kf.Deps), CmdStyle.Render("kiln lock"))
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
