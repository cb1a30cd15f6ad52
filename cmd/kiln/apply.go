// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os/exec"

	"kiln-cli/internal/apply"
	"kiln-cli/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// newApplyCommand creates the `kiln apply` command.
func newApplyCommand(app *App) *cobra.Command {
	var flags recipeFlags

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the recipe to the running system",
		Long: `Apply the recipe directly to the running system.

This provisions a live machine or an already-running container the same
way an image build would: steps run strictly in recipe order, and the
first failure aborts the run with the step it died at. Steps that only
make sense for images (base image, exposed ports, workdir) are skipped.

Run this as root inside the environment being provisioned.

Examples:
  kiln apply                       Apply the recipe in the current directory
  kiln apply --arg UID=1000        Supply an arg value
  kiln apply -f /srv/kilnfile.cue  Apply a recipe elsewhere`,
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
			plan, _, err := resolvedPlan(kf, resolveOpts)
			if err != nil {
				return err
			}

			logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Prefix: "apply"})
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}

			applier := apply.New(
				apply.WithLogger(logger),
				apply.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
			)
			if err := applier.Apply(ctx, plan); err != nil {
				return &ExitError{Code: stepExitCode(err), Err: err}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Applied %d steps\n", SuccessStyle.Render("✓"), len(plan.Steps))
			return nil
		},
	}

	flags.register(cmd)
	flags.registerArgValues(cmd)
	return cmd
}

// stepExitCode propagates the failing step's exit status when the step died
// with one, so scripted callers see the same code the step produced.
func stepExitCode(err error) types.ExitCode {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return types.ExitCode(exitErr.ExitCode())
	}
	return 1
}
