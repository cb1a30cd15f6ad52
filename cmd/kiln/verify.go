// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"kiln-cli/internal/bake"
	"kiln-cli/internal/issue"
	"kiln-cli/internal/verify"

	"github.com/spf13/cobra"
)

// newVerifyCommand creates the `kiln verify` command.
func newVerifyCommand(app *App) *cobra.Command {
	var (
		flags recipeFlags
		root  string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a provisioned environment against the recipe",
		Long: `Verify a provisioned environment against the recipe.

Checks that every dependency checkout sits on its pinned commit, the
search path variable carries exactly the declared entries in order, the
account resolves to the declared uid and admin group membership, the
workspace symlink points at the workspace, and the rc file carries the
declared lines. Any failed check makes the command exit non-zero.

Run this inside the provisioned environment, or point --root at a
provisioned tree mounted elsewhere.

Examples:
  kiln verify                      Verify the running environment
  kiln verify --root /mnt/image    Verify a mounted tree
  kiln verify --arg UNAME=finn     Supply an arg value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			stdout := cmd.OutOrStdout()

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
			expanded, err := bake.Expand(kf, vals)
			if err != nil {
				return err
			}

			git, err := app.Git.Git()
			if err != nil {
				return err
			}
			var opts []verify.Option
			if root != "" {
				opts = append(opts, verify.WithRoot(root))
			}

			report := verify.New(git, opts...).Verify(ctx, expanded)

			fmt.Fprintln(stdout, TitleStyle.Render("Verification"))
			for _, check := range report.Checks {
				if check.Err == nil {
					fmt.Fprintf(stdout, "%s %s\n", SuccessStyle.Render("✓"), check.Name)
					continue
				}
				fmt.Fprintf(stdout, "%s %s: %v\n", ErrorStyle.Render("✗"), check.Name, check.Err)
			}

			if failed := report.Failed(); len(failed) > 0 {
				printIssue(cmd.ErrOrStderr(), issue.Get(issue.VerifyFailedId))
				return &ExitError{Code: 1, Err: fmt.Errorf("%d of %d checks failed", len(failed), len(report.Checks))}
			}
			fmt.Fprintf(stdout, "\n%s %d checks passed\n", SuccessStyle.Render("✓"), len(report.Checks))
			return nil
		},
	}

	flags.register(cmd)
	flags.registerArgValues(cmd)
	cmd.Flags().StringVar(&root, "root", "", "treat this directory as the filesystem root for path checks")
	return cmd
}
