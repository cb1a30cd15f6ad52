// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"kiln-cli/internal/lockfile"
	"kiln-cli/pkg/kilnfile"

	"github.com/spf13/cobra"
)

// newLockCommand creates the `kiln lock` command.
func newLockCommand(app *App) *cobra.Command {
	var flags recipeFlags

	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Resolve dependency refs to exact commits",
		Long: `Resolve every dependency ref to an exact commit and write kiln.lock.

Dependencies pinned inline in the kilnfile keep their pin verbatim; the
rest have their branch or tag resolved against the remote, with no ref
meaning the remote's default branch. Later renders and builds consume the
recorded pins, so the same recipe keeps producing the same image until
the lock is updated again.

Examples:
  kiln lock                        Write kiln.lock next to the recipe
  kiln lock --lock ./pins.lock     Write the lock somewhere else`,
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
			if len(kf.Deps) == 0 {
				fmt.Fprintln(stdout, "Recipe declares no dependencies; nothing to lock.")
				return nil
			}

			git, err := app.Git.Git()
			if err != nil {
				return err
			}
			lf, err := lockfile.Update(ctx, kf, git)
			if err != nil {
				return err
			}

			lockPath := flags.lockPath
			if lockPath == "" {
				lockPath = lockfile.PathFor(path)
			}
			if err := lockfile.Save(lockPath, lf); err != nil {
				return err
			}

			for _, d := range kf.Deps {
				entry := lf.Deps[d.Name]
				ref := entry.Ref
				if ref == "" {
					ref = "HEAD"
				}
				fmt.Fprintf(stdout, "  %s %s %s %s\n",
					SuccessStyle.Render("✓"), d.Name, CmdStyle.Render(shortCommit(entry.Commit)), SubtitleStyle.Render("("+ref+")"))
			}
			fmt.Fprintf(stdout, "%s Locked %d dependencies in %s\n", SuccessStyle.Render("✓"), len(lf.Deps), lockPath)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// shortCommit abbreviates a commit hash for display.
func shortCommit(c kilnfile.CommitHash) string {
	s := string(c)
	if len(s) > 12 {
		return s[:12]
	}
	return s
}
