// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"kiln-cli/pkg/kilnfile"

	"github.com/spf13/cobra"
)

// newInitCommand creates the `kiln init` command.
func newInitCommand() *cobra.Command {
	var (
		force    bool
		template string
	)

	cmd := &cobra.Command{
		Use:   "init [filename]",
		Short: "Create a new kilnfile in the current directory",
		Long: `Create a new kilnfile in the current directory.

This command generates a starter recipe to edit from. The default
template covers packages and environment wiring; 'full' adds args,
a dependency, an account, and shell setup; 'minimal' is just a base
image.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := "kilnfile.cue"
			if len(args) > 0 {
				filename = args[0]
			}

			// Check if file exists
			if _, err := os.Stat(filename); err == nil && !force {
				return fmt.Errorf("file '%s' already exists. Use --force to overwrite", filename)
			}

			content := generateKilnfile(template)
			if err := os.WriteFile(filename, []byte(content), 0o644); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}

			absPath, _ := filepath.Abs(filename)
			fmt.Printf("%s Created %s\n", SuccessStyle.Render("✓"), absPath)
			fmt.Println()
			fmt.Println(SubtitleStyle.Render("Next steps:"))
			fmt.Println("  1. Edit the kilnfile to describe your environment")
			fmt.Println("  2. Run 'kiln validate' to check the recipe")
			fmt.Println("  3. Run 'kiln lock' to pin dependency commits")
			fmt.Println("  4. Run 'kiln build' to bake the image")

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing kilnfile")
	cmd.Flags().StringVarP(&template, "template", "t", "default", "template to use (default, minimal, full)")
	return cmd
}

func generateKilnfile(template string) string {
	var kf *kilnfile.Kilnfile

	switch template {
	case "minimal":
		kf = &kilnfile.Kilnfile{
			Description: "Minimal development container",
			Base:        kilnfile.Base{Image: "ubuntu:24.04"},
		}

	case "full":
		kf = &kilnfile.Kilnfile{
			Description: "Development container with a provisioned account",
			Base:        kilnfile.Base{Image: "ubuntu:24.04"},
			Args: []kilnfile.Arg{
				{Name: "GID", Default: "1000", Description: "group id for the container account"},
				{Name: "GNAME", Default: "kiln", Description: "group name for the container account"},
				{Name: "UID", Default: "1000", Description: "user id for the container account"},
				{Name: "UNAME", Default: "kiln", Description: "user name for the container account"},
				{Name: "PASSWD", Secret: true, Description: "password for the container account"},
			},
			Packages: &kilnfile.Packages{
				Update:  true,
				Upgrade: true,
				System: []kilnfile.PackageGroup{
					{Packages: []kilnfile.PackageName{"build-essential", "git", "curl"}},
					{Packages: []kilnfile.PackageName{"python3", "python3-pip", "python3-venv"}},
				},
				Python: []kilnfile.PackageName{"pip", "setuptools", "wheel"},
				Setup:  []kilnfile.ShellLine{"git config --system advice.detachedHead false"},
			},
			Deps: []kilnfile.Dependency{
				{
					Name: "example",
					Repo: "https://github.com/octocat/Hello-World.git",
					Ref:  "master",
					Path: "/opt/example",
				},
			},
			Env: &kilnfile.Env{
				Path: &kilnfile.SearchPath{
					Name:   "TOOL_PATH",
					Append: []string{"/opt/example"},
				},
				Vars: map[kilnfile.EnvVarName]string{"EDITOR": "vim"},
			},
			Account: &kilnfile.Account{
				GID:        "${GID}",
				Group:      "${GNAME}",
				UID:        "${UID}",
				User:       "${UNAME}",
				Password:   "${PASSWD}",
				AdminGroup: "sudo",
				Workspace:  "/workspace",
			},
			Shell: &kilnfile.Shell{
				RC: []kilnfile.ShellLine{"source /etc/profile"},
			},
			Ports:   []kilnfile.PortSpec{"8080"},
			WorkDir: "/workspace",
		}

	default: // "default"
		kf = &kilnfile.Kilnfile{
			Description: "Development container",
			Base:        kilnfile.Base{Image: "ubuntu:24.04"},
			Packages: &kilnfile.Packages{
				Update:  true,
				Upgrade: true,
				System: []kilnfile.PackageGroup{
					{Packages: []kilnfile.PackageName{"build-essential", "git", "curl"}},
				},
			},
			Env: &kilnfile.Env{
				Vars: map[kilnfile.EnvVarName]string{"EDITOR": "vim"},
			},
			Ports:   []kilnfile.PortSpec{"8080"},
			WorkDir: "/workspace",
		}
	}

	return kilnfile.GenerateCUE(kf)
}
