// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kiln-cli/internal/bake"
	"kiln-cli/internal/config"
	"kiln-cli/internal/issue"
	"kiln-cli/internal/lockfile"
	"kiln-cli/pkg/kilnfile"
	"kiln-cli/pkg/types"

	"github.com/spf13/cobra"
)

// recipeFlags are the flags shared by every command that reads a recipe.
type recipeFlags struct {
	file     string
	lockPath string
	args     []string
	argFiles []string
}

// register adds the recipe location flags to a command.
func (f *recipeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "path to the kilnfile (default: kilnfile.cue in the current directory)")
	cmd.Flags().StringVar(&f.lockPath, "lock", "", "path to the lock file (default: kiln.lock next to the kilnfile)")
}

// registerArgValues adds the arg value flags to a command that resolves
// concrete arg values.
func (f *recipeFlags) registerArgValues(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.args, "arg", nil, "arg value as NAME=VALUE (repeatable)")
	cmd.Flags().StringArrayVar(&f.argFiles, "arg-file", nil, "dotenv file providing arg values (repeatable)")
}

// resolveOptions translates the arg flags into resolution options.
func (f *recipeFlags) resolveOptions() (kilnfile.ResolveOptions, error) {
	vals, err := parseArgValues(f.args)
	if err != nil {
		return kilnfile.ResolveOptions{}, err
	}
	files := make([]types.FilesystemPath, len(f.argFiles))
	for i, p := range f.argFiles {
		files[i] = types.FilesystemPath(p)
	}
	return kilnfile.ResolveOptions{Values: vals, Files: files}, nil
}

// parseArgValues parses repeated NAME=VALUE pairs from --arg flags.
func parseArgValues(pairs []string) (map[kilnfile.ArgName]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vals := make(map[kilnfile.ArgName]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --arg %q: expected NAME=VALUE", pair)
		}
		vals[kilnfile.ArgName(name)] = value
	}
	return vals, nil
}

// locateKilnfile resolves the recipe path from the --file flag, the current
// directory, and the configured workspace root, in that order.
func locateKilnfile(ctx context.Context, app *App, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	path, err := kilnfile.Locate(".")
	if err == nil {
		return path, nil
	}
	if !errors.Is(err, kilnfile.ErrNotFound) {
		return "", err
	}

	cfg := loadConfigWithFallback(ctx, app.Config)
	if cfg.WorkspaceRoot != "" {
		path, err = kilnfile.Locate(string(cfg.WorkspaceRoot))
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, kilnfile.ErrNotFound) {
			return "", err
		}
	}

	return "", issue.NewErrorContext().
		WithOperation("locate kilnfile").
		WithSuggestion("Run 'kiln init' to create a starter kilnfile").
		WithSuggestion("Use --file to point at a recipe elsewhere").
		WithSuggestion("Set workspace_root in the kiln configuration").
		Wrap(kilnfile.ErrNotFound).
		BuildError()
}

// loadRecipe parses the recipe and folds lock file pins into dependencies
// that carry no inline commit. It returns the parsed recipe and the lock
// file path that applies to it.
func loadRecipe(ctx context.Context, app *App, flags *recipeFlags) (*kilnfile.Kilnfile, string, error) {
	path, err := locateKilnfile(ctx, app, flags.file)
	if err != nil {
		return nil, "", err
	}

	kf, err := kilnfile.Parse(path)
	if err != nil {
		return nil, "", err
	}

	lockPath := flags.lockPath
	if lockPath == "" {
		lockPath = lockfile.PathFor(path)
	}
	lf, err := lockfile.LoadIfPresent(lockPath)
	if err != nil {
		return nil, "", err
	}
	if err := lf.Apply(kf); err != nil {
		return nil, "", err
	}
	return kf, lockPath, nil
}

// resolvedPlan expands the recipe with concrete arg values and plans it.
// It returns the plan together with the resolved values, so callers that
// forward values elsewhere (build args) reuse the same resolution.
func resolvedPlan(kf *kilnfile.Kilnfile, opts kilnfile.ResolveOptions) (*bake.Plan, map[kilnfile.ArgName]string, error) {
	vals, err := kf.ResolveArgs(opts)
	if err != nil {
		return nil, nil, err
	}
	expanded, err := bake.Expand(kf, vals)
	if err != nil {
		return nil, nil, err
	}
	plan, err := bake.New(expanded)
	if err != nil {
		return nil, nil, err
	}
	return plan, vals, nil
}

// symbolicPlan expands the recipe with identity placeholders and plans it.
// The resulting plan renders to a Dockerfile whose ARG directives carry the
// resolution to the container engine instead of baking values in.
func symbolicPlan(kf *kilnfile.Kilnfile) (*bake.Plan, error) {
	expanded, err := bake.Expand(kf, kf.SymbolicArgs())
	if err != nil {
		return nil, err
	}
	return bake.New(expanded)
}

// engineTypeFor picks the engine preference: the --engine flag when given,
// otherwise the configured engine, otherwise auto detection.
func engineTypeFor(flagValue string, cfg *config.Config) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg != nil && cfg.Engine != "" {
		return string(cfg.Engine)
	}
	return string(config.EngineAuto)
}
