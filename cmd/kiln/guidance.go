// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"kiln-cli/internal/apply"
	"kiln-cli/internal/bake"
	"kiln-cli/internal/config"
	"kiln-cli/internal/container"
	"kiln-cli/internal/issue"
	"kiln-cli/internal/lockfile"
	"kiln-cli/pkg/kilnfile"
)

// recipeParseErrs are the recipe validation sentinels that all share the
// parse-error guidance.
var recipeParseErrs = []error{
	kilnfile.ErrInvalidArgName,
	kilnfile.ErrUnknownArg,
	kilnfile.ErrInvalidImageRef,
	kilnfile.ErrInvalidShellLine,
	kilnfile.ErrInvalidPortSpec,
	kilnfile.ErrInvalidEnvVarName,
	kilnfile.ErrInvalidPackageName,
	kilnfile.ErrInvalidDependencyName,
	kilnfile.ErrInvalidRepoURL,
	kilnfile.ErrInvalidCommitHash,
}

// issueFor maps well-known failures to their guidance registry entry.
// Errors without a registered entry return nil and are shown as-is.
func issueFor(err error) *issue.Issue {
	if err == nil {
		return nil
	}

	var stepErr *apply.StepError

	switch {
	case errors.Is(err, kilnfile.ErrNotFound):
		return issue.Get(issue.KilnfileNotFoundId)
	case errors.Is(err, kilnfile.ErrMissingArgs):
		return issue.Get(issue.MissingArgsId)
	case errors.Is(err, bake.ErrUnpinned):
		return issue.Get(issue.UnpinnedDependencyId)
	case errors.Is(err, lockfile.ErrLockDrift):
		return issue.Get(issue.LockDriftId)
	case errors.Is(err, container.ErrEngineNotAvailable):
		return issue.Get(issue.ContainerEngineNotFoundId)
	case errors.As(err, &stepErr):
		return issue.Get(issue.ApplyAbortedId)
	case errors.Is(err, os.ErrPermission):
		return issue.Get(issue.PermissionDeniedId)
	}

	for _, sentinel := range recipeParseErrs {
		if errors.Is(err, sentinel) {
			return issue.Get(issue.KilnfileParseErrorId)
		}
	}
	return nil
}

// printGuidance renders the guidance registered for err, if any, after the
// error itself has been reported.
func printGuidance(w io.Writer, err error) {
	printIssue(w, issueFor(err))
}

// printIssue renders a single registry entry. A broken render is dropped
// rather than shown; the plain error text has already been printed.
func printIssue(w io.Writer, entry *issue.Issue) {
	if entry == nil {
		return
	}
	rendered, err := entry.Render(guidanceStyle())
	if err != nil {
		return
	}
	fmt.Fprint(w, rendered)
}

// guidanceStyle picks the glamour style for guidance markdown from the
// configured color scheme.
func guidanceStyle() string {
	cfg, err := config.Load()
	if err != nil || cfg == nil {
		return "dark"
	}
	if cfg.UI.ColorScheme == config.ColorSchemeLight {
		return "light"
	}
	return "dark"
}
