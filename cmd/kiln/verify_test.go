// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kiln-cli/internal/config"
	"kiln-cli/internal/testutil"
)

// verifyRecipe promises one environment variable and a workdir, the two
// properties a test can provision without deps, accounts, or git history.
const verifyRecipe = `
base: image: "ubuntu:24.04"
env: {
	vars: {KILN_TEST_VERIFY_VAR: "ok"}
}
workdir: "/workspace"
`

func TestVerifyCommand_AllChecksPass(t *testing.T) {
	// Not parallel: sets an environment variable.
	isolateConfig(t)

	dir := t.TempDir()
	path := writeRecipe(t, dir, verifyRecipe)

	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "workspace"), 0o755); err != nil {
		t.Fatalf("failed to create workspace dir: %v", err)
	}
	restore := testutil.MustSetenv(t, "KILN_TEST_VERIFY_VAR", "ok")
	defer restore()

	app := mustTestApp(t, Dependencies{
		Config: staticConfigProvider{cfg: config.DefaultConfig()},
		Git:    staticGitProvider{},
	})

	stdout, _, err := runCommand(t, newVerifyCommand(app), "-f", path, "--root", root)
	if err != nil {
		t.Fatalf("verify returned unexpected error: %v", err)
	}
	for _, want := range []string{"env KILN_TEST_VERIFY_VAR", "workdir", "2 checks passed"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout is missing %q\n%s", want, stdout)
		}
	}
}

func TestVerifyCommand_FailedChecksExitNonZero(t *testing.T) {
	// Not parallel: sets an environment variable.
	isolateConfig(t)

	dir := t.TempDir()
	path := writeRecipe(t, dir, verifyRecipe)

	// Empty root: the workspace directory is missing, and the variable
	// carries the wrong value.
	root := t.TempDir()
	restore := testutil.MustSetenv(t, "KILN_TEST_VERIFY_VAR", "drifted")
	defer restore()

	app := mustTestApp(t, Dependencies{
		Config: staticConfigProvider{cfg: config.DefaultConfig()},
		Git:    staticGitProvider{},
	})

	stdout, _, err := runCommand(t, newVerifyCommand(app), "-f", path, "--root", root)
	if err == nil {
		t.Fatal("verify succeeded against a drifted environment, want error")
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("verify error = %T, want *ExitError", err)
	}
	if exitErr.Code != 1 {
		t.Errorf("exit code = %d, want 1", exitErr.Code)
	}
	if !strings.Contains(err.Error(), "2 of 2 checks failed") {
		t.Errorf("error = %v, want the failed check count", err)
	}
	if !strings.Contains(stdout, "✗") {
		t.Errorf("stdout = %q, want failed check markers", stdout)
	}
}
