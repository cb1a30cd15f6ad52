// SPDX-License-Identifier: MPL-2.0

package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kiln-cli/internal/testutil/kilnfiletest"
)

func TestContext_WritesDockerfile(t *testing.T) {
	t.Parallel()

	plan := symbolicPlan(t, kilnfiletest.New())
	dir := filepath.Join(t.TempDir(), "ctx")

	path, err := Context(plan, dir)
	if err != nil {
		t.Fatalf("Context() returned unexpected error: %v", err)
	}
	if path != filepath.Join(dir, "Dockerfile") {
		t.Errorf("Context() path = %q, want it inside %q", path, dir)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written Dockerfile: %v", err)
	}
	if got, want := string(data), Dockerfile(plan); got != want {
		t.Errorf("written Dockerfile differs from rendered text:\n%s", got)
	}
}

func TestContext_CreatesNestedDir(t *testing.T) {
	t.Parallel()

	plan := symbolicPlan(t, kilnfiletest.New())
	dir := filepath.Join(t.TempDir(), "a", "b", "ctx")

	if _, err := Context(plan, dir); err != nil {
		t.Fatalf("Context() should create missing parents, got error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Dockerfile")); err != nil {
		t.Errorf("Dockerfile not written into nested dir: %v", err)
	}
}

func TestTempContext(t *testing.T) {
	// Not parallel: HOME is process wide.
	t.Setenv("HOME", t.TempDir())

	plan := symbolicPlan(t, kilnfiletest.New())

	dir, cleanup, err := TempContext(plan)
	if err != nil {
		t.Fatalf("TempContext() returned unexpected error: %v", err)
	}

	if base := filepath.Base(dir); !strings.HasPrefix(base, "ctx-") {
		t.Errorf("TempContext() dir = %q, want a ctx-* directory", dir)
	}
	if _, err := os.Stat(filepath.Join(dir, "Dockerfile")); err != nil {
		t.Errorf("Dockerfile not written into temp context: %v", err)
	}

	cleanup()
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("cleanup should remove the context directory, stat err = %v", err)
	}
}
