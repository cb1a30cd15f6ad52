// SPDX-License-Identifier: MPL-2.0

package render

import (
	"fmt"
	"os"
	"path/filepath"

	"kiln-cli/internal/bake"
)

// Context writes the rendered Dockerfile into dir, creating it if needed,
// and returns the Dockerfile path. The directory is usable as a build
// context as-is; recipes carry no local files to copy in.
func Context(plan *bake.Plan, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create build context directory: %w", err)
	}
	path := filepath.Join(dir, "Dockerfile")
	if err := os.WriteFile(path, []byte(Dockerfile(plan)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write Dockerfile: %w", err)
	}
	return path, nil
}

// TempContext writes the build context into a fresh temporary directory and
// returns it with a cleanup function.
//
// Docker installed via Snap cannot read /tmp or hidden directories, so the
// context parent is a visible directory under the user's home when one
// exists, falling back to the working directory and finally the system
// temp dir.
func TempContext(plan *bake.Plan) (string, func(), error) {
	var parent string
	if home, err := os.UserHomeDir(); err == nil {
		if _, err := os.Stat(home); err == nil {
			parent = filepath.Join(home, "kiln-build")
		}
	}
	if parent == "" {
		if cwd, err := os.Getwd(); err == nil {
			parent = filepath.Join(cwd, ".kiln-build")
		} else {
			parent = filepath.Join(os.TempDir(), "kiln-build")
		}
	}
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", nil, fmt.Errorf("failed to create build context parent: %w", err)
	}

	dir, err := os.MkdirTemp(parent, "ctx-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create build context: %w", err)
	}
	cleanup := func() {
		_ = os.RemoveAll(dir) // best effort
	}

	if _, err := Context(plan, dir); err != nil {
		cleanup()
		return "", nil, err
	}
	return dir, cleanup, nil
}
