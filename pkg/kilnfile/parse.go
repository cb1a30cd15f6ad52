// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"kiln-cli/pkg/cueutil"
)

//go:embed kilnfile_schema.cue
var kilnfileSchemaSrc []byte

// kilnfileSchema is the compiled recipe schema; user documents are unified
// with its #Kilnfile definition.
var kilnfileSchema = cueutil.MustSchema(kilnfileSchemaSrc, "#Kilnfile")

// DefaultFileNames are the recipe file names Locate probes for, in order.
var DefaultFileNames = []string{"kilnfile.cue", "kilnfile"}

// ErrNotFound is returned by Locate when a directory has no recipe file.
var ErrNotFound = errors.New("no kilnfile found")

// Parse reads and decodes the kilnfile at path, validating it against the
// embedded schema and the model-level rules.
func Parse(path string) (*Kilnfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read kilnfile: %w", err)
	}

	kf, err := ParseBytes(data, cueutil.WithFilename(filepath.Base(path)))
	if err != nil {
		return nil, err
	}
	kf.FilePath = path
	return kf, nil
}

// ParseBytes decodes kilnfile content that is already in memory.
func ParseBytes(data []byte, opts ...cueutil.Option) (*Kilnfile, error) {
	kf, err := cueutil.Decode[Kilnfile](kilnfileSchema, data, opts...)
	if err != nil {
		return nil, err
	}

	if err := kf.Validate(); err != nil {
		return nil, err
	}
	return kf, nil
}

// Locate returns the recipe file in dir, probing DefaultFileNames in order.
func Locate(dir string) (string, error) {
	for _, name := range DefaultFileNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrNotFound, dir)
}
