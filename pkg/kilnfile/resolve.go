// SPDX-License-Identifier: MPL-2.0

package kilnfile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"kiln-cli/pkg/types"
)

// ErrMissingArgs is the sentinel error wrapped by MissingArgsError.
var ErrMissingArgs = errors.New("missing arg values")

type (
	// ResolveOptions controls where arg values come from.
	ResolveOptions struct {
		// Values are explicit name=value overrides (highest precedence),
		// typically from --arg flags.
		Values map[ArgName]string

		// Files are dotenv-style arg files loaded in order. Later files
		// override earlier ones; explicit Values override both.
		Files []types.FilesystemPath

		// LookupEnv consults the process environment for declared arg
		// names. Defaults to os.LookupEnv when nil.
		LookupEnv func(string) (string, bool)
	}

	// MissingArgsError is returned when declared args without defaults
	// receive no value from any source.
	MissingArgsError struct {
		Names []ArgName
	}
)

// Error implements the error interface for MissingArgsError.
func (e *MissingArgsError) Error() string {
	names := make([]string, len(e.Names))
	for i, n := range e.Names {
		names[i] = string(n)
	}
	return fmt.Sprintf("missing arg values: %s", strings.Join(names, ", "))
}

// Unwrap returns ErrMissingArgs for errors.Is() compatibility.
func (e *MissingArgsError) Unwrap() error { return ErrMissingArgs }

// ResolveArgs produces a concrete value for every declared arg.
//
// Precedence, highest first: explicit Values, arg files (later files win),
// process environment, declared defaults. Args left without a value are
// reported together in a MissingArgsError.
func (k *Kilnfile) ResolveArgs(opts ResolveOptions) (map[ArgName]string, error) {
	lookupEnv := opts.LookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}

	fromFiles := make(map[string]string)
	for _, f := range opts.Files {
		vals, err := godotenv.Read(string(f))
		if err != nil {
			return nil, fmt.Errorf("failed to read arg file %s: %w", f, err)
		}
		for k, v := range vals {
			fromFiles[k] = v
		}
	}

	resolved := make(map[ArgName]string, len(k.Args))
	var missing []ArgName
	for _, arg := range k.Args {
		if v, ok := opts.Values[arg.Name]; ok {
			resolved[arg.Name] = v
			continue
		}
		if v, ok := fromFiles[string(arg.Name)]; ok {
			resolved[arg.Name] = v
			continue
		}
		if v, ok := lookupEnv(string(arg.Name)); ok {
			resolved[arg.Name] = v
			continue
		}
		if arg.Default != "" {
			resolved[arg.Name] = arg.Default
			continue
		}
		missing = append(missing, arg.Name)
	}

	if len(missing) > 0 {
		return nil, &MissingArgsError{Names: missing}
	}
	return resolved, nil
}

// SymbolicArgs returns an identity value map for every declared arg, mapping
// each name to its own ${NAME} placeholder. Expanding recipe fields with this
// map leaves placeholders intact, which is what Dockerfile rendering needs:
// the placeholders become ARG references resolved by the container engine.
func (k *Kilnfile) SymbolicArgs() map[ArgName]string {
	vals := make(map[ArgName]string, len(k.Args))
	for _, arg := range k.Args {
		vals[arg.Name] = arg.Name.Placeholder()
	}
	return vals
}
