// SPDX-License-Identifier: MPL-2.0

package bake

import (
	"fmt"
	"strings"
)

// EnvFile is where direct application persists environment variables. It is
// sourced by login shells; image builds use ENV directives instead and
// never touch it.
const EnvFile = "/etc/profile.d/kiln-env.sh"

// AppendLineCommand returns the shell command that appends line to file.
// The renderer and the direct applier both compose the command here, so the
// bytes that land in the file are identical either way.
func AppendLineCommand(line, file string) string {
	return "echo " + shellQuote(line) + " >> " + file
}

// ExportLineCommand returns the shell command that persists one environment
// variable as an export line in file.
func ExportLineCommand(name, value, file string) string {
	return AppendLineCommand(fmt.Sprintf("export %s=%q", name, value), file)
}

// shellQuote wraps s in single quotes, escaping embedded single quotes the
// POSIX way. Single quotes keep the appended line free of shell expansion.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
