// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// FormatError rewrites a CUE error for display, prefixing each detail with
// the file path and the JSON-style path of the failing field:
//
//	kilnfile.cue: deps[0].commit: value does not match pattern
//	config.cue: engine: 2 errors in empty disjunction
//
// Non-CUE errors are wrapped with the file path unchanged.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	details := errors.Errors(err)
	if len(details) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	lines := make([]string, 0, len(details))
	for _, detail := range details {
		lines = append(lines, describe(detail))
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filePath, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

// describe renders one CUE error detail as "<json-path>: <message>". CUE
// often repeats the field path inside the message, so a leading copy of the
// path is stripped to avoid "deps[0].commit: deps[0].commit: ..." output.
func describe(detail errors.Error) string {
	msg := detail.Error()

	path := jsonPath(errors.Path(detail))
	if path == "" {
		return msg
	}
	if rest, found := strings.CutPrefix(msg, path); found {
		msg = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
	}
	return path + ": " + msg
}

// jsonPath converts a CUE error path, a flat slice like
// ["deps", "0", "commit"], into "deps[0].commit".
func jsonPath(parts []string) string {
	var b strings.Builder
	for i, part := range parts {
		switch {
		case i > 0 && isIndex(part):
			b.WriteString("[")
			b.WriteString(part)
			b.WriteString("]")
		case i > 0:
			b.WriteString(".")
			b.WriteString(part)
		default:
			b.WriteString(part)
		}
	}
	return b.String()
}

func isIndex(part string) bool {
	if part == "" {
		return false
	}
	for _, r := range part {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize rejects data larger than maxSize. The limit keeps a
// malformed or hostile document from exhausting memory inside the CUE
// evaluator.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes",
			filename, len(data), maxSize)
	}
	return nil
}
