// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for kiln.
//
// This package implements the Cobra command hierarchy for the kiln CLI:
// the root command, recipe operations (render, build, apply, verify, lock,
// validate), and housekeeping commands (init, config, completion).
package cmd
