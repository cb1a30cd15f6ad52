// SPDX-License-Identifier: MPL-2.0

// Package cueutil wraps the CUE evaluation flow shared by the recipe and
// configuration loaders.
//
// Both file formats follow the same pattern: an embedded schema with a
// single root definition, user documents unified against that definition,
// and the unified result decoded into a Go value. A Schema is compiled once
// per embedded source, typically in a package-level var:
//
//	//go:embed kilnfile_schema.cue
//	var schemaSrc []byte
//
//	var schema = cueutil.MustSchema(schemaSrc, "#Kilnfile")
//
//	kf, err := cueutil.Decode[Kilnfile](schema, data,
//	    cueutil.WithFilename("kilnfile.cue"))
//
// Validation failures are reported with JSON-style paths such as
// deps[0].commit so users can locate the offending field.
package cueutil
