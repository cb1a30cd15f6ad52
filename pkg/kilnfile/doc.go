// SPDX-License-Identifier: MPL-2.0

// Package kilnfile defines the schema, parsing, and validation for kilnfile
// CUE recipes.
//
// A kilnfile describes a reproducible development container image as data:
// the base image, system and Python packages, source dependencies pinned to
// exact commits, environment variables, the development account, and the
// shell finalization. The bake package expands a parsed Kilnfile into an
// ordered provisioning plan; the render package turns that plan into a
// Dockerfile.
//
// Fields that vary per build (ids, names, passwords, ports) are declared as
// args and referenced elsewhere with ${NAME} placeholders. Placeholders are
// left symbolic when rendering a Dockerfile (they become ARG references) and
// expanded to concrete values for direct application and verification.
// Shell lines (packages.setup, shell.rc) are the exception: they pass
// through verbatim, with ${...} resolved by the shell that eventually runs
// or sources them.
package kilnfile
