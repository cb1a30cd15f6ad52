// SPDX-License-Identifier: MPL-2.0

// Package container abstracts the CLI container engines (Docker/Podman)
// that turn rendered build contexts into images. Engines share a common
// base implementation; selection prefers the configured engine and falls
// back to whichever one is available.
package container
