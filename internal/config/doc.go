// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/kiln/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/kiln/config.cue on macOS, %APPDATA%\kiln\config.cue
// on Windows). The package provides type-safe configuration access covering container
// engine selection, workspace location, registry defaults, UI settings, and build
// behavior.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to
// ensure type safety and provide clear error messages for invalid configurations.
package config
