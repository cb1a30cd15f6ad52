// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// Package-level cache so every command sees one consistent view of the
// configuration after the root command resolves its flags. Loading happens
// during single-threaded command startup, so no locking is needed.
var (
	globalConfig *Config
	configPath   string

	// configDirOverride allows tests to override the config directory.
	// This is necessary because os.UserHomeDir() doesn't reliably respect
	// the HOME environment variable on all platforms (e.g., macOS in CI).
	configDirOverride string

	// configFilePathOverride forces Load to read a specific config file,
	// normally set from the --config flag.
	configFilePathOverride string
)

// Load returns the cached configuration, loading it on first use.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: configFilePathOverride,
	})
	if err != nil {
		return nil, err
	}

	globalConfig = cfg
	configPath = path
	return globalConfig, nil
}

// Get returns the loaded configuration, falling back to defaults when
// loading fails. Callers that need to surface load errors use Load.
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// ConfigFilePath returns the path of the file the cached configuration was
// loaded from, or "" when defaults are in use.
func ConfigFilePath() string {
	return configPath
}

// Reset clears the cache and all overrides. Call from test cleanup to
// restore defaults.
func Reset() {
	globalConfig = nil
	configPath = ""
	configDirOverride = ""
	configFilePathOverride = ""
}

// ResetCache clears the cached configuration but preserves overrides,
// forcing the next Load to re-read from disk.
func ResetCache() {
	globalConfig = nil
	configPath = ""
}

// SetConfigDirOverride sets a custom config directory path.
// This is primarily intended for testing to bypass os.UserHomeDir() which
// doesn't reliably respect the HOME env var on all platforms (e.g., macOS in CI).
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// SetConfigFilePathOverride forces Load to read the given config file.
func SetConfigFilePathOverride(path string) {
	configFilePathOverride = path
}
