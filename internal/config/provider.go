// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"path/filepath"
)

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	ConfigFilePath string
	// ConfigDirPath overrides the config directory lookup when set.
	ConfigDirPath string
}

// Provider loads configuration from explicit options. The cmd layer holds
// one per App so tests can swap in static configs.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

// NewProvider creates the file-backed provider.
func NewProvider() Provider {
	return &fileProvider{}
}

type fileProvider struct{}

// Load reads configuration from the requested source, with defaults for
// everything the source does not set.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	return cfg, err
}

// SourcePath reports the config file the given options would load from,
// or "" when no file exists and only defaults apply. It does not read
// the file.
func SourcePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, nil
	}
	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	path := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if !fileExists(path) {
		return "", nil
	}
	return path, nil
}
