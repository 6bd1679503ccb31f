package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ConfigStore loads and saves a Config to config.json on fs.
type ConfigStore struct {
	fs   afero.Fs
	path string
}

// NewConfigStore returns a store that persists config.json at path on
// fs.
func NewConfigStore(fs afero.Fs, path string) *ConfigStore {
	return &ConfigStore{fs: fs, path: path}
}

// Load reads config.json, returning DefaultConfig if it doesn't exist
// yet.
func (c *ConfigStore) Load() (*Config, error) {
	if _, err := c.fs.Stat(c.path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	data, err := afero.ReadFile(c.fs, c.path)
	if err != nil {
		return nil, err
	}
	config := &Config{}
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}
	return migrate(config), nil
}

// Save writes config to config.json atomically: to a temp file in the
// same directory, then renamed into place.
func (c *ConfigStore) Save(config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	tmp := c.path + ".tmp"
	if err := afero.WriteFile(c.fs, tmp, data, 0644); err != nil {
		return err
	}
	return c.fs.Rename(tmp, c.path)
}

// CreateIfMissing writes a default config.json if none exists.
func (c *ConfigStore) CreateIfMissing() error {
	if _, err := c.fs.Stat(c.path); errors.Is(err, os.ErrNotExist) {
		return c.Save(DefaultConfig())
	}
	return nil
}

func migrate(config *Config) *Config {
	if config.Version == 0 {
		config.Version = 1
	}
	if config.DefaultFormat == "" {
		config.DefaultFormat = "autodetect"
	}
	if config.CacheSize == 0 {
		config.CacheSize = 64
	}
	return config
}

// DefaultConfigPath returns the conventional config.json location
// under the user's config directory.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gbalink", "config.json"), nil
}
