// Package config loads the global ~/.imx/config.toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/stecurtis/imx/internal/paths"
)

// DefaultRefreshMinutes is the scheduled-run interval used when the config
// file does not set one.
const DefaultRefreshMinutes = 30

// Config holds everything the glue layer needs to wire a run: where the
// source store lives, where exports are published, and how often the daemon
// runs. Core packages receive these values explicitly and never resolve
// ambient locations themselves.
type Config struct {
	StorePath          string `toml:"store_path"`
	DataRoot           string `toml:"data_root"`
	RefreshMinutes     int    `toml:"refresh_minutes"`
	IncludeAttachments bool   `toml:"include_attachments"`
}

// Default returns a config pointing at the standard macOS locations.
func Default() *Config {
	return &Config{
		StorePath:          paths.DefaultStorePath(),
		DataRoot:           paths.DefaultDataRoot(),
		RefreshMinutes:     DefaultRefreshMinutes,
		IncludeAttachments: true,
	}
}

// Load reads config from the given path, overlaying file values on the
// defaults. A missing file yields the defaults with no error; a malformed
// file yields the defaults plus the parse error so the caller can warn and
// keep going.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.clamp()
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

func (c *Config) clamp() {
	if c.RefreshMinutes < 1 {
		c.RefreshMinutes = 1
	}
	if c.StorePath == "" {
		c.StorePath = paths.DefaultStorePath()
	}
	if c.DataRoot == "" {
		c.DataRoot = paths.DefaultDataRoot()
	}
}
