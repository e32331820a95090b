package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const defaultPageSize = 25

type consoleConfig struct {
	Server   string `yaml:"server,omitempty"`
	PageSize int    `yaml:"page_size,omitempty"`
	Theme    string `yaml:"theme,omitempty"`
}

func (c *consoleConfig) normalize() {
	if c.Server == "" {
		c.Server = "http://localhost:8080"
	}
	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
}

func loadConsoleConfig() (*consoleConfig, string) {
	configDir := resolveConfigDir()
	path := filepath.Join(configDir, "console.yaml")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		cfg := &consoleConfig{}
		cfg.normalize()
		return cfg, path
	}
	data, err := os.ReadFile(path)
	if err != nil {
		cfg := &consoleConfig{}
		cfg.normalize()
		return cfg, path
	}
	var cfg consoleConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		cfg = consoleConfig{}
	}
	cfg.normalize()
	return &cfg, path
}

func saveConsoleConfig(cfg *consoleConfig, path string) error {
	if cfg == nil {
		cfg = &consoleConfig{}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func resolveConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "yeti-admin")
}
