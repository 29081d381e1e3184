// Package config loads the small YAML document that drives the mdvault
// CLI: which directory to index, which extensions count as source files,
// and how to log.
package config

import (
	"fmt"
	"os"

	"github.com/cuemby/mdvault/pkg/log"
	"gopkg.in/yaml.v3"
)

// Config is the CLI's root configuration document.
type Config struct {
	// Root is the directory the vault is built from.
	Root string `yaml:"root"`

	// Extensions is the accepted-extension set for the scanner, defaulting
	// to markdown files when empty.
	Extensions []string `yaml:"extensions"`

	// LogLevel is one of debug/info/warn/error.
	LogLevel string `yaml:"log_level"`

	// LogJSON switches the logger from console to structured JSON output.
	LogJSON bool `yaml:"log_json"`

	// MetricsAddr is the address `mdvault serve` binds its /metrics and
	// /health endpoints to.
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Root:        ".",
		Extensions:  []string{"md", "markdown"},
		LogLevel:    "info",
		MetricsAddr: "127.0.0.1:9090",
	}
}

// Load reads and parses a YAML config document at path, falling back to
// Default for any field left unset.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}

	loaded := Default()
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return Config{}, fmt.Errorf("parse config %q: %w", path, err)
	}

	return loaded, nil
}

// LogConfig derives a pkg/log.Config from the loaded configuration.
func (c Config) LogConfig() log.Config {
	return log.Config{
		Level:      log.Level(c.LogLevel),
		JSONOutput: c.LogJSON,
	}
}
