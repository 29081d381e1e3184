package main

import (
	"github.com/cuemby/mdvault/pkg/config"
	"github.com/cuemby/mdvault/pkg/log"
	"github.com/cuemby/mdvault/pkg/vault"
	"github.com/spf13/cobra"
)

func initLogging() {
	cfg := loadConfig(rootCmd)
	log.Init(cfg.LogConfig())
}

// loadConfig resolves the effective configuration for a command: the
// config file (if any), overridden by whichever persistent flags the user
// actually set.
func loadConfig(cmd *cobra.Command) config.Config {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		cfg = config.Default()
	}

	if root, _ := cmd.Flags().GetString("root"); root != "" {
		cfg.Root = root
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if json, _ := cmd.Flags().GetBool("log-json"); json {
		cfg.LogJSON = true
	}

	return cfg
}

func scanConfig(cfg config.Config) vault.ScanConfig {
	if len(cfg.Extensions) == 0 {
		return vault.DefaultScanConfig()
	}
	return vault.ScanConfig{Extensions: cfg.Extensions}
}
