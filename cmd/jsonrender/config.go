package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds CLI configuration.
// Priority: flags > env vars > settings.json > defaults.
type Config struct {
	LogLevel    string `json:"log_level"`
	CatalogPath string `json:"catalog_path"`
	Validation  string `json:"validation"`
	Metrics     bool   `json:"metrics"`
}

func defaultConfig() Config {
	return Config{
		LogLevel:   "warn",
		Validation: "strict",
	}
}

func jsonrenderDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".jsonrender"
	}
	return filepath.Join(home, ".jsonrender")
}

func settingsPath() string {
	return filepath.Join(jsonrenderDir(), "settings.json")
}

// loadConfig layers settingsFile and environment lookups over the defaults.
// A missing or unreadable settings file is ignored.
func loadConfig(settingsFile string, getenv func(string) string) Config {
	cfg := defaultConfig()

	if data, err := os.ReadFile(settingsFile); err == nil {
		_ = json.Unmarshal(data, &cfg)
	}

	if v := getenv("JSONRENDER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("JSONRENDER_CATALOG_PATH"); v != "" {
		cfg.CatalogPath = v
	}
	if v := getenv("JSONRENDER_VALIDATION"); v != "" {
		cfg.Validation = v
	}
	if v := getenv("JSONRENDER_METRICS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics = b
		}
	}

	return cfg
}
