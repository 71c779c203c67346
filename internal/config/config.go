package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const (
	defaultDBPath       = "./menucost.db"
	defaultPort         = "8080"
	defaultEnv          = "dev"
	defaultSettingsPath = "./settings.yaml"
)

// Config holds application configuration sourced from environment variables
// and the optional settings file.
type Config struct {
	Env          string
	DBPath       string
	Port         string
	LogDebug     bool
	SettingsPath string
	Settings     Settings
}

// IsDev reports whether the process runs in development mode, where
// migrations and the demo seed run at startup.
func (c Config) IsDev() bool {
	return c.Env == "" || c.Env == defaultEnv
}

// Load reads environment variables and the settings file and returns a
// populated Config.
func Load() (Config, error) {
	// Best-effort: load local dev environment variables.
	// Production should use real env injection.
	if err := loadDotEnv(".env"); err != nil {
		slog.Warn("config.dotenv_unreadable", "err", err)
	}

	cfg := Config{
		Env:          strings.ToLower(os.Getenv("APP_ENV")),
		DBPath:       os.Getenv("DB_PATH"),
		Port:         os.Getenv("PORT"),
		SettingsPath: os.Getenv("SETTINGS_PATH"),
	}

	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.SettingsPath == "" {
		cfg.SettingsPath = defaultSettingsPath
	}

	if raw := os.Getenv("LOG_DEBUG"); raw != "" {
		debug, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse LOG_DEBUG: %w", err)
		}
		cfg.LogDebug = debug
	}

	settings, err := LoadSettings(cfg.SettingsPath)
	if err != nil {
		return Config{}, err
	}
	cfg.Settings = settings

	return cfg, nil
}
