// Package config loads engine configuration from the environment and
// content packs from YAML files.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the engine's environment-driven settings.
type Config struct {
	// DBPath is the SQLite file holding persisted world state.
	DBPath string `env:"ALMANAC_DB_PATH" envDefault:"almanac.db"`
	// CalendarDir holds calendar definition YAML files.
	CalendarDir string `env:"ALMANAC_CALENDAR_DIR" envDefault:"content/calendars"`
	// EventDir holds event pack YAML files.
	EventDir string `env:"ALMANAC_EVENT_DIR" envDefault:"content/events"`
	// Locale selects the error message catalog.
	Locale string `env:"ALMANAC_LOCALE" envDefault:"en-US"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// FromEnv returns the engine configuration from the environment.
func FromEnv() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
