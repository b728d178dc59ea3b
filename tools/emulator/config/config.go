package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// Config is the emulator's JSON configuration: a list of servers, each bound
// to one port and holding its own set of emulated tables.
type Config []ServerConfig

// Load reads the default configuration file (emulator.json) or the one named
// by EMULATOR_CONFIG_PATH. A missing file is not fatal: the emulator starts
// with no tables rather than refusing to boot.
func Load() Config {
	cfg := make(Config, 0)

	path := os.Getenv("EMULATOR_CONFIG_PATH")
	if path == "" {
		path = "emulator.json"
	}

	if err := cfg.LoadFromFile(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("starting emulator without tables")
		return cfg
	}
	return cfg
}

// LoadFromFile parses the configuration at filepath into cfg.
func (cfg *Config) LoadFromFile(filepath string) error {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config json: %w", err)
	}
	return nil
}
