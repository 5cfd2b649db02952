// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. Fields are pointers
// so an unset value is distinguishable from an explicit zero.
type FileConfig struct {
	Server      ServerConfig      `toml:"server"`
	Matchmaking MatchmakingConfig `toml:"matchmaking"`
}

// ServerConfig maps server-related settings.
type ServerConfig struct {
	Addr       *string `toml:"addr"`
	ContentDir *string `toml:"content-dir"`
}

// MatchmakingConfig maps matchmaking-related settings.
type MatchmakingConfig struct {
	WPMRange       *int   `toml:"wpm-range"`
	MinPlayers     *int   `toml:"min-players"`
	MaxPlayers     *int   `toml:"max-players"`
	ExpandAfterMs  *int64 `toml:"expand-after-ms"`
	ExpandStep     *int   `toml:"expand-step"`
	MaxWPMRange    *int   `toml:"max-wpm-range"`
	TickIntervalMs *int64 `toml:"tick-interval-ms"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
