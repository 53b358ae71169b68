package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// Gateway settings (required for anything to work)
	Gateway GatewayConfig `koanf:"gateway"`

	// Playback engine settings
	Player PlayerConfig `koanf:"player"`

	Icons string `koanf:"icons"` // "nerd", "unicode", or "none"

	LogLevel string `koanf:"log_level"` // logrus level name (default: "info")
}

// GatewayConfig points at the metadata gateway that proxies Plex.
type GatewayConfig struct {
	URL string `koanf:"url"` // e.g., "http://localhost:3000"
}

// PlayerConfig holds playback engine configuration.
type PlayerConfig struct {
	Backend string `koanf:"backend"`  // "mpv" or "embedded" (default: "mpv")
	MPVPath string `koanf:"mpv_path"` // mpv binary override for the mpv backend

	SkipForwardSec int `koanf:"skip_forward_sec"` // default: 30
	SkipBackSec    int `koanf:"skip_back_sec"`    // default: 10
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	configPaths := getConfigPaths()

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Normalize gateway URL (remove trailing slash)
	cfg.Gateway.URL = strings.TrimSuffix(cfg.Gateway.URL, "/")

	// Expand ~ in mpv_path
	if cfg.Player.MPVPath != "" {
		cfg.Player.MPVPath = expandPath(cfg.Player.MPVPath)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/marquee/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "marquee", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasGatewayConfig returns true if a gateway URL is configured.
func (c *Config) HasGatewayConfig() bool {
	return c.Gateway.URL != ""
}

// GetPlayerConfig returns the player configuration with defaults applied.
func (c *Config) GetPlayerConfig() PlayerConfig {
	cfg := c.Player

	// Apply defaults
	if cfg.SkipForwardSec <= 0 {
		cfg.SkipForwardSec = 30
	}
	if cfg.SkipBackSec <= 0 {
		cfg.SkipBackSec = 10
	}

	return cfg
}

// GetLogLevel returns the configured log level, defaulting to info.
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}
