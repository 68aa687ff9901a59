package config

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

var ErrConfigNotFound = errors.New("config not found")

const (
	EnvTranscribeURL = "ASLBRIDGE_TRANSCRIBE_URL"
	EnvSignURL       = "ASLBRIDGE_SIGN_URL"
)

// GetConfigPath returns $XDG_CONFIG_HOME/aslbridge/config.toml, creating the
// directory if needed.
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	appDir := filepath.Join(configDir, "aslbridge")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(appDir, "config.toml"), nil
}

// Load reads the user's config file, writing the defaults first if none exists.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Printf("Config: no config file found at %s, creating with defaults", configPath)
		if err := SaveDefaultConfig(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", configPath, err)
	}

	loadDotEnv(filepath.Join(filepath.Dir(configPath), ".env"))
	return LoadFile(configPath)
}

// LoadFile decodes a config file on top of the defaults and applies
// environment overrides.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}

	log.Printf("Config: loading configuration from %s", path)
	config := DefaultConfig()
	meta, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		log.Printf("Config: ignoring unknown keys: %v", undecoded)
	}

	config.applyEnvOverrides()

	log.Printf("Config: configuration loaded successfully")
	return config, nil
}

// loadDotEnv loads KEY=value pairs from path without overriding variables
// that are already set.
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		log.Printf("Config: failed to load %s: %v", path, err)
		return
	}
	log.Printf("Config: loaded environment from %s", path)
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv(EnvTranscribeURL); url != "" {
		c.Transcription.URL = url
	}
	if url := os.Getenv(EnvSignURL); url != "" {
		c.Sign.URL = url
	}
}

const configHeader = `# ASL Bridge configuration
# Changes are picked up by the running daemon without a restart.
#
# Durations use Go syntax: "30s", "2m".
# API keys may be left empty and provided via OPENAI_API_KEY / GROQ_API_KEY,
# either in the environment or in a .env file next to this one.

`

// Save writes config to the user's config file.
func Save(config *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(configPath, config)
}

// SaveFile writes config as TOML to path.
func SaveFile(path string, config *Config) error {
	var buf bytes.Buffer
	buf.WriteString(configHeader)
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	log.Printf("Config: saved configuration to %s", path)
	return nil
}

func SaveDefaultConfig() error {
	return Save(DefaultConfig())
}
