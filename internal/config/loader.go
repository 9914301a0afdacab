package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1024 * 1024 // 1MB

// Load builds configuration by layering, lowest precedence first:
//  1. hardcoded defaults (Default())
//  2. the JSON file at configPath, if it exists
//  3. NEXUS_-prefixed environment variables
//
// configPath may be empty, in which case no file is loaded and only
// defaults + environment apply. Environment variables use underscores and
// are uppercased, e.g. NEXUS_HOST -> host, NEXUS_AUTH_ENABLED -> auth.enabled.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	k := koanf.New(".")
	if configPath != "" {
		content, err := readConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		if content != nil {
			if err := k.Load(rawbytes.Provider(content), json.Parser()); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
			}
		}
	}

	if err := loadEnvOverrides(k); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return content, nil
}

// loadEnvOverrides applies NEXUS_-prefixed environment variables on top of
// whatever the file/defaults already populated, using koanf's own env
// provider with a transform callback rather than scanning os.Environ by
// hand: NEXUS_HOST -> host, NEXUS_AUTH_ENABLED -> auth.enabled.
func loadEnvOverrides(k *koanf.Koanf) error {
	const prefix = "NEXUS_"
	provider := env.Provider(prefix, ".", func(s string) string {
		return envKeyToPath(strings.TrimPrefix(s, prefix))
	})
	if err := k.Load(provider, nil); err != nil {
		return fmt.Errorf("apply env overrides: %w", err)
	}
	return nil
}

func envKeyToPath(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", "."))
}

// EnsureConfigDir creates the default Nexus config directory.
func EnsureConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	dir := filepath.Join(home, ".config", "nexus")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create config directory %s: %w", dir, err)
	}
	return dir, nil
}
