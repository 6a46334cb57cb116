package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, CHAT_CONFIG env, ./config.yaml, /etc/chatstream/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	// Start with defaults.
	cfg := Defaults()

	// Discover and load YAML config file.
	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	// Apply environment variable overrides.
	applyEnvOverrides(&cfg)

	// Resolve _file references.
	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	// Validate.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. CHAT_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/chatstream/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	// Explicit path takes priority.
	if configPath != "" {
		return configPath
	}

	// Check CHAT_CONFIG env var.
	if envPath := os.Getenv("CHAT_CONFIG"); envPath != "" {
		return envPath
	}

	// Check common locations.
	candidates := []string{
		"config.yaml",
		"/etc/chatstream/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields. Env
// vars win over both defaults and file values, matching how the
// service is deployed in containers.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CHAT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("CHAT_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("CHAT_BACKEND_API_KEY"); v != "" {
		cfg.Backend.APIKey = v
	}
	if v := os.Getenv("CHAT_MODEL"); v != "" {
		cfg.Backend.DefaultModel = v
	}
	if v := os.Getenv("CHAT_TITLE_MODEL"); v != "" {
		cfg.Backend.TitleModel = v
	}
	if v := os.Getenv("CHAT_SEARCH_PROVIDER"); v != "" {
		cfg.Search.Provider = v
	}
	if v := os.Getenv("CHAT_SEARCH_API_KEY"); v != "" {
		cfg.Search.APIKey = v
	}
	if v := os.Getenv("CHAT_STREAM_DRIVER"); v != "" {
		cfg.Stream.Driver = v
	}
	if v := os.Getenv("CHAT_REDIS_URL"); v != "" {
		cfg.Stream.RedisURL = v
	}
	if v := os.Getenv("CHAT_LEDGER"); v != "" {
		cfg.Ledger.Driver = v
	}
	if v := os.Getenv("CHAT_LEDGER_DSN"); v != "" {
		cfg.Ledger.Postgres.DSN = v
	}
	if v := os.Getenv("CHAT_AUTH_TYPE"); v != "" {
		cfg.Auth.Type = v
	}
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// For each field ending in _file, if the value field is empty and the file field is set,
// the file is read, whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// backend.api_key_file -> backend.api_key
	if cfg.Backend.APIKeyFile != "" && cfg.Backend.APIKey == "" {
		val, err := readSecretFile(cfg.Backend.APIKeyFile)
		if err != nil {
			return fmt.Errorf("backend.api_key_file: %w", err)
		}
		cfg.Backend.APIKey = val
	}

	// search.api_key_file -> search.api_key
	if cfg.Search.APIKeyFile != "" && cfg.Search.APIKey == "" {
		val, err := readSecretFile(cfg.Search.APIKeyFile)
		if err != nil {
			return fmt.Errorf("search.api_key_file: %w", err)
		}
		cfg.Search.APIKey = val
	}

	// ledger.postgres.dsn_file -> ledger.postgres.dsn
	if cfg.Ledger.Postgres.DSNFile != "" && cfg.Ledger.Postgres.DSN == "" {
		val, err := readSecretFile(cfg.Ledger.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("ledger.postgres.dsn_file: %w", err)
		}
		cfg.Ledger.Postgres.DSN = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
