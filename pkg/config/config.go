// Package config provides unified configuration for the chat service.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (CHAT_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the chat service.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Backend       BackendConfig       `yaml:"backend"`
	Search        SearchConfig        `yaml:"search"`
	Stream        StreamConfig        `yaml:"stream"`
	Ledger        LedgerConfig        `yaml:"ledger"`
	Auth          AuthConfig          `yaml:"auth"`
	Entitlements  EntitlementsConfig  `yaml:"entitlements"`
	Chat          ChatConfig          `yaml:"chat"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8080
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 30s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 120s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 30s
	MaxBodySize     int64         `yaml:"max_body_size"`    // default: 1 MiB
}

// BackendConfig holds generation backend settings.
type BackendConfig struct {
	BaseURL         string        `yaml:"base_url"`         // required
	APIKey          string        `yaml:"api_key"`          // optional
	APIKeyFile      string        `yaml:"api_key_file"`     // _file variant for api_key
	DefaultModel    string        `yaml:"default_model"`    // optional
	TitleModel      string        `yaml:"title_model"`      // optional, falls back to the request model
	ReasoningModels []string      `yaml:"reasoning_models"` // models whose runs carry no tools
	Timeout         time.Duration `yaml:"timeout"`          // per-call timeout, default: 120s
}

// SearchConfig holds web search provider settings.
type SearchConfig struct {
	Provider     string `yaml:"provider"`      // "" (disabled) or "exa", default: ""
	BaseURL      string `yaml:"base_url"`      // default: https://api.exa.ai
	APIKey       string `yaml:"api_key"`       // required for provider=exa
	APIKeyFile   string `yaml:"api_key_file"`  // _file variant for api_key
	MaxResults   int    `yaml:"max_results"`   // default: 2
	MaxTextChars int    `yaml:"max_text_chars"` // default: 500
}

// StreamConfig holds resumable stream registry settings.
type StreamConfig struct {
	Driver   string        `yaml:"driver"`    // "" (disabled), "memory", or "redis"
	RedisURL string        `yaml:"redis_url"` // for driver=redis
	TTL      time.Duration `yaml:"ttl"`       // stream buffer lifetime, default: 24h
}

// LedgerConfig holds chat persistence settings.
type LedgerConfig struct {
	Driver   string         `yaml:"driver"` // "memory" or "postgres", default: "memory"
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 25
	MinConns       int32  `yaml:"min_conns"`        // default: 5
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: false
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	Type string    `yaml:"type"` // "none" or "jwt", default: "none"
	JWT  JWTConfig `yaml:"jwt"`
}

// JWTConfig holds JWT/OIDC validation settings for type=jwt.
type JWTConfig struct {
	Issuer     string `yaml:"issuer"`
	Audience   string `yaml:"audience"`
	JWKSURL    string `yaml:"jwks_url"`
	UserClaim  string `yaml:"user_claim"` // default: "sub"
	TierClaim  string `yaml:"tier_claim"` // default: "tier"
}

// EntitlementsConfig holds per-tier daily message allowances.
type EntitlementsConfig struct {
	GuestMessagesPerDay   int `yaml:"guest_messages_per_day"`   // default: 20
	RegularMessagesPerDay int `yaml:"regular_messages_per_day"` // default: 100
}

// ChatConfig holds orchestration behavior settings.
type ChatConfig struct {
	SystemPrompt      string        `yaml:"system_prompt"`
	MaxSteps          int           `yaml:"max_steps"`          // tool-call loop bound, default: 5
	GenerationTimeout time.Duration `yaml:"generation_timeout"` // default: 60s
	ResumeWindow      time.Duration `yaml:"resume_window"`      // default: 15s
	QuotaWindow       time.Duration `yaml:"quota_window"`       // default: 24h
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodySize:     1 << 20,
		},
		Backend: BackendConfig{
			Timeout: 120 * time.Second,
		},
		Search: SearchConfig{
			BaseURL:      "https://api.exa.ai",
			MaxResults:   2,
			MaxTextChars: 500,
		},
		Stream: StreamConfig{
			TTL: 24 * time.Hour,
		},
		Ledger: LedgerConfig{
			Driver: "memory",
			Postgres: PostgresConfig{
				MaxConns: 25,
				MinConns: 5,
			},
		},
		Auth: AuthConfig{
			Type: "none",
		},
		Entitlements: EntitlementsConfig{
			GuestMessagesPerDay:   20,
			RegularMessagesPerDay: 100,
		},
		Chat: ChatConfig{
			SystemPrompt:      "You are a friendly assistant! Keep your responses concise and helpful.",
			MaxSteps:          5,
			GenerationTimeout: 60 * time.Second,
			ResumeWindow:      15 * time.Second,
			QuotaWindow:       24 * time.Hour,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
