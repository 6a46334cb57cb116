package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// backend.base_url is required.
	if c.Backend.BaseURL == "" {
		errs = append(errs, fmt.Errorf("backend.base_url is required"))
	}

	// server.port must be positive.
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	// ledger.driver must be a known value.
	switch c.Ledger.Driver {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("ledger.driver must be \"memory\" or \"postgres\", got %q", c.Ledger.Driver))
	}

	// If ledger.driver is "postgres", DSN or DSNFile must be set.
	if c.Ledger.Driver == "postgres" {
		if c.Ledger.Postgres.DSN == "" && c.Ledger.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("ledger.postgres.dsn or ledger.postgres.dsn_file is required when ledger.driver is \"postgres\""))
		}
	}

	// stream.driver must be a known value. A redis driver without a URL
	// is allowed; the stream service degrades to disabled resumability.
	switch c.Stream.Driver {
	case "", "memory", "redis":
		// valid
	default:
		errs = append(errs, fmt.Errorf("stream.driver must be \"\", \"memory\", or \"redis\", got %q", c.Stream.Driver))
	}

	// auth.type must be a known value.
	switch c.Auth.Type {
	case "none", "jwt":
		// valid
	default:
		errs = append(errs, fmt.Errorf("auth.type must be \"none\" or \"jwt\", got %q", c.Auth.Type))
	}

	// If auth.type is "jwt", a JWKS endpoint is required.
	if c.Auth.Type == "jwt" && c.Auth.JWT.JWKSURL == "" {
		errs = append(errs, fmt.Errorf("auth.jwt.jwks_url is required when auth.type is \"jwt\""))
	}

	// search.provider must be a known value.
	switch c.Search.Provider {
	case "", "exa":
		// valid
	default:
		errs = append(errs, fmt.Errorf("search.provider must be \"\" or \"exa\", got %q", c.Search.Provider))
	}

	// If search.provider is "exa", an API key is required.
	if c.Search.Provider == "exa" {
		if c.Search.APIKey == "" && c.Search.APIKeyFile == "" {
			errs = append(errs, fmt.Errorf("search.api_key or search.api_key_file is required when search.provider is \"exa\""))
		}
	}

	return errors.Join(errs...)
}
