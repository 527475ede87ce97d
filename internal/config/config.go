// Package config loads csgen configuration.
//
// Values are layered, highest precedence first: command-line flags,
// CSGEN_ environment variables, the config file, built-in defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/roach88/csgen/internal/endpoint"
	"github.com/roach88/csgen/internal/engine"
	"github.com/roach88/csgen/internal/ir"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const (
	// DefaultDatabase is the run history database path.
	DefaultDatabase = "csgen.db"

	// DefaultFormat is the output format.
	DefaultFormat = FormatText
)

// Config holds all csgen configuration options.
type Config struct {
	Endpoint            endpoint.Config `koanf:"endpoint"`
	Database            string          `koanf:"database"`
	Sentinel            string          `koanf:"sentinel"`
	SubstituteCondition bool            `koanf:"substitute_condition"`
	Limit               int             `koanf:"limit"`
	MaxLimit            int             `koanf:"max_limit"`
	Concurrency         int             `koanf:"concurrency"`
	Template            string          `koanf:"template"`
	Format              string          `koanf:"format"`
	Verbose             bool            `koanf:"verbose"`
}

// defaults returns the flat default key map.
func defaults() map[string]any {
	ep := endpoint.DefaultConfig()
	return map[string]any{
		"endpoint.url":         ep.URL,
		"endpoint.timeout":     ep.Timeout.String(),
		"endpoint.user_agent":  ep.UserAgent,
		"endpoint.method":      ep.Method,
		"database":             DefaultDatabase,
		"sentinel":             ir.DefaultSentinel,
		"substitute_condition": false,
		"limit":                engine.DefaultLimit,
		"max_limit":            engine.DefaultMaxLimit,
		"concurrency":          engine.DefaultConcurrency,
		"template":             "",
		"format":               DefaultFormat,
		"verbose":              false,
	}
}

// Validate checks values that cannot be fixed up silently.
func (c *Config) Validate() error {
	c.Endpoint.Method = strings.ToUpper(c.Endpoint.Method)
	if err := c.Endpoint.Validate(); err != nil {
		return err
	}

	switch c.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("format must be text, json, or yaml, got %q", c.Format)
	}

	if c.Sentinel == "" {
		return fmt.Errorf("sentinel must not be empty")
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", c.Limit)
	}
	if c.MaxLimit > 0 && c.Limit > c.MaxLimit {
		return fmt.Errorf("limit %d exceeds max_limit %d", c.Limit, c.MaxLimit)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}
