// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config defines the server configuration and its YAML loader.
package config

import (
	"fmt"
	"time"
)

// TransportType identifies the MCP transport.
type TransportType string

const (
	TransportStdio TransportType = "stdio"
	TransportHTTP  TransportType = "http"
)

// Config is the root configuration.
type Config struct {
	// Agiloft configures the backend connection and credentials.
	Agiloft AgiloftConfig `yaml:"agiloft"`

	// Server configures the MCP transport.
	Server ServerConfig `yaml:"server,omitempty"`

	// Logging configures log level, format, and destination.
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// AgiloftConfig configures the REST backend connection.
type AgiloftConfig struct {
	// BaseURL is the REST API root, e.g.
	// https://example.agiloft.com/ewws/v2.
	BaseURL string `yaml:"base_url"`

	// Username and Password authenticate against the knowledge base.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// KB is the knowledge base name.
	KB string `yaml:"kb"`

	// Language is the lang parameter sent on every request (default: en).
	Language string `yaml:"language,omitempty"`

	// Timeout bounds a single backend request (default: 30s).
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// TokenSafetyMargin refreshes the access token this long before its
	// reported expiry (default: 60s).
	TokenSafetyMargin time.Duration `yaml:"token_safety_margin,omitempty"`
}

// ServerConfig configures the MCP server transport.
type ServerConfig struct {
	// Transport protocol (stdio, http).
	Transport TransportType `yaml:"transport,omitempty"`

	// Host to bind to. Only used when Transport is "http".
	Host string `yaml:"host,omitempty"`

	// Port to listen on. Only used when Transport is "http".
	Port int `yaml:"port,omitempty"`

	// Metrics exposes Prometheus metrics on /metrics (http transport only,
	// default: true).
	Metrics *bool `yaml:"metrics,omitempty"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (default: info).
	Level string `yaml:"level,omitempty"`

	// Format is "text" or "json" (default: text).
	Format string `yaml:"format,omitempty"`

	// File redirects log output to a file instead of stderr.
	File string `yaml:"file,omitempty"`
}

// SetDefaults applies default values.
func (c *Config) SetDefaults() {
	c.Agiloft.SetDefaults()
	c.Server.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.Agiloft.Validate(); err != nil {
		return fmt.Errorf("agiloft: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// SetDefaults applies default values.
func (c *AgiloftConfig) SetDefaults() {
	if c.Language == "" {
		c.Language = "en"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.TokenSafetyMargin == 0 {
		c.TokenSafetyMargin = 60 * time.Second
	}
}

// Validate checks the backend connection configuration.
func (c *AgiloftConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.Username == "" {
		return fmt.Errorf("username is required")
	}
	if c.Password == "" {
		return fmt.Errorf("password is required")
	}
	if c.KB == "" {
		return fmt.Errorf("kb is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	return nil
}

// SetDefaults applies default values.
func (c *ServerConfig) SetDefaults() {
	if c.Transport == "" {
		c.Transport = TransportStdio
	}
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.Metrics == nil {
		metrics := true
		c.Metrics = &metrics
	}
}

// Validate checks the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Transport != TransportStdio && c.Transport != TransportHTTP {
		return fmt.Errorf("invalid transport %q (valid: stdio, http)", c.Transport)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// Address returns the HTTP server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MetricsEnabled reports whether the metrics endpoint should be served.
func (c *ServerConfig) MetricsEnabled() bool {
	return c.Metrics != nil && *c.Metrics
}

// SetDefaults applies default values.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
}

// Validate checks the logging configuration.
func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid level %q (valid: debug, info, warn, error)", c.Level)
	}
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("invalid format %q (valid: text, json)", c.Format)
	}
	return nil
}
