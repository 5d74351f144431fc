// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package remote

import (
	"strings"
	"time"
)

// Default connection settings.
const (
	DefaultBaseURL   = "http://localhost:3000"
	DefaultTimeout   = 5 * time.Minute
	DefaultUserAgent = "kbsync"
)

// Config holds connection settings for a knowledge service.
type Config struct {
	// BaseURL is the service root, without the /api suffix.
	// Example: "http://localhost:3000"
	BaseURL string

	// Token is the bearer token sent with every request.
	Token string

	// Timeout bounds a single HTTP request, including the upload body.
	// Zero disables the client-side timeout.
	Timeout time.Duration

	// UserAgent is sent as the User-Agent header.
	UserAgent string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBaseURL sets the service base URL.
func WithBaseURL(url string) ConfigOption {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithToken sets the bearer token.
func WithToken(token string) ConfigOption {
	return func(c *Config) {
		c.Token = token
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header value.
func WithUserAgent(ua string) ConfigOption {
	return func(c *Config) {
		c.UserAgent = ua
	}
}

// DefaultConfig returns a Config pointing at a local service with no token.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize trims whitespace and trailing slashes from the base URL.
func (c *Config) Normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.Token = strings.TrimSpace(c.Token)
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.Token == "" {
		return ErrMissingToken
	}
	if c.Timeout < 0 {
		c.Timeout = 0
	}
	return nil
}
