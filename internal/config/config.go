package config

import (
	"fmt"

	"github.com/nexuslabs/nexus/internal/logging"
)

// Version is the server version reported during MCP initialization and
// used as the default in the http_client user-agent.
const Version = "0.1.0"

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		ServerName:    "nexus",
		ServerVersion: Version,
		Host:          "127.0.0.1",
		Port:          9000,
		LogLevel:      "info",
		JSONLogs:      false,
		Security:      defaultSecurityConfig(),
		Auth:          defaultAuthConfig(),
		RateLimit:     defaultRateLimitConfig(),
		HTTPClient:    defaultHTTPClientConfig(),
		DatabasePath:  "",
		Plugins:       nil,
		ExtrasEnabled: true,
	}
}

func defaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		AllowedReadPaths:  []string{"."},
		AllowedWritePaths: nil,
		AllowedCommands: []string{
			"echo", "date", "whoami", "pwd", "ls", "cat", "head", "tail", "wc",
		},
		ToolTimeoutSecs: 30,
	}
}

func defaultAuthConfig() AuthConfig {
	return AuthConfig{
		Enabled:                    false,
		APIKeys:                    nil,
		AllowHealthUnauthenticated: true,
		APIKeyHeader:               "X-API-Key",
	}
}

func defaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:           false,
		RequestsPerSecond: 100,
		BurstSize:         50,
	}
}

func defaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		TimeoutSecs:      30,
		MaxResponseBytes: 10 * 1024 * 1024,
		AllowedURLs:      nil,
		BlockedURLs: []string{
			`^https?://localhost`,
			`^https?://127\.`,
			`^https?://10\.`,
			`^https?://172\.(1[6-9]|2[0-9]|3[01])\.`,
			`^https?://192\.168\.`,
		},
		UserAgent: "Nexus/" + Version,
	}
}

// Validate checks invariants that the loader cannot express via defaults
// alone (conflicting or out-of-range values supplied by a file or the
// environment).
func (c *Config) Validate() error {
	if c.Port == 0 {
		return fmt.Errorf("port must be non-zero")
	}
	if !logging.IsValidLevel(c.LogLevel) {
		return fmt.Errorf("log_level %q is not one of %v", c.LogLevel, logging.ValidLevelNames)
	}
	if c.Security.ToolTimeoutSecs == 0 || c.Security.ToolTimeoutSecs > 300 {
		return fmt.Errorf("security.tool_timeout_secs must be in (0, 300], got %d", c.Security.ToolTimeoutSecs)
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate_limit.requests_per_second must be > 0 when enabled")
	}
	if c.Auth.Enabled && len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("auth.api_keys must be non-empty when auth.enabled is true")
	}
	for i, p := range c.Plugins {
		if p.Name == "" {
			return fmt.Errorf("plugins[%d]: name is required", i)
		}
		if p.Command == "" {
			return fmt.Errorf("plugins[%d] %q: command is required", i, p.Name)
		}
	}
	return nil
}
