// Package config loads and validates Nexus server configuration.
package config

// Config is the root configuration for the Nexus MCP server.
type Config struct {
	ServerName    string             `koanf:"server_name"`
	ServerVersion string             `koanf:"server_version"`
	Host          string             `koanf:"host"`
	Port          uint16             `koanf:"port"`
	LogLevel      string             `koanf:"log_level"`
	JSONLogs      bool               `koanf:"json_logs"`
	Security      SecurityConfig     `koanf:"security"`
	Auth          AuthConfig         `koanf:"auth"`
	RateLimit     RateLimitConfig    `koanf:"rate_limit"`
	HTTPClient    HTTPClientConfig   `koanf:"http_client"`
	DatabasePath  string             `koanf:"database_path"`
	Plugins       []PluginConfig     `koanf:"plugins"`
	ExtrasEnabled bool               `koanf:"extras_enabled"`
}

// SecurityConfig bounds what the built-in tools are allowed to touch.
type SecurityConfig struct {
	AllowedReadPaths  []string `koanf:"allowed_read_paths"`
	AllowedWritePaths []string `koanf:"allowed_write_paths"`
	AllowedCommands   []string `koanf:"allowed_commands"`
	ToolTimeoutSecs   uint64   `koanf:"tool_timeout_secs"`
}

// AuthConfig controls API-key authentication on the HTTP transport.
type AuthConfig struct {
	Enabled                    bool     `koanf:"enabled"`
	APIKeys                    []string `koanf:"api_keys"`
	AllowHealthUnauthenticated bool     `koanf:"allow_health_unauthenticated"`
	APIKeyHeader               string   `koanf:"api_key_header"`
}

// RateLimitConfig controls the per-client token bucket on the HTTP transport.
type RateLimitConfig struct {
	Enabled           bool    `koanf:"enabled"`
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	BurstSize         int     `koanf:"burst_size"`
}

// HTTPClientConfig scopes the http.request built-in tool.
type HTTPClientConfig struct {
	TimeoutSecs       uint64   `koanf:"timeout_secs"`
	MaxResponseBytes  int64    `koanf:"max_response_bytes"`
	AllowedURLs       []string `koanf:"allowed_urls"`
	BlockedURLs       []string `koanf:"blocked_urls"`
	UserAgent         string   `koanf:"user_agent"`
}

// PluginConfig describes one externally-supplied tool.
type PluginConfig struct {
	Name         string            `koanf:"name"`
	Description  string            `koanf:"description"`
	Command      string            `koanf:"command"`
	ArgsTemplate []string          `koanf:"args_template"`
	WorkingDir   string            `koanf:"working_dir"`
	Env          map[string]string `koanf:"env"`
	TimeoutSecs  uint64            `koanf:"timeout_secs"`
	InputSchema  map[string]any    `koanf:"input_schema"`
	InputMode    string            `koanf:"input_mode"`  // "args", "stdin", or "env"
	OutputMode   string            `koanf:"output_mode"` // "text" or "json"
}
