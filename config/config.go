package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultGeminiAPIURL is the generateContent endpoint the proxy forwards to.
const DefaultGeminiAPIURL = "https://generativelanguage.googleapis.com/v1/models/gemini-2.5-flash:generateContent"

// Config holds all configuration for the application
type Config struct {
	Environment Environment `validate:"required,oneof=development test ci production"`

	// Server configuration
	ServerHost string
	ServerPort string `validate:"required,numeric"`

	// Upstream provider configuration. GeminiAPIKey may be empty: a missing
	// key is reported per request, not at startup.
	GeminiAPIKey    string
	GeminiAPIURL    string        `validate:"required,url"`
	UpstreamTimeout time.Duration `validate:"gte=0"`

	// Logging configuration
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json console"`

	// CORS configuration
	AllowedOrigins []string `validate:"min=1,dive,required"`

	// Rate limiting configuration. RateLimitRequests == 0 disables limiting.
	RedisURL          string
	RateLimitRequests int           `validate:"gte=0"`
	RateLimitWindow   time.Duration `validate:"gt=0"`
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// HasAPIKey reports whether the upstream credential is configured.
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != ""
}

// IsProduction returns true if the configured environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// RateLimitEnabled reports whether the proxy route is rate limited.
func (c *Config) RateLimitEnabled() bool {
	return c.RateLimitRequests > 0
}

// LoadConfig creates a new Config instance from the environment, an optional
// .env file and the *_FILE secret convention.
func LoadConfig() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	env := GetEnvironment()
	cfg := &Config{
		Environment:       env,
		ServerHost:        v.GetString("server_host"),
		ServerPort:        v.GetString("server_port"),
		GeminiAPIURL:      v.GetString("gemini_api_url"),
		UpstreamTimeout:   v.GetDuration("upstream_timeout"),
		LogLevel:          strings.ToLower(v.GetString("log_level")),
		LogFormat:         strings.ToLower(v.GetString("log_format")),
		AllowedOrigins:    splitList(v.GetString("cors_allowed_origins")),
		RedisURL:          v.GetString("redis_url"),
		RateLimitRequests: v.GetInt("rate_limit_requests"),
		RateLimitWindow:   v.GetDuration("rate_limit_window"),
	}

	// PORT is what most hosting platforms inject
	if port := v.GetString("port"); port != "" && os.Getenv("SERVER_PORT") == "" {
		cfg.ServerPort = port
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
		if env == Production {
			cfg.LogFormat = "json"
		}
	}

	apiKey, err := resolveSecret(v, "gemini_api_key")
	if err != nil {
		return nil, fmt.Errorf("failed to load Gemini API key: %w", err)
	}
	cfg.GeminiAPIKey = apiKey

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_port", "8080")
	v.SetDefault("gemini_api_url", DefaultGeminiAPIURL)
	v.SetDefault("upstream_timeout", "0s")
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("rate_limit_requests", 0)
	v.SetDefault("rate_limit_window", "1m")
}

// loadEnvFile loads a .env file if one exists. Variables already present in
// the environment are never overridden.
func loadEnvFile() {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// resolveSecret returns the value of key, or the trimmed contents of the file
// named by key_FILE when the plain value is empty.
func resolveSecret(v *viper.Viper, key string) (string, error) {
	if value := strings.TrimSpace(v.GetString(key)); value != "" {
		return value, nil
	}

	path := v.GetString(key + "_file")
	if path == "" {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
