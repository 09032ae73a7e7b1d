// Package config loads runtime configuration from an optional YAML file with
// environment-variable overrides. Every field has a safe default so the binary
// runs locally with no setup; the chat assistant stays disabled until its
// endpoint and deployment are configured.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for Expensa.
type Config struct {
	// HTTP server
	HTTPHost string `yaml:"http_host"` // EXPENSA_HTTP_HOST — default "0.0.0.0"
	HTTPPort int    `yaml:"http_port"` // EXPENSA_HTTP_PORT — default 8080

	// Storage
	DBPath string `yaml:"db_path"` // EXPENSA_DB_PATH — default "expensa.db"

	// Chat assistant (Azure-OpenAI-style chat completions).
	// Endpoint and Deployment are both required to enable the assistant;
	// leaving either empty puts the chat endpoint in disabled mode.
	ChatEndpoint   string `yaml:"chat_endpoint"`   // CHAT_ENDPOINT
	ChatDeployment string `yaml:"chat_deployment"` // CHAT_DEPLOYMENT
	ChatAPIKey     string `yaml:"chat_api_key"`    // CHAT_API_KEY
	// Optional workload-identity client ID, forwarded for request attribution
	// when no API key is configured.
	ChatClientID string `yaml:"chat_client_id"` // CHAT_CLIENT_ID
}

const (
	envConfigFile     = "EXPENSA_CONFIG"
	envHTTPHost       = "EXPENSA_HTTP_HOST"
	envHTTPPort       = "EXPENSA_HTTP_PORT"
	envDBPath         = "EXPENSA_DB_PATH"
	envChatEndpoint   = "CHAT_ENDPOINT"
	envChatDeployment = "CHAT_DEPLOYMENT"
	envChatAPIKey     = "CHAT_API_KEY"
	envChatClientID   = "CHAT_CLIENT_ID"
)

// Load reads configuration in precedence order: defaults, then the YAML file
// named by EXPENSA_CONFIG (if any), then environment variables.
func Load() (Config, error) {
	cfg := Config{
		HTTPHost: "0.0.0.0",
		HTTPPort: 8080,
		DBPath:   "expensa.db",
	}

	if path := os.Getenv(envConfigFile); path != "" {
		if err := loadFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// ChatEnabled reports whether the chat assistant has the configuration it
// needs to contact the completion service.
func (c Config) ChatEnabled() bool {
	return c.ChatEndpoint != "" && c.ChatDeployment != ""
}

func loadFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("config: parse %q: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.HTTPHost = envOr(envHTTPHost, cfg.HTTPHost)
	cfg.DBPath = envOr(envDBPath, cfg.DBPath)
	cfg.ChatEndpoint = envOr(envChatEndpoint, cfg.ChatEndpoint)
	cfg.ChatDeployment = envOr(envChatDeployment, cfg.ChatDeployment)
	cfg.ChatAPIKey = envOr(envChatAPIKey, cfg.ChatAPIKey)
	cfg.ChatClientID = envOr(envChatClientID, cfg.ChatClientID)

	if v := os.Getenv(envHTTPPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.HTTPPort = port
		}
	}
}

// envOr returns the environment value for key, or fallback if unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
