package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config represents the application configuration. It is constructed once at
// process start and passed into each component's constructor; no component
// reads ambient environment state directly.
type Config struct {
	Database DatabaseConfig `json:"database" envPrefix:"STORELENS_"`
	LLM      LLMConfig      `json:"llm"      envPrefix:"STORELENS_"`
	Query    QueryConfig    `json:"query"    envPrefix:"STORELENS_"`
	Server   ServerConfig   `json:"server"   envPrefix:"STORELENS_"`
	Logging  LoggingConfig  `json:"logging"  envPrefix:"STORELENS_"`
}

// DatabaseConfig represents the analytics database connection
type DatabaseConfig struct {
	URL          string `json:"url"            env:"DB_URL"`
	Host         string `json:"host"           env:"DB_HOST"           envDefault:"localhost"`
	Port         int    `json:"port"           env:"DB_PORT"           envDefault:"5432"`
	User         string `json:"user"           env:"DB_USER"           envDefault:"postgres"`
	Password     string `json:"password"       env:"DB_PASSWORD"`
	Name         string `json:"name"           env:"DB_NAME"           envDefault:"ecommerce_db"`
	SSLMode      string `json:"ssl_mode"       env:"DB_SSLMODE"        envDefault:"disable"`
	MaxConns     int    `json:"max_conns"      env:"DB_MAX_CONNS"      envDefault:"10"`
	QueryTimeout string `json:"query_timeout"  env:"DB_QUERY_TIMEOUT"  envDefault:"30s"`
}

// LLMConfig represents the generative text backend configuration
type LLMConfig struct {
	Provider         string `json:"provider"           env:"LLM_PROVIDER"           envDefault:"groq"` // groq, openai, ollama
	Model            string `json:"model"              env:"LLM_MODEL"              envDefault:"llama-3.1-8b-instant"`
	APIKey           string `json:"api_key"            env:"LLM_API_KEY"`
	BaseURL          string `json:"base_url"           env:"LLM_BASE_URL"`
	Timeout          string `json:"timeout"            env:"LLM_TIMEOUT"            envDefault:"60s"`
	SQLMaxTokens     int    `json:"sql_max_tokens"     env:"LLM_SQL_MAX_TOKENS"     envDefault:"1024"`
	AnswerMaxTokens  int    `json:"answer_max_tokens"  env:"LLM_ANSWER_MAX_TOKENS"  envDefault:"512"`
	UseLocalFallback bool   `json:"use_local_fallback" env:"USE_LOCAL_FALLBACK"     envDefault:"false"`
}

// QueryConfig governs row bounding for executed statements
type QueryConfig struct {
	MaxRows int `json:"max_rows" env:"MAX_QUERY_ROWS" envDefault:"1000"`
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	Addr string `json:"addr" env:"SERVER_ADDR" envDefault:":8000"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level"  env:"LOG_LEVEL"  envDefault:"info"`   // debug, info, warn, error
	Format string `json:"format" env:"LOG_FORMAT" envDefault:"text"`   // text, json
	Output string `json:"output" env:"LOG_OUTPUT" envDefault:"stdout"` // stdout, stderr, file
	File   string `json:"file"   env:"LOG_FILE"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	return LoadConfigWithOverrides(nil)
}

// LoadConfigWithOverrides loads configuration with optional command-line flag overrides
func LoadConfigWithOverrides(flagOverrides map[string]interface{}) (*Config, error) {
	config := &Config{}

	configPath := getConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		if err := loadConfigFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Environment variable overrides also set defaults
	if err := env.ParseWithOptions(config, env.Options{
		Prefix: "STORELENS_",
	}); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if flagOverrides != nil {
		applyFlagOverrides(config, flagOverrides)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// DSN returns the connection string for the analytics database
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User), url.QueryEscape(d.Password),
		d.Host, d.Port, d.Name, d.SSLMode)
}

// loadConfigFromFile loads configuration from a JSON file
func loadConfigFromFile(config *Config, configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fileConfig Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	mergeConfigs(config, &fileConfig)

	return nil
}

// applyFlagOverrides applies command-line flag overrides to configuration
func applyFlagOverrides(config *Config, overrides map[string]interface{}) {
	for key, value := range overrides {
		switch key {
		case "db-url":
			if str, ok := value.(string); ok && str != "" {
				config.Database.URL = str
			}
		case "addr":
			if str, ok := value.(string); ok && str != "" {
				config.Server.Addr = str
			}
		case "max-rows":
			if n, ok := value.(int); ok && n > 0 {
				config.Query.MaxRows = n
			}
		case "log-level":
			if str, ok := value.(string); ok && str != "" {
				config.Logging.Level = str
			}
		case "local-fallback":
			if b, ok := value.(bool); ok {
				config.LLM.UseLocalFallback = b
			}
		}
	}
}

// mergeConfigs merges source configuration into target configuration
func mergeConfigs(target, source *Config) {
	var mergeValues func(t, s reflect.Value)
	mergeValues = func(t, s reflect.Value) {
		if t.Kind() != s.Kind() {
			return
		}

		if t.Kind() == reflect.Struct {
			for i := 0; i < s.NumField(); i++ {
				mergeValues(t.Field(i), s.Field(i))
			}
		} else if s.Kind() == reflect.Bool {
			t.Set(s)
		} else if !s.IsZero() {
			t.Set(s)
		}
	}

	mergeValues(reflect.ValueOf(target).Elem(), reflect.ValueOf(source).Elem())
}

// validateConfig validates the configuration for common errors
func validateConfig(config *Config) error {
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf(
			"invalid log level: %s (must be debug, info, warn, or error)",
			config.Logging.Level,
		)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[strings.ToLower(config.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", config.Logging.Format)
	}

	validLogOutputs := map[string]bool{
		"stdout": true, "stderr": true, "file": true,
	}
	if !validLogOutputs[strings.ToLower(config.Logging.Output)] {
		return fmt.Errorf(
			"invalid log output: %s (must be stdout, stderr, or file)",
			config.Logging.Output,
		)
	}

	validProviders := map[string]bool{
		"groq": true, "openai": true, "ollama": true,
	}
	if !validProviders[strings.ToLower(config.LLM.Provider)] {
		return fmt.Errorf(
			"invalid llm provider: %s (must be groq, openai, or ollama)",
			config.LLM.Provider,
		)
	}

	if _, err := time.ParseDuration(config.Database.QueryTimeout); err != nil {
		return fmt.Errorf("invalid database query timeout: %s", config.Database.QueryTimeout)
	}

	if _, err := time.ParseDuration(config.LLM.Timeout); err != nil {
		return fmt.Errorf("invalid llm timeout: %s", config.LLM.Timeout)
	}

	if config.Query.MaxRows <= 0 {
		return fmt.Errorf("query max rows must be positive: %d", config.Query.MaxRows)
	}

	if config.Database.MaxConns <= 0 {
		return fmt.Errorf("database max conns must be positive: %d", config.Database.MaxConns)
	}

	return nil
}

// getConfigPath returns the path to the configuration file
func getConfigPath() string {
	if configPath := os.Getenv("STORELENS_CONFIG"); configPath != "" {
		return expandPath(configPath)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}

	return filepath.Join(homeDir, ".config", "storelens", "config.json")
}

// expandPath expands ~ to home directory in file paths
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}

	return path
}
