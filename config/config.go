// Package config loads and validates the service configuration from the
// environment.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment is the deployment environment named by ENV
type Environment string

const (
	EnvDevelopment Environment = "dev"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
)

// Provider names accepted by PROVIDER
const (
	ProviderHuggingFace = "huggingface"
	ProviderGemini      = "gemini"
	ProviderNone        = "none"
)

const (
	defaultHFModelURL  = "https://api-inference.huggingface.co/models/microsoft/biogpt"
	defaultGeminiModel = "gemini-2.5-flash"
)

// Config holds all application configuration
type Config struct {
	Port              string
	Address           string
	Env               Environment
	LogLevel          string
	LogDir            string
	LogRetentionWeeks int   // Number of weeks to keep log files
	MaxLogFileSize    int64 // Maximum log file size in bytes
	MaxRequestBody    int64 // Maximum request body size in bytes
	MaxHeaderSize     int64 // Maximum header size in bytes

	Provider               string
	HFAPIToken             string
	HFModelURL             string
	GeminiAPIKey           string
	GeminiModel            string
	ProviderTimeoutSeconds int
	WarmupIntervalMinutes  int // 0 disables warm-up

	CatalogPath    string
	AllowedOrigins []string
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnvWithDefault("PORT", "8000"),
		Address:           getEnvWithDefault("ADDRESS", "127.0.0.1"),
		Env:               Environment(strings.ToLower(getEnvWithDefault("ENV", string(EnvDevelopment)))),
		LogLevel:          strings.ToLower(getEnvWithDefault("LOG_LEVEL", "info")),
		LogDir:            getEnvWithDefault("LOG_DIR", "logs"),
		LogRetentionWeeks: getIntEnvWithDefault("LOG_RETENTION_WEEKS", 4),
		MaxLogFileSize:    getInt64EnvWithDefault("MAX_LOG_FILE_SIZE", 104857600), // 100MB default
		MaxRequestBody:    getInt64EnvWithDefault("MAX_REQUEST_BODY", 1048576),    // 1MB default
		MaxHeaderSize:     getInt64EnvWithDefault("MAX_HEADER_SIZE", 1048576),     // 1MB default

		Provider:               strings.ToLower(getEnvWithDefault("PROVIDER", ProviderHuggingFace)),
		HFAPIToken:             os.Getenv("HF_API_TOKEN"),
		HFModelURL:             getEnvWithDefault("HF_MODEL_URL", defaultHFModelURL),
		GeminiAPIKey:           os.Getenv("GEMINI_API_KEY"),
		GeminiModel:            getEnvWithDefault("GEMINI_MODEL", defaultGeminiModel),
		ProviderTimeoutSeconds: getIntEnvWithDefault("PROVIDER_TIMEOUT_SECONDS", 60),
		WarmupIntervalMinutes:  getIntEnvWithDefault("WARMUP_INTERVAL_MINUTES", 10),

		CatalogPath:    os.Getenv("CATALOG_PATH"),
		AllowedOrigins: splitList(getEnvWithDefault("ALLOWED_ORIGINS", "*")),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ProviderTimeout is the hard per-call limit on narrative generation
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutSeconds) * time.Second
}

// WarmupInterval returns zero when warm-up is disabled
func (c *Config) WarmupInterval() time.Duration {
	return time.Duration(c.WarmupIntervalMinutes) * time.Minute
}

// ProviderEnabled reports whether a text generation backend is configured
// with credentials. Without one every narrative uses the fallback text.
func (c *Config) ProviderEnabled() bool {
	switch c.Provider {
	case ProviderHuggingFace:
		return c.HFAPIToken != ""
	case ProviderGemini:
		return c.GeminiAPIKey != ""
	}
	return false
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}

	if err := validateEnv(cfg.Env); err != nil {
		return fmt.Errorf("invalid ENV: %w", err)
	}

	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxRequestBody, "MAX_REQUEST_BODY"); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxHeaderSize, "MAX_HEADER_SIZE"); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}

	if err := validateLogRetentionWeeks(cfg.LogRetentionWeeks); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}

	if err := validateMaxLogFileSize(cfg.MaxLogFileSize); err != nil {
		return fmt.Errorf("invalid MAX_LOG_FILE_SIZE: %w", err)
	}

	if err := validateProvider(cfg.Provider); err != nil {
		return fmt.Errorf("invalid PROVIDER: %w", err)
	}

	if cfg.Provider == ProviderHuggingFace {
		if err := validateModelURL(cfg.HFModelURL); err != nil {
			return fmt.Errorf("invalid HF_MODEL_URL: %w", err)
		}
	}

	if err := validateRange(cfg.ProviderTimeoutSeconds, 1, 300); err != nil {
		return fmt.Errorf("invalid PROVIDER_TIMEOUT_SECONDS: %w", err)
	}

	if err := validateRange(cfg.WarmupIntervalMinutes, 0, 24*60); err != nil {
		return fmt.Errorf("invalid WARMUP_INTERVAL_MINUTES: %w", err)
	}

	if len(cfg.AllowedOrigins) == 0 {
		return fmt.Errorf("invalid ALLOWED_ORIGINS: at least one origin is required")
	}

	return nil
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress validates the ADDRESS environment variable
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	if address == "localhost" || address == "0.0.0.0" || address == "::" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	if !ip.IsLoopback() && !ip.IsPrivate() {
		return fmt.Errorf("ADDRESS %s is a public IP, consider using private network ranges for security", address)
	}

	return nil
}

// validateEnv validates the ENV environment variable
func validateEnv(env Environment) error {
	switch env {
	case EnvDevelopment, EnvStaging, EnvProduction, EnvTest:
		return nil
	case "":
		return fmt.Errorf("ENV cannot be empty")
	}
	return fmt.Errorf("ENV must be one of: [dev staging prod test], got: %s", env)
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	if logLevel == "" {
		return fmt.Errorf("LOG_LEVEL cannot be empty")
	}

	switch logLevel {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("LOG_LEVEL must be one of: [debug info warn error], got: %s", logLevel)
}

// validateProvider validates the PROVIDER environment variable
func validateProvider(provider string) error {
	switch provider {
	case ProviderHuggingFace, ProviderGemini, ProviderNone:
		return nil
	}
	return fmt.Errorf("PROVIDER must be one of: [huggingface gemini none], got: %s", provider)
}

// validateModelURL requires an absolute http(s) URL
func validateModelURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("must be a valid URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("scheme must be http or https, got: %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	return nil
}

// validateSizeLimit validates size limit configuration values
func validateSizeLimit(size int64, configName string) error {
	if size <= 0 {
		return fmt.Errorf("%s must be positive, got: %d", configName, size)
	}

	if size > 100*1024*1024 { // 100MB
		return fmt.Errorf("%s is too large (max 100MB), got: %d bytes", configName, size)
	}

	return nil
}

// validateLogRetentionWeeks validates the LOG_RETENTION_WEEKS environment variable
func validateLogRetentionWeeks(weeks int) error {
	if weeks <= 0 {
		return fmt.Errorf("LOG_RETENTION_WEEKS must be positive, got: %d", weeks)
	}

	if weeks > 52 {
		return fmt.Errorf("LOG_RETENTION_WEEKS is too large (max 52 weeks), got: %d", weeks)
	}

	return nil
}

// validateMaxLogFileSize validates the MAX_LOG_FILE_SIZE environment variable
func validateMaxLogFileSize(size int64) error {
	if size <= 0 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE must be positive, got: %d", size)
	}

	// Minimum 1MB, maximum 1GB
	if size < 1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too small (min 1MB), got: %d bytes", size)
	}

	if size > 1024*1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too large (max 1GB), got: %d bytes", size)
	}

	return nil
}

func validateRange(value, lo, hi int) error {
	if value < lo || value > hi {
		return fmt.Errorf("must be between %d and %d, got: %d", lo, hi, value)
	}
	return nil
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"PORT",
		"ADDRESS",
		"ENV",
		"LOG_LEVEL",
		"LOG_DIR",
		"LOG_RETENTION_WEEKS",
		"MAX_LOG_FILE_SIZE",
		"MAX_REQUEST_BODY",
		"MAX_HEADER_SIZE",
		"PROVIDER",
		"HF_API_TOKEN",
		"HF_MODEL_URL",
		"GEMINI_API_KEY",
		"GEMINI_MODEL",
		"PROVIDER_TIMEOUT_SECONDS",
		"WARMUP_INTERVAL_MINUTES",
		"CATALOG_PATH",
		"ALLOWED_ORIGINS",
	}
}
