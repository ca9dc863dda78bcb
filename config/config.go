// Package config has the configuration file for the app
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

// Environment variable prefixes. Every setting is read as
// PHARMA_ASSISTANT_<NAME> first, falling back to the legacy
// PHARMASHIELD_<NAME> spelling still used by older deployments.
const (
	EnvPrefix       = "PHARMA_ASSISTANT"
	LegacyEnvPrefix = "PHARMASHIELD"
)

// Config holds all application configuration
type Config struct {
	Port              string
	Host              string
	Env               string
	LogLevel          string
	LogRetentionWeeks int   // Number of weeks to keep log files
	MaxLogFileSize    int64 // Maximum log file size in bytes
	MaxRequestBody    int64 // Maximum request body size in bytes
	MaxHeaderSize     int64 // Maximum header size in bytes

	CatalogPath string // Path to the medication reference JSON file

	LLMProvider       string  // "openai" or "anthropic"
	LLMBaseURL        string  // Override for OpenAI-compatible endpoints (Ollama etc.)
	LLMAPIKey         string  // Empty for keyless local endpoints
	LLMModel          string
	LLMTimeoutSeconds int
	LLMMaxTokens      int
	LLMTemperature    float64
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnvWithDefault("PORT", "5000"),
		Host:              getEnvWithDefault("HOST", "127.0.0.1"),
		Env:               getEnvWithDefault("ENV", "dev"),
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
		LogRetentionWeeks: getIntEnvWithDefault("LOG_RETENTION_WEEKS", 4),         // 4 weeks default
		MaxLogFileSize:    getInt64EnvWithDefault("MAX_LOG_FILE_SIZE", 104857600), // 100MB default
		MaxRequestBody:    getInt64EnvWithDefault("MAX_REQUEST_BODY", 1048576),    // 1MB default
		MaxHeaderSize:     getInt64EnvWithDefault("MAX_HEADER_SIZE", 1048576),     // 1MB default
		CatalogPath:       getEnvWithDefault("CATALOG_PATH", "drugs.json"),
		LLMProvider:       getEnvWithDefault("LLM_PROVIDER", "openai"),
		LLMBaseURL:        getEnvWithDefault("LLM_BASE_URL", ""),
		LLMAPIKey:         getEnvWithDefault("LLM_API_KEY", ""),
		LLMModel:          getEnvWithDefault("MODEL", "gemma"),
		LLMTimeoutSeconds: getIntEnvWithDefault("LLM_TIMEOUT_SECONDS", 60),
		LLMMaxTokens:      getIntEnvWithDefault("LLM_MAX_TOKENS", 220),
		LLMTemperature:    getFloatEnvWithDefault("LLM_TEMPERATURE", 0.1),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	// Validate PORT
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	// Validate HOST
	if err := validateHost(cfg.Host); err != nil {
		return fmt.Errorf("invalid HOST: %w", err)
	}

	// Validate ENV
	if err := validateEnv(cfg.Env); err != nil {
		return fmt.Errorf("invalid ENV: %w", err)
	}

	// Validate LOG_LEVEL
	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	// Validate MAX_REQUEST_BODY
	if err := validateSizeLimit(cfg.MaxRequestBody, "MAX_REQUEST_BODY"); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}

	// Validate MAX_HEADER_SIZE
	if err := validateSizeLimit(cfg.MaxHeaderSize, "MAX_HEADER_SIZE"); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}

	// Validate LOG_RETENTION_WEEKS
	if err := validateLogRetentionWeeks(cfg.LogRetentionWeeks); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}

	// Validate MAX_LOG_FILE_SIZE
	if err := validateMaxLogFileSize(cfg.MaxLogFileSize); err != nil {
		return fmt.Errorf("invalid MAX_LOG_FILE_SIZE: %w", err)
	}

	// Validate CATALOG_PATH
	if strings.TrimSpace(cfg.CatalogPath) == "" {
		return fmt.Errorf("invalid CATALOG_PATH: cannot be empty")
	}

	// Validate the LLM settings
	if err := validateLLMSettings(cfg); err != nil {
		return err
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

	// Check for privileged ports
	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateHost validates the HOST environment variable
func validateHost(host string) error {
	if host == "" {
		return fmt.Errorf("HOST cannot be empty")
	}

	// Check for localhost/loopback addresses first
	if host == "127.0.0.1" || host == "::1" || host == "localhost" {
		// This is acceptable for development
		return nil
	}

	// Check if it's a valid IP address
	ip := net.ParseIP(host)
	if ip == nil {
		return fmt.Errorf("HOST must be a valid IP address or 'localhost', got: %s", host)
	}

	// 0.0.0.0 binds all interfaces, which container deployments rely on
	if ip.IsUnspecified() {
		return nil
	}

	// Check for private network ranges (10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16)
	if !ip.IsLoopback() && !ip.IsPrivate() {
		return fmt.Errorf("HOST %s is a public IP, consider using private network ranges for security", host)
	}

	return nil
}

// validateEnv validates the ENV environment variable
func validateEnv(env string) error {
	if env == "" {
		return fmt.Errorf("ENV cannot be empty")
	}

	validEnvs := []string{"dev", "staging", "prod", "test"}
	env = strings.ToLower(env)

	for _, validEnv := range validEnvs {
		if env == validEnv {
			return nil
		}
	}

	return fmt.Errorf("ENV must be one of: %v, got: %s", validEnvs, env)
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	if logLevel == "" {
		return fmt.Errorf("LOG_LEVEL cannot be empty")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	logLevel = strings.ToLower(logLevel)

	for _, level := range validLevels {
		if logLevel == level {
			return nil
		}
	}

	return fmt.Errorf("LOG_LEVEL must be one of: %v, got: %s", validLevels, logLevel)
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

	if weeks > 52 { // 1 year maximum
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

// validateLLMSettings validates the generative backend configuration
func validateLLMSettings(cfg *Config) error {
	provider := strings.ToLower(cfg.LLMProvider)
	if provider != "openai" && provider != "anthropic" {
		return fmt.Errorf("invalid LLM_PROVIDER: must be one of [openai anthropic], got: %s", cfg.LLMProvider)
	}
	cfg.LLMProvider = provider

	if strings.TrimSpace(cfg.LLMModel) == "" {
		return fmt.Errorf("invalid MODEL: cannot be empty")
	}

	if cfg.LLMTimeoutSeconds < 1 || cfg.LLMTimeoutSeconds > 600 {
		return fmt.Errorf("invalid LLM_TIMEOUT_SECONDS: must be between 1 and 600, got: %d", cfg.LLMTimeoutSeconds)
	}

	if cfg.LLMMaxTokens < 1 || cfg.LLMMaxTokens > 4096 {
		return fmt.Errorf("invalid LLM_MAX_TOKENS: must be between 1 and 4096, got: %d", cfg.LLMMaxTokens)
	}

	if cfg.LLMTemperature < 0 || cfg.LLMTemperature > 2 {
		return fmt.Errorf("invalid LLM_TEMPERATURE: must be between 0 and 2, got: %g", cfg.LLMTemperature)
	}

	return nil
}

// getEnvSetting reads a setting by its unprefixed name, preferring the
// current prefix over the legacy one.
func getEnvSetting(name string) string {
	if value := os.Getenv(EnvPrefix + "_" + name); value != "" {
		return value
	}
	return os.Getenv(LegacyEnvPrefix + "_" + name)
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(name, defaultValue string) string {
	if value := getEnvSetting(name); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value
func getIntEnvWithDefault(name string, defaultValue int) int {
	if value := getEnvSetting(name); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(name string, defaultValue int64) int64 {
	if value := getEnvSetting(name); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getFloatEnvWithDefault gets an environment variable as float64 with a default value
func getFloatEnvWithDefault(name string, defaultValue float64) float64 {
	if value := getEnvSetting(name); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
