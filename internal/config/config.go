// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Metadata  MetadataConfig
	Catalog   CatalogConfig
	Server    ServerConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// MetadataConfig holds the location of on-disk state (badger db, session key).
type MetadataConfig struct {
	BasePath string
}

// CatalogConfig describes where the movie dataset comes from and how it is presented.
type CatalogConfig struct {
	Source        string // file path or http(s) URL (default: data.json)
	Locale        string // BCP 47 tag used for title collation (default: en)
	ExcerptLength int    // synopsis excerpt length in runes on cards (default: 160)
	Watch         bool   // reload when a local source file changes (default: false)
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port           string        // Server port (default: 8080)
	ReadTimeout    time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout   time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout    time.Duration // HTTP idle timeout (default: 60s)
	AllowedOrigins []string      // CORS origins for /api (default: *)
}

// SessionConfig holds browsing-session configuration.
type SessionConfig struct {
	TTL            time.Duration // lifetime of the session token and its handoff (default: 24h)
	ConsumeHandoff bool          // deliver the selection to the details view only once
}

// RateLimitConfig throttles selection submissions per client.
type RateLimitConfig struct {
	SelectPerMinute int
	SelectBurst     int
}

// IsRemote reports whether the catalog source is fetched over HTTP.
func (c CatalogConfig) IsRemote() bool {
	return strings.HasPrefix(c.Source, "http://") || strings.HasPrefix(c.Source, "https://")
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	metadataPath := flag.String("metadata-path", "", "Base path for metadata storage")

	catalogSource := flag.String("catalog-source", "", "Dataset file path or URL (default: data.json)")
	catalogLocale := flag.String("catalog-locale", "", "Locale for alphabetical sorting (default: en)")
	excerptLength := flag.String("excerpt-length", "", "Synopsis excerpt length on cards (default: 160)")
	catalogWatch := flag.String("catalog-watch", "", "Reload the dataset when the file changes (default: false)")

	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := flag.String("cors-origins", "", "Comma separated CORS origins (default: *)")

	sessionTTL := flag.String("session-ttl", "", "Browsing session lifetime (default: 24h)")
	consumeHandoff := flag.String("consume-handoff", "", "Show a selection on the details page only once (default: false)")

	selectRate := flag.String("select-rate", "", "Selections allowed per minute per client (default: 60)")
	selectBurst := flag.String("select-burst", "", "Selection burst per client (default: 20)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Metadata: MetadataConfig{
			BasePath: getConfigValue(*metadataPath, "METADATA_PATH", ""),
		},
		Catalog: CatalogConfig{
			Source:        getConfigValue(*catalogSource, "CATALOG_SOURCE", "data.json"),
			Locale:        getConfigValue(*catalogLocale, "CATALOG_LOCALE", "en"),
			ExcerptLength: getIntConfigValue(*excerptLength, "CATALOG_EXCERPT_LENGTH", 160),
			Watch:         getBoolConfigValue(*catalogWatch, "CATALOG_WATCH", false),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ALLOWED_ORIGINS", "*")),
		},
		Session: SessionConfig{
			ConsumeHandoff: getBoolConfigValue(*consumeHandoff, "SESSION_CONSUME_HANDOFF", false),
		},
		RateLimit: RateLimitConfig{
			SelectPerMinute: getIntConfigValue(*selectRate, "SELECT_RATE_PER_MINUTE", 60),
			SelectBurst:     getIntConfigValue(*selectBurst, "SELECT_RATE_BURST", 20),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid read timeout: %w", err)
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid write timeout: %w", err)
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, fmt.Errorf("invalid idle timeout: %w", err)
	}
	if cfg.Session.TTL, err = getDurationConfigValue(*sessionTTL, "SESSION_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid session ttl: %w", err)
	}

	if err := cfg.expandMetadataPath(); err != nil {
		return nil, fmt.Errorf("invalid metadata path: %w", err)
	}

	if err := cfg.expandCatalogSource(); err != nil {
		return nil, fmt.Errorf("invalid catalog source: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Metadata.BasePath == "" {
		return errors.New("metadata base path cannot be empty after expansion")
	}

	if c.Catalog.Source == "" {
		return errors.New("CATALOG_SOURCE cannot be empty")
	}
	if c.Catalog.ExcerptLength <= 0 {
		return fmt.Errorf("invalid excerpt length: %d (must be positive)", c.Catalog.ExcerptLength)
	}
	if c.Catalog.Watch && c.Catalog.IsRemote() {
		return errors.New("CATALOG_WATCH requires a local catalog source")
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("invalid session ttl: %s (must be positive)", c.Session.TTL)
	}

	if c.RateLimit.SelectPerMinute <= 0 || c.RateLimit.SelectBurst <= 0 {
		return errors.New("selection rate and burst must be positive")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandMetadataPath expands ~ and makes the path absolute.
func (c *Config) expandMetadataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Marquee", "metadata")

	expanded, err := expandPath(c.Metadata.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Metadata.BasePath = expanded
	return nil
}

// expandCatalogSource resolves local dataset paths. URLs are left untouched.
func (c *Config) expandCatalogSource() error {
	if c.Catalog.Source == "" || c.Catalog.IsRemote() {
		return nil
	}
	expanded, err := expandPath(strings.TrimPrefix(c.Catalog.Source, "file://"), "")
	if err != nil {
		return err
	}
	c.Catalog.Source = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getDurationConfigValue parses a duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", envKey, strValue, err)
	}
	return d, nil
}

// splitList splits a comma separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
// Variables already present in the environment win.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if _, exists := os.LookupEnv(key); !exists {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
