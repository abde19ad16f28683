// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Config holds the application configuration.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Store  StoreConfig
	Feed   FeedConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StoreConfig selects and locates the genre store.
type StoreConfig struct {
	Backend  string // sqlite or badger (default: sqlite)
	DataPath string // directory holding the database files (default: ~/GenreGraph/data)
}

// FeedConfig holds latest updates feed configuration.
type FeedConfig struct {
	LatestUpdatesLimit int // default: 20
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("genregraph", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	backend := fs.String("store", "", "Store backend (sqlite, badger)")
	dataPath := fs.String("data-path", "", "Directory for database files")
	latestLimit := fs.String("latest-updates-limit", "", "Entries in the latest updates feed (default: 20)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	limit, err := getIntConfigValue(*latestLimit, "LATEST_UPDATES_LIMIT", 20)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Backend:  strings.ToLower(getConfigValue(*backend, "STORE_BACKEND", BackendSQLite)),
			DataPath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Feed: FeedConfig{
			LatestUpdatesLimit: limit,
		},
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
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

	switch c.Store.Backend {
	case BackendSQLite, BackendBadger:
	default:
		return fmt.Errorf("invalid store backend: %s (must be sqlite or badger)", c.Store.Backend)
	}

	if c.Store.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.Feed.LatestUpdatesLimit <= 0 {
		return fmt.Errorf("invalid latest updates limit: %d (must be positive)", c.Feed.LatestUpdatesLimit)
	}

	return nil
}

// StorePath returns the on-disk location of the configured backend:
// a database file for sqlite, a directory for badger.
func (c *Config) StorePath() string {
	if c.Store.Backend == BackendBadger {
		return filepath.Join(c.Store.DataPath, "badger")
	}
	return filepath.Join(c.Store.DataPath, "genregraph.db")
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

func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "GenreGraph", "data")

	expanded, err := expandPath(c.Store.DataPath, defaultPath)
	if err != nil {
		return err
	}
	c.Store.DataPath = expanded
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

// getIntConfigValue returns an int from flag, env var, or default.
// A value that is present but not a number is an error.
func getIntConfigValue(flagValue, envKey string, defaultValue int) (int, error) {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return n, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
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

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
