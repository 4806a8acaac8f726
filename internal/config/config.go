package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Environment   string
	DatabaseURL   string
	TablePrefix   string
	AdminPassword string // Password of the account seeded on first start
	// Logging
	LogLevel    slog.Level
	LogDir      string // Empty = stdout only
	LogMaxFiles int
	// Preview pipeline
	PreviewDir     string
	PreviewWorkers int
	PreviewQueue   int
	PlaceholderDir string
	// File storage
	FileStore  string // "local" or "s3"
	S3Bucket   string
	S3Region   string
	S3Endpoint string // Non-empty = S3-compatible endpoint (e.g. MinIO), path-style addressing
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Environment:    env,
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/archive"),
		TablePrefix:    getTablePrefix(env),
		AdminPassword:  getEnv("ADMIN_PASSWORD", "admin"),
		LogLevel:       parseLevel(getEnv("LOG_LEVEL", getDefaultLogLevel(env))),
		LogDir:         getEnv("LOG_DIR", ""),
		LogMaxFiles:    getEnvInt("LOG_MAX_FILES", 10),
		PreviewDir:     getEnv("PREVIEW_DIR", "previews"),
		PreviewWorkers: getEnvInt("PREVIEW_WORKERS", 4),
		PreviewQueue:   getEnvInt("PREVIEW_QUEUE", 64),
		PlaceholderDir: getEnv("PLACEHOLDER_DIR", "assets"),
		FileStore:      getEnv("FILE_STORE", "local"),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
	}
}

// Validate checks settings that have no usable default
func (c *Config) Validate() error {
	switch c.FileStore {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when FILE_STORE=s3")
		}
	default:
		return fmt.Errorf("unknown FILE_STORE %q (want local or s3)", c.FileStore)
	}
	if c.PreviewWorkers < 1 {
		return fmt.Errorf("PREVIEW_WORKERS must be at least 1")
	}
	if c.PreviewQueue < 1 {
		return fmt.Errorf("PREVIEW_QUEUE must be at least 1")
	}
	return nil
}

// getDefaultLogLevel returns the default log level based on environment
func getDefaultLogLevel(env string) string {
	if env == "dev" {
		return "debug"
	}
	return "info"
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s=%q is not a number, using %d\n", key, value, defaultValue)
		return defaultValue
	}
	return n
}
