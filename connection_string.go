package nacho

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/RichardKnop/nacho/internal/nacho"
	"github.com/RichardKnop/nacho/internal/pkg/logging"
)

// ConnectionConfig holds parsed connection string parameters
type ConnectionConfig struct {
	FilePath string // Database file path
	LogLevel string // Log level: debug, info, warn, error (default: warn)
	MaxPages int    // Page cache capacity, the table holds 7 rows per page (default: 100)
}

// DefaultConnectionConfig returns default configuration
func DefaultConnectionConfig(filePath string) *ConnectionConfig {
	return &ConnectionConfig{
		FilePath: filePath,
		LogLevel: "warn",
		MaxPages: nacho.DefaultMaxPages,
	}
}

// ParseConnectionString parses a connection string with optional query parameters.
//
// Format: /path/to/database.db?param1=value1&param2=value2
//
// Supported parameters:
//   - log_level=debug|info|warn|error : Set logging level (default: warn)
//   - max_pages=N : Page cache capacity (default: 100, at most nacho.MaxPagesLimit)
//
// Examples:
//   - "./my.db"                            : Default settings
//   - "./my.db?log_level=debug"            : Enable debug logging
//   - "./my.db?log_level=info&max_pages=10" : Both settings
func ParseConnectionString(connStr string) (*ConnectionConfig, error) {
	// Split on first '?' to separate path from query params
	parts := strings.SplitN(connStr, "?", 2)

	if parts[0] == "" {
		return nil, fmt.Errorf("connection string is missing the database file path")
	}

	config := DefaultConnectionConfig(parts[0])

	// No query parameters
	if len(parts) == 1 {
		return config, nil
	}

	queryParams, err := url.ParseQuery(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid connection string query parameters: %w", err)
	}

	if logLevel := queryParams.Get("log_level"); logLevel != "" {
		logLevel = strings.ToLower(logLevel)
		switch logLevel {
		case "debug", "info", "warn", "error":
			config.LogLevel = logLevel
		default:
			return nil, fmt.Errorf("invalid log_level parameter: must be 'debug', 'info', 'warn', or 'error', got %q", logLevel)
		}
	}

	if maxPagesStr := queryParams.Get("max_pages"); maxPagesStr != "" {
		maxPages, err := strconv.Atoi(maxPagesStr)
		if err != nil {
			return nil, fmt.Errorf("invalid max_pages parameter: must be a positive integer, got %q", maxPagesStr)
		}
		if maxPages <= 0 {
			return nil, fmt.Errorf("invalid max_pages parameter: must be positive, got %d", maxPages)
		}
		if maxPages > nacho.MaxPagesLimit {
			return nil, fmt.Errorf("invalid max_pages parameter: must not exceed %d, got %d", nacho.MaxPagesLimit, maxPages)
		}
		config.MaxPages = maxPages
	}

	return config, nil
}

// GetZapLevel converts log level string to zap.Level
func (c *ConnectionConfig) GetZapLevel() zap.AtomicLevel {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return zap.NewAtomicLevelAt(level)
}
