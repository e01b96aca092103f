package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Data backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

var validBackends = []string{BackendMemory, BackendFile, BackendSQLite}

type Config struct {
	// HTTP Server
	Port string

	// Persistence
	DataBackend  string
	DataDir      string
	SQLiteDBPath string

	// AMQP ledger events; empty URL disables publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror
	GoogleSpreadsheetID       string
	GoogleSheetName           string
	GoogleServiceAccountJSON  string
	GoogleServiceAccountFile  string
	GoogleApplicationCredsEnv string

	// Worker
	SyncInterval time.Duration

	// Ledger behavior
	EditMode string

	// Logging
	LogLevel  string
	LogFormat string

	// Dashboard memo
	DashboardCacheTTL  time.Duration
	DashboardCacheSize int
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:  strings.ToLower(getEnv("DATA_BACKEND", BackendFile)),
		DataDir:      getEnv("DATA_DIR", "./data"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fintrack.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fintrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		GoogleSpreadsheetID:       getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:           getEnv("GOOGLE_SHEET_NAME", "Transactions"),
		GoogleServiceAccountJSON:  getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile:  getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleApplicationCredsEnv: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),

		SyncInterval: getEnvDuration("SYNC_INTERVAL", 5*time.Minute),

		EditMode: strings.ToLower(getEnv("EDIT_MODE", "inplace")),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),

		DashboardCacheTTL:  getEnvDuration("DASHBOARD_CACHE_TTL", 30*time.Second),
		DashboardCacheSize: getEnvInt("DASHBOARD_CACHE_SIZE", 64),
	}
}

// Validate checks the settings the HTTP server needs and reports every
// problem at once.
func (c *Config) Validate() error {
	return joinErrors(c.serverErrors())
}

// ValidateWorker checks the server settings plus what the mirror worker
// requires: a shared backend, a broker and a spreadsheet.
func (c *Config) ValidateWorker() error {
	errs := c.serverErrors()

	if c.DataBackend == BackendMemory {
		errs = append(errs, "worker needs a shared data backend: DATA_BACKEND must be file or sqlite")
	}
	if c.AMQPURL == "" {
		errs = append(errs, "AMQP_URL is required for the worker")
	}
	if c.GoogleSpreadsheetID == "" {
		errs = append(errs, "GOOGLE_SPREADSHEET_ID is required for the worker")
	}
	if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" && c.GoogleApplicationCredsEnv == "" {
		errs = append(errs, "either GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS must be provided")
	}
	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errs = append(errs, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}
	if c.SyncInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	return joinErrors(errs)
}

func (c *Config) serverErrors() []string {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}
	if c.DataBackend == BackendFile && c.DataDir == "" {
		errs = append(errs, "data directory cannot be empty when using file backend")
	}
	if c.DataBackend == BackendSQLite && c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.EditMode != "inplace" && c.EditMode != "recreate" {
		errs = append(errs, fmt.Sprintf("invalid edit mode '%s': must be inplace or recreate", c.EditMode))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if c.DashboardCacheTTL < 0 {
		errs = append(errs, fmt.Sprintf("invalid dashboard cache TTL %v: must not be negative", c.DashboardCacheTTL))
	}
	if c.DashboardCacheSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid dashboard cache size %d: must be at least 1", c.DashboardCacheSize))
	}

	return errs
}

func joinErrors(errs []string) error {
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
