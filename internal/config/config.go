// Package config defines the service configuration. Configuration is loaded
// once at process startup and is immutable thereafter; values come from the
// OS environment, with a .env file as a lower-priority fallback for local
// development.
package config

import (
	"time"
)

// Config is the top-level configuration struct. It is populated once during
// startup and never modified. Sub-components receive only the subsets they
// require.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"polyshade"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Server  ServerConfig
	Archive ArchiveConfig
	State   StateConfig
	Refresh RefreshConfig
}

// ServerConfig holds HTTP server tuning.
type ServerConfig struct {
	Port               string        `envconfig:"PORT" default:"8080"`
	RequestTimeout     time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`
	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	CorsAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// ArchiveConfig holds the weather archive endpoint and the resilience tuning
// for requests against it.
type ArchiveConfig struct {
	BaseURL      string        `envconfig:"ARCHIVE_BASE_URL" default:"https://archive-api.open-meteo.com/v1/archive" validate:"required,url"`
	HTTPTimeout  time.Duration `envconfig:"ARCHIVE_HTTP_TIMEOUT" default:"15s"`
	MaxRetries   int           `envconfig:"ARCHIVE_MAX_RETRIES" default:"2" validate:"min=0,max=10"`
	RetryMinWait time.Duration `envconfig:"ARCHIVE_RETRY_MIN_WAIT" default:"300ms"`
	RetryMaxWait time.Duration `envconfig:"ARCHIVE_RETRY_MAX_WAIT" default:"5s"`
}

// StateConfig holds state persistence settings. An empty SnapshotPath
// disables persistence entirely; state then lives only in memory.
type StateConfig struct {
	SnapshotPath string `envconfig:"STATE_SNAPSHOT_PATH" default:"data/polyshade-state.json.zst"`
}

// RefreshConfig holds the background refresh schedule. The default re-fetches
// every polygon's series at the top of each hour, when the archive publishes
// new rows.
type RefreshConfig struct {
	Enabled  bool   `envconfig:"REFRESH_ENABLED" default:"true"`
	CronSpec string `envconfig:"REFRESH_CRON" default:"0 * * * *"`
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
