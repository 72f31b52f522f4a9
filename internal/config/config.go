// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage providers.
const (
	ProviderGCS    = "gcs"
	ProviderMinio  = "minio"
	ProviderMemory = "memory"
)

// Error status modes.
const (
	// ErrorModeLegacy reports every forwarded error as 500.
	ErrorModeLegacy = "legacy"
	// ErrorModeTyped maps error kinds to distinct status codes.
	ErrorModeTyped = "typed"
)

// DefaultMaxUploadBytes is the upload limit (10 MiB).
const DefaultMaxUploadBytes = 10 * 1024 * 1024

// Config holds all runtime configuration for the service.
type Config struct {
	Port   string
	AppEnv string

	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string

	StorageProvider   string
	StorageBucket     string
	StoragePublicHost string // host used in public URLs, e.g. "storage.googleapis.com"
	UploadFolder      string

	GCSProjectID       string
	GCSCredentialsFile string
	GCSEndpoint        string // emulator endpoint; empty for the real service

	MinioEndpoint   string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioUseSSL     bool
	MinioPublicBase string // browser-accessible base URL, defaults to <endpoint>/<bucket>

	MaxUploadBytes  int64
	ErrorStatusMode string
	ViewFile        string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from a .env file (if present) and environment
// variables. The returned bool reports whether a .env file was found.
func Load() (*Config, bool) {
	dotenv := godotenv.Load() == nil

	return &Config{
		Port:   getEnv("PORT", "3500"),
		AppEnv: getEnv("APP_ENV", "development"),

		TLSEnabled:  getEnv("TLS_ENABLED", "true") == "true",
		TLSCertFile: getEnv("TLS_CERT_FILE", "cert.pem"),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", "key.pem"),

		StorageProvider:   strings.ToLower(getEnv("STORAGE_PROVIDER", ProviderGCS)),
		StorageBucket:     getEnv("STORAGE_BUCKET", "kitkat_example_bucket"),
		StoragePublicHost: getEnv("STORAGE_PUBLIC_HOST", "storage.googleapis.com"),
		UploadFolder:      strings.Trim(getEnv("UPLOAD_FOLDER", "example-folder"), "/"),

		GCSProjectID:       getEnv("GCS_PROJECT_ID", "kitkat-finance-tracker"),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		GCSEndpoint:        getEnv("GCS_ENDPOINT", ""),

		MinioEndpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioUseSSL:     getEnv("MINIO_USE_SSL", "false") == "true",
		MinioPublicBase: getEnv("MINIO_PUBLIC_BASE", ""),

		MaxUploadBytes:  getEnvInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),
		ErrorStatusMode: strings.ToLower(getEnv("ERROR_STATUS_MODE", ErrorModeLegacy)),
		ViewFile:        getEnv("VIEW_FILE", "web/index.html"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}, dotenv
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.StorageProvider {
	case ProviderGCS, ProviderMinio, ProviderMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_PROVIDER %q", c.StorageProvider))
	}
	switch c.ErrorStatusMode {
	case ErrorModeLegacy, ErrorModeTyped:
	default:
		errs = append(errs, fmt.Errorf("unknown ERROR_STATUS_MODE %q", c.ErrorStatusMode))
	}
	if c.StorageBucket == "" {
		errs = append(errs, errors.New("STORAGE_BUCKET is required"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if c.TLSEnabled && (c.TLSCertFile == "" || c.TLSKeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE are required when TLS is enabled"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return -1
	}
	return n
}
