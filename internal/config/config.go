// Package config builds the server configuration from the environment.
//
// The configuration is constructed once at process start and passed by value
// into the components that need it; nothing below main reads the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultSite is used when DD_SITE is not set.
const DefaultSite = "datadoghq.com"

// Environment variable names.
const (
	EnvAPIKey      = "DD_API_KEY"
	EnvAppKey      = "DD_APP_KEY"
	EnvSite        = "DD_SITE"
	EnvLogLevel    = "DD_BILLING_LOG_LEVEL"
	EnvMetricsAddr = "DD_BILLING_METRICS_ADDR"
	EnvHTTPTimeout = "DD_BILLING_HTTP_TIMEOUT"
)

// Sites lists the Datadog sites known to exist.
var Sites = []string{
	"datadoghq.com",     // US1
	"us3.datadoghq.com", // US3
	"us5.datadoghq.com", // US5
	"datadoghq.eu",      // EU
	"ap1.datadoghq.com", // AP1
	"ddog-gov.com",      // US1-FED
}

// Config holds the application configuration.
type Config struct {
	APIKey      string        `mapstructure:"api_key"`
	AppKey      string        `mapstructure:"app_key"`
	Site        string        `mapstructure:"site"`
	LogLevel    string        `mapstructure:"log_level"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

// MissingCredentialError is returned when a required credential is absent.
type MissingCredentialError struct {
	Name string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s environment variable is required", e.Name)
}

// Kind reports the error classification used by the tool dispatcher.
func (e *MissingCredentialError) Kind() string {
	return "MissingCredential"
}

// NewViper returns a viper instance with defaults and environment bindings.
// Callers may bind command-line flags on top of it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("site", DefaultSite)
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("http_timeout", time.Duration(0))

	// BindEnv only errors when called without a key.
	_ = v.BindEnv("api_key", EnvAPIKey)
	_ = v.BindEnv("app_key", EnvAppKey)
	_ = v.BindEnv("site", EnvSite)
	_ = v.BindEnv("log_level", EnvLogLevel)
	_ = v.BindEnv("metrics_addr", EnvMetricsAddr)
	_ = v.BindEnv("http_timeout", EnvHTTPTimeout)

	return v
}

// Load reads an optional .env file and decodes the configuration from v.
//
// When envFile is empty, a .env file in the working directory is used if present.
// Variables already set in the process environment take precedence over the file.
// Missing credentials are not an error here; they are reported when a client is opened.
func Load(v *viper.Viper, envFile string) (Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if cfg.Site == "" {
		cfg.Site = DefaultSite
	}
	return cfg, nil
}

// CheckCredentials reports the first missing credential, if any.
func (c Config) CheckCredentials() error {
	if c.APIKey == "" {
		return &MissingCredentialError{Name: EnvAPIKey}
	}
	if c.AppKey == "" {
		return &MissingCredentialError{Name: EnvAppKey}
	}
	return nil
}

// KnownSite reports whether the configured site is one of Sites.
func (c Config) KnownSite() bool {
	return slices.Contains(Sites, c.Site)
}

func loadEnvFile(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
		return nil
	}

	if _, err := os.Stat(".env"); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat .env: %w", err)
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}
