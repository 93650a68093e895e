package config

import (
	"fmt"
	"slices"
	"strings"
)

// Tracing exporters
const (
	ExporterStdout   = "stdout"
	ExporterOTLPHTTP = "otlphttp"
)

var validLevels = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic"}

// Validate checks the loaded configuration and returns the first problem found
// as a *ConfigError wrapped with its section name.
func Validate(cfg *Config) error {
	if err := validateApp(cfg); err != nil {
		return fmt.Errorf("app config: %w", err)
	}

	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validateLog(&cfg.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}

	if err := validateObservability(&cfg.Observability); err != nil {
		return fmt.Errorf("observability config: %w", err)
	}

	return nil
}

// validateApp requires a name and version, and a secret key outside of the
// development and testing profiles.
func validateApp(cfg *Config) error {
	if cfg.App.Name == "" {
		return NewMissingFieldError("app.name")
	}

	if cfg.App.Version == "" {
		return NewMissingFieldError("app.version")
	}

	if cfg.Profile == ProfileProduction && cfg.App.SecretKey == "" {
		return NewMissingFieldError("app.secretkey")
	}

	return nil
}

func validateServer(cfg *ServerConfig) error {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return NewValidationError("server.port", fmt.Sprintf("invalid port: %d (must be 0-65535)", cfg.Port))
	}

	if cfg.Timeout.Read < 0 || cfg.Timeout.Write < 0 || cfg.Timeout.Idle < 0 {
		return NewValidationError("server.timeout", "timeouts must not be negative")
	}

	return nil
}

func validateLog(cfg *LogConfig) error {
	if !slices.Contains(validLevels, cfg.Level) {
		return NewInvalidFieldError("log.level", fmt.Sprintf("invalid log level: %s", cfg.Level), validLevels)
	}

	if !slices.Contains(validLevels, cfg.File.Level) {
		return NewInvalidFieldError("log.file.level", fmt.Sprintf("invalid log level: %s", cfg.File.Level), validLevels)
	}

	if cfg.File.Path == "" {
		return NewMissingFieldError("log.file.path")
	}

	modes := []string{RotationNumbered, RotationDated}
	if !slices.Contains(modes, cfg.File.Mode) {
		return NewInvalidFieldError("log.file.mode", fmt.Sprintf("invalid rotation mode: %s", cfg.File.Mode), modes)
	}

	if cfg.File.MaxBytes <= 0 {
		return NewValidationError("log.file.maxbytes", "must be positive")
	}

	if cfg.File.Backups < 0 {
		return NewValidationError("log.file.backups", "must be zero or positive")
	}

	return nil
}

func validateObservability(cfg *ObservabilityConfig) error {
	if !cfg.Enabled {
		return nil
	}

	exporters := []string{ExporterStdout, ExporterOTLPHTTP}
	if !slices.Contains(exporters, cfg.Exporter) {
		return NewInvalidFieldError("observability.exporter", fmt.Sprintf("invalid exporter: %s", cfg.Exporter), exporters)
	}

	if cfg.Exporter == ExporterOTLPHTTP {
		if cfg.Endpoint == "" {
			return NewMissingFieldError("observability.endpoint")
		}
		if !strings.HasPrefix(cfg.Endpoint, "http://") && !strings.HasPrefix(cfg.Endpoint, "https://") {
			return NewInvalidFieldError("observability.endpoint", "endpoint must be an http:// or https:// URL", nil)
		}
	}

	return nil
}
