package config

import (
	"time"

	"github.com/knadh/koanf/v2"
)

// Config represents the overall application configuration structure.
// It is built once per application instance from the active profile and is
// treated as read-only afterwards.
type Config struct {
	// Profile is the canonical name of the active configuration profile.
	// It is set by Load and cannot be overridden by files or environment.
	Profile string `koanf:"-" json:"profile" yaml:"profile"`

	App           AppConfig           `koanf:"app" json:"app" yaml:"app"`
	Server        ServerConfig        `koanf:"server" json:"server" yaml:"server"`
	Log           LogConfig           `koanf:"log" json:"log" yaml:"log"`
	Templates     TemplatesConfig     `koanf:"templates" json:"templates" yaml:"templates"`
	Rate          RateConfig          `koanf:"rate" json:"rate" yaml:"rate"`
	Observability ObservabilityConfig `koanf:"observability" json:"observability" yaml:"observability"`

	// k holds the underlying Koanf instance for flexible access to custom configurations
	k *koanf.Koanf `json:"-" yaml:"-"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name      string `koanf:"name" json:"name" yaml:"name"`
	Version   string `koanf:"version" json:"version" yaml:"version"`
	Debug     bool   `koanf:"debug" json:"debug" yaml:"debug"`
	Testing   bool   `koanf:"testing" json:"testing" yaml:"testing"`
	SecretKey string `koanf:"secretkey" json:"-" yaml:"-"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host" json:"host" yaml:"host"`
	Port    int           `koanf:"port" json:"port" yaml:"port"`
	Timeout TimeoutConfig `koanf:"timeout" json:"timeout" yaml:"timeout"`
}

// TimeoutConfig holds various timeout durations for the server.
type TimeoutConfig struct {
	Read     time.Duration `koanf:"read" json:"read" yaml:"read"`
	Write    time.Duration `koanf:"write" json:"write" yaml:"write"`
	Idle     time.Duration `koanf:"idle" json:"idle" yaml:"idle"`
	Shutdown time.Duration `koanf:"shutdown" json:"shutdown" yaml:"shutdown"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum level the application logger emits.
	Level string `koanf:"level" json:"level" yaml:"level"`
	// Console adds a stdout sink next to the file sink.
	Console bool          `koanf:"console" json:"console" yaml:"console"`
	File    LogFileConfig `koanf:"file" json:"file" yaml:"file"`
}

// LogFileConfig describes the rotating file sink.
type LogFileConfig struct {
	Path  string `koanf:"path" json:"path" yaml:"path"`
	Level string `koanf:"level" json:"level" yaml:"level"`
	// MaxBytes is the segment size threshold used by the numbered rotation mode.
	MaxBytes int64 `koanf:"maxbytes" json:"maxbytes" yaml:"maxbytes"`
	// Backups is the number of retired segments kept on disk.
	Backups int `koanf:"backups" json:"backups" yaml:"backups"`
	// Mode is either RotationNumbered or RotationDated.
	Mode string `koanf:"mode" json:"mode" yaml:"mode"`

	// MaxAgeDays and Compress only apply to RotationDated.
	MaxAgeDays int  `koanf:"maxagedays" json:"maxagedays" yaml:"maxagedays"`
	Compress   bool `koanf:"compress" json:"compress" yaml:"compress"`
}

// TemplatesConfig controls page template loading.
type TemplatesConfig struct {
	// Dir loads templates from disk instead of the embedded set when non-empty.
	Dir    string `koanf:"dir" json:"dir" yaml:"dir"`
	Reload bool   `koanf:"reload" json:"reload" yaml:"reload"`
}

// RateConfig holds rate limiting settings. A limit <= 0 disables the limiter.
type RateConfig struct {
	Limit int `koanf:"limit" json:"limit" yaml:"limit"`
	Burst int `koanf:"burst" json:"burst" yaml:"burst"`
}

// ObservabilityConfig holds tracing settings.
type ObservabilityConfig struct {
	Enabled  bool   `koanf:"enabled" json:"enabled" yaml:"enabled"`
	Exporter string `koanf:"exporter" json:"exporter" yaml:"exporter"`
	Endpoint string `koanf:"endpoint" json:"endpoint" yaml:"endpoint"`
}

// IsDevelopment reports whether the development profile is active.
func (c *Config) IsDevelopment() bool {
	return c.Profile == ProfileDevelopment
}

// String returns a custom configuration value by key, e.g. "custom.banner".
// It returns an empty string when the key is not set.
func (c *Config) String(key string) string {
	if c.k == nil {
		return ""
	}
	return c.k.String(key)
}

// Exists reports whether the key was set by any configuration source.
func (c *Config) Exists(key string) bool {
	if c.k == nil {
		return false
	}
	return c.k.Exists(key)
}
