// Package config loads the application configuration from the active profile,
// optional YAML overrides and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Rotation modes for the log file sink
const (
	RotationNumbered = "numbered"
	RotationDated    = "dated"
)

// overridable holds the leaf keys environment variables may set: exactly
// the keys that carry a default.
var overridable = func() map[string]struct{} {
	keys := make(map[string]struct{})
	for key := range defaultValues() {
		keys[key] = struct{}{}
	}
	return keys
}()

// Load builds the configuration for the profile named by CONFIG_TYPE, reading
// override files from the working directory. A .env file in the working
// directory is applied to the process environment first; variables that are
// already set win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadProfile(os.Getenv(ProfileEnvVar), ".")
}

// LoadProfile builds the configuration for the given profile identifier.
// Sources, lowest priority first:
// 1. Default values
// 2. The embedded profile document
// 3. dir/config.yaml and dir/config.<profile>.yaml (optional)
// 4. Environment variables (SERVER_PORT -> server.port)
func LoadProfile(id, dir string) (*Config, error) {
	profile, err := ResolveProfile(id)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	data, err := profileBytes(profile)
	if err != nil {
		return nil, err
	}
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load profile %s: %w", profile, err)
	}

	for _, name := range []string{"config.yaml", fmt.Sprintf("config.%s.yaml", profile)} {
		if err := loadOptionalFile(k, filepath.Join(dir, name)); err != nil {
			return nil, err
		}
	}

	if err := k.Load(envprovider.Provider(".", envprovider.Opt{
		TransformFunc: envKey,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Profile = profile
	cfg.k = k

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// envKey converts UPPER_CASE variables to lower.case koanf keys. Only leaf
// keys with a default are mapped, so LOG_FILE cannot replace the log.file
// section with a scalar.
func envKey(key, value string) (string, any) {
	key = strings.ReplaceAll(strings.ToLower(key), "_", ".")
	if _, ok := overridable[key]; !ok {
		return "", nil
	}
	return key, value
}

func loadOptionalFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func loadDefaults(k *koanf.Koanf) error {
	return k.Load(confmap.Provider(defaultValues(), "."), nil)
}

func defaultValues() map[string]any {
	return map[string]any{
		"app.name":      "servicedesk-portal",
		"app.version":   "v1.0.0",
		"app.debug":     false,
		"app.testing":   false,
		"app.secretkey": "",

		"server.host":             "0.0.0.0",
		"server.port":             5000,
		"server.timeout.read":     "15s",
		"server.timeout.write":    "30s",
		"server.timeout.idle":     "60s",
		"server.timeout.shutdown": "10s",

		"log.level":           "info",
		"log.console":         false,
		"log.file.path":       "logs/flaskapp.log",
		"log.file.level":      "info",
		"log.file.maxbytes":   16384,
		"log.file.backups":    20,
		"log.file.mode":       RotationNumbered,
		"log.file.maxagedays": 0,
		"log.file.compress":   false,

		"templates.dir":    "",
		"templates.reload": false,

		"rate.limit": 100,
		"rate.burst": 200,

		"observability.enabled":  false,
		"observability.exporter": "stdout",
		"observability.endpoint": "",
	}
}
