// Package config loads CLI configuration for colbase from defaults, an
// optional YAML file, COLBASE_ environment variables and command-line
// flags, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Defaults
const (
	DefaultDelimiter = ","
	DefaultFrom      = "escaped"
	DefaultTo        = "pretty"
	DefaultLogLevel  = "INFO"
	DefaultLogFormat = "text"
)

// Config holds the resolved CLI configuration.
type Config struct {
	Verbose   bool   `koanf:"verbose"`
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
	LogFile   string `koanf:"log_file"`

	// Text-format conversion settings.
	Delimiter  string `koanf:"delimiter"`
	From       string `koanf:"from"`
	To         string `koanf:"to"`
	Quote64Bit bool   `koanf:"quote_64bit"`
}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
)

// findConfigFile finds the config file to use.
// Priority: explicit path > colbase.yaml > colbase.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"colbase.yaml", "colbase.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for a fresh load
	k = koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"verbose":     false,
		"log_level":   DefaultLogLevel,
		"log_format":  DefaultLogFormat,
		"log_file":    "",
		"delimiter":   DefaultDelimiter,
		"from":        DefaultFrom,
		"to":          DefaultTo,
		"quote_64bit": false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables (COLBASE_ prefix)
	// Transform: COLBASE_LOG_LEVEL -> log_level
	if err := k.Load(env.Provider("COLBASE_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "COLBASE_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			// Transform kebab-case to snake_case for config keys
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if len(cfg.Delimiter) != 1 {
		return nil, fmt.Errorf("delimiter must be a single byte, got %q", cfg.Delimiter)
	}
	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}
